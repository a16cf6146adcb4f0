// Package app contains application services and port definitions for the node health context.
package app

import (
	"context"
	"math/big"

	"github.com/fd1az/nodepulse/business/node/domain"
)

// Probe issues single JSON-RPC calls against one endpoint. Every call is
// bounded by a timeout and never retried. Failures carry apperror codes
// NODE_UNREACHABLE (transport, timeout) or NODE_RPC_ERROR (JSON-RPC error).
type Probe interface {
	URL() string

	ChainID(ctx context.Context) (*big.Int, error)
	PeerCount(ctx context.Context) (*big.Int, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (*big.Int, error)

	// SyncStatus returns nil when the node reports it is not syncing.
	SyncStatus(ctx context.Context) (*domain.SyncProgress, error)

	// Listening is the lightweight reachability call for the primary node.
	Listening(ctx context.Context) (bool, error)

	Close()
}

// Dialer creates probes. HTTP endpoints connect lazily so Dial only fails
// for malformed URLs or websocket handshakes.
type Dialer interface {
	Dial(ctx context.Context, role domain.Role, url string) (Probe, error)
}

// NodeURLStore persists the primary node URL.
type NodeURLStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, url string) error
}
