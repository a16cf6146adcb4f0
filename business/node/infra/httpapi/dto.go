package httpapi

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/fd1az/nodepulse/business/node/domain"
)

// GeneralMetrics is the dashboard payload. Block heights and gas price are
// decimal strings; chain id and peers are JSON numbers. Absent readings are null.
type GeneralMetrics struct {
	GasPrice                      *string      `json:"gasPrice"`
	Peers                         *json.Number `json:"peers"`
	NodeHeight                    *string      `json:"nodeHeight"`
	ChainHeight                   *string      `json:"chainHeight"`
	SyncingState                  *string      `json:"syncingState"`
	ChainID                       *json.Number `json:"chainId"`
	EstimatedSyncingTimeInSeconds *float64     `json:"estimatedSyncingTimeInSeconds"`
	NodeError                     bool         `json:"nodeError"`

	CycleID      string    `json:"cycleId,omitempty"`
	ObservedAt   time.Time `json:"observedAt"`
	FallbackUsed bool      `json:"fallbackUsed"`
}

// Connections is the GET /connections payload.
type Connections struct {
	Node      string `json:"node"`
	NodeError bool   `json:"nodeError"`
}

// ConnectionsRequest is the POST /connections body.
type ConnectionsRequest struct {
	Node string `json:"node"`
}

// ConnectionsResult is the POST /connections payload.
type ConnectionsResult struct {
	NodeError bool `json:"nodeError"`
}

// NewGeneralMetrics converts a snapshot to its wire form.
func NewGeneralMetrics(s domain.HealthSnapshot) GeneralMetrics {
	state := string(s.SyncState())
	m := GeneralMetrics{
		GasPrice:     decimalString(s.GasPriceWei()),
		Peers:        number(s.PeerCount()),
		NodeHeight:   decimalString(s.NodeHeight()),
		ChainHeight:  decimalString(s.ChainHeight()),
		SyncingState: &state,
		ChainID:      number(s.ChainID()),
		NodeError:    s.NodeError(),
		CycleID:      s.CycleID(),
		ObservedAt:   s.ObservedAt(),
		FallbackUsed: s.FallbackUsed(),
	}
	if est, ok := s.EstimatedSecondsRemaining(); ok {
		m.EstimatedSyncingTimeInSeconds = &est
	}
	return m
}

// NewConnections converts a connection status to its wire form.
func NewConnections(s domain.ConnectionStatus) Connections {
	return Connections{
		Node:      s.Primary.URL,
		NodeError: s.NodeError(),
	}
}

func decimalString(v *big.Int) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func number(v *big.Int) *json.Number {
	if v == nil {
		return nil
	}
	n := json.Number(v.String())
	return &n
}
