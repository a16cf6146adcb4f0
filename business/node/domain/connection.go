package domain

import "time"

// ConnectionState represents the state of a node connection.
type ConnectionState string

const (
	StateUnconfigured ConnectionState = "unconfigured"
	StateConfigured   ConnectionState = "configured"
	StateReachable    ConnectionState = "reachable"
	StateUnreachable  ConnectionState = "unreachable"
)

// Role distinguishes the operator's node from the public fallback.
type Role string

const (
	RolePrimary  Role = "primary"
	RoleFallback Role = "fallback"
)

// NodeConnection is a point-in-time view of one endpoint.
type NodeConnection struct {
	Role          Role
	URL           string
	ChainID       uint64 // fallback only
	State         ConnectionState
	LastCheckedAt time.Time
}

// Reachable reports whether the last probe succeeded.
func (c NodeConnection) Reachable() bool {
	return c.State == StateReachable
}

// ConnectionStatus contains both connections.
type ConnectionStatus struct {
	Primary  NodeConnection
	Fallback NodeConnection
}

// NodeError mirrors the dashboard flag: true when the primary is not reachable.
func (s ConnectionStatus) NodeError() bool {
	return !s.Primary.Reachable()
}
