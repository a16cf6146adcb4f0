package ui

import (
	"github.com/fd1az/nodepulse/business/node/domain"
)

// Message types for TUI updates

// SnapshotMsg carries a new aggregation cycle result.
type SnapshotMsg struct {
	Snapshot domain.HealthSnapshot
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// feedClosedMsg signals that the snapshot feed stopped.
type feedClosedMsg struct{}
