package domain

import (
	"math/big"
	"testing"
)

func TestSyncProgress_Done(t *testing.T) {
	tests := []struct {
		name     string
		progress *SyncProgress
		want     bool
	}{
		{"nil means not syncing", nil, true},
		{"behind", &SyncProgress{CurrentBlock: big.NewInt(500), HighestBlock: big.NewInt(1000)}, false},
		{"caught up", &SyncProgress{CurrentBlock: big.NewInt(1000), HighestBlock: big.NewInt(1000)}, true},
		{"ahead of stale highest", &SyncProgress{CurrentBlock: big.NewInt(1001), HighestBlock: big.NewInt(1000)}, true},
		{"missing fields", &SyncProgress{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.progress.Done(); got != tt.want {
				t.Errorf("Done() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConnectionStatus_NodeError(t *testing.T) {
	status := ConnectionStatus{Primary: NodeConnection{State: StateReachable}}
	if status.NodeError() {
		t.Error("reachable primary must not report nodeError")
	}

	status.Primary.State = StateConfigured
	if !status.NodeError() {
		t.Error("unprobed primary must report nodeError")
	}
}
