package domain

import (
	"math/big"
	"testing"
	"time"
)

func TestHealthSnapshot_IsImmutable(t *testing.T) {
	height := big.NewInt(1000)
	est := 12.5
	snap := NewHealthSnapshot(SnapshotFields{
		NodeHeight:  height,
		ChainHeight: big.NewInt(1000),
		SyncState:   SyncStateSyncing,
		Estimate:    &est,
	})

	height.SetInt64(1)
	est = 0
	snap.NodeHeight().SetInt64(2)

	if got := snap.NodeHeight().Int64(); got != 1000 {
		t.Errorf("NodeHeight changed through an alias: %d", got)
	}
	if got, ok := snap.EstimatedSecondsRemaining(); !ok || got != 12.5 {
		t.Errorf("estimate changed through an alias: %v", got)
	}
}

func TestErrorSnapshot(t *testing.T) {
	snap := ErrorSnapshot("cycle-1", time.Unix(0, 0))

	if snap.SyncState() != SyncStateError || !snap.NodeError() {
		t.Fatalf("unexpected state %s nodeError=%v", snap.SyncState(), snap.NodeError())
	}
	for name, v := range map[string]*big.Int{
		"chainId":     snap.ChainID(),
		"peers":       snap.PeerCount(),
		"gasPrice":    snap.GasPriceWei(),
		"nodeHeight":  snap.NodeHeight(),
		"chainHeight": snap.ChainHeight(),
	} {
		if v != nil {
			t.Errorf("%s = %v, want nil", name, v)
		}
	}
	if _, ok := snap.EstimatedSecondsRemaining(); ok {
		t.Error("error snapshot must not carry an estimate")
	}
}

func TestHealthSnapshot_Display(t *testing.T) {
	snap := NewHealthSnapshot(SnapshotFields{
		GasPriceWei: big.NewInt(5_000_000_000),
		NodeHeight:  big.NewInt(500),
		ChainHeight: big.NewInt(1000),
	})

	gwei, ok := snap.GasPriceGwei()
	if !ok || gwei.String() != "5" {
		t.Errorf("GasPriceGwei = %s, want 5", gwei)
	}

	p, ok := snap.Progress()
	if !ok || p != 0.5 {
		t.Errorf("Progress = %v, want 0.5", p)
	}

	if _, ok := NewHealthSnapshot(SnapshotFields{}).Progress(); ok {
		t.Error("expected no progress without heights")
	}
}
