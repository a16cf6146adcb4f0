package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotFields carries the values used to build a HealthSnapshot.
type SnapshotFields struct {
	CycleID      string
	ObservedAt   time.Time
	ChainID      *big.Int
	PeerCount    *big.Int
	GasPriceWei  *big.Int
	NodeHeight   *big.Int
	ChainHeight  *big.Int
	SyncState    SyncState
	Estimate     *float64
	FallbackUsed bool
	NodeError    bool
}

// HealthSnapshot is the immutable result of one aggregation cycle.
type HealthSnapshot struct {
	f SnapshotFields
}

// NewHealthSnapshot copies fields into a snapshot.
func NewHealthSnapshot(f SnapshotFields) HealthSnapshot {
	f.ChainID = copyInt(f.ChainID)
	f.PeerCount = copyInt(f.PeerCount)
	f.GasPriceWei = copyInt(f.GasPriceWei)
	f.NodeHeight = copyInt(f.NodeHeight)
	f.ChainHeight = copyInt(f.ChainHeight)
	if f.Estimate != nil {
		v := *f.Estimate
		f.Estimate = &v
	}
	return HealthSnapshot{f: f}
}

// ErrorSnapshot is the result of a failed primary cycle: every reading is
// absent and NodeError is set.
func ErrorSnapshot(cycleID string, at time.Time) HealthSnapshot {
	return HealthSnapshot{f: SnapshotFields{
		CycleID:    cycleID,
		ObservedAt: at,
		SyncState:  SyncStateError,
		NodeError:  true,
	}}
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func (s HealthSnapshot) CycleID() string       { return s.f.CycleID }
func (s HealthSnapshot) ObservedAt() time.Time { return s.f.ObservedAt }
func (s HealthSnapshot) ChainID() *big.Int     { return copyInt(s.f.ChainID) }
func (s HealthSnapshot) PeerCount() *big.Int   { return copyInt(s.f.PeerCount) }
func (s HealthSnapshot) GasPriceWei() *big.Int { return copyInt(s.f.GasPriceWei) }
func (s HealthSnapshot) NodeHeight() *big.Int  { return copyInt(s.f.NodeHeight) }
func (s HealthSnapshot) ChainHeight() *big.Int { return copyInt(s.f.ChainHeight) }
func (s HealthSnapshot) SyncState() SyncState  { return s.f.SyncState }
func (s HealthSnapshot) FallbackUsed() bool    { return s.f.FallbackUsed }
func (s HealthSnapshot) NodeError() bool       { return s.f.NodeError }

// EstimatedSecondsRemaining is present only while syncing with a rate sample.
func (s HealthSnapshot) EstimatedSecondsRemaining() (float64, bool) {
	if s.f.Estimate == nil {
		return 0, false
	}
	return *s.f.Estimate, true
}

// GasPriceGwei converts the gas price to gwei.
func (s HealthSnapshot) GasPriceGwei() (decimal.Decimal, bool) {
	if s.f.GasPriceWei == nil {
		return decimal.Zero, false
	}
	return decimal.NewFromBigInt(s.f.GasPriceWei, -9), true
}

// Progress returns NodeHeight/ChainHeight in [0,1].
func (s HealthSnapshot) Progress() (float64, bool) {
	if s.f.NodeHeight == nil || s.f.ChainHeight == nil || s.f.ChainHeight.Sign() <= 0 {
		return 0, false
	}
	p, _ := decimal.NewFromBigInt(s.f.NodeHeight, 0).
		Div(decimal.NewFromBigInt(s.f.ChainHeight, 0)).
		Float64()
	if p > 1 {
		p = 1
	}
	return p, true
}
