package domain

import (
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// SyncEstimator projects the remaining sync time from the block ingestion
// rate observed since a baseline.
type SyncEstimator struct {
	mu        sync.Mutex
	startBlk  *big.Int
	startTime time.Time
}

// NewSyncEstimator creates an estimator without a baseline.
func NewSyncEstimator() *SyncEstimator {
	return &SyncEstimator{}
}

// Observe records a sample. The first sample sets the baseline and yields no
// estimate; later samples yield remaining*elapsed/ingested seconds once blocks
// and time have both advanced.
func (e *SyncEstimator) Observe(current, chainHeight *big.Int, now time.Time) (float64, bool) {
	if current == nil || chainHeight == nil {
		return 0, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.startBlk == nil {
		e.startBlk = new(big.Int).Set(current)
		e.startTime = now
		return 0, false
	}

	ingested := new(big.Int).Sub(current, e.startBlk)
	elapsed := now.Sub(e.startTime)
	if ingested.Sign() <= 0 || elapsed <= 0 {
		return 0, false
	}

	remaining := new(big.Int).Sub(chainHeight, current)
	if remaining.Sign() < 0 {
		remaining.SetInt64(0)
	}

	seconds := decimal.NewFromBigInt(remaining, 0).
		Mul(decimal.NewFromInt(elapsed.Nanoseconds())).
		Div(decimal.NewFromBigInt(ingested, 0)).
		Div(decimal.NewFromInt(int64(time.Second)))

	f, _ := seconds.Float64()
	return f, true
}

// Reset clears the baseline so the next sample starts a new measurement.
func (e *SyncEstimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startBlk = nil
	e.startTime = time.Time{}
}

// Baseline returns a copy of the baseline, or nil when none is set.
func (e *SyncEstimator) Baseline() (*big.Int, time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.startBlk == nil {
		return nil, time.Time{}
	}
	return new(big.Int).Set(e.startBlk), e.startTime
}
