package app

import (
	"context"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/nodepulse/business/node/domain"
	"github.com/fd1az/nodepulse/internal/apperror"
	"github.com/fd1az/nodepulse/internal/logger"
)

const (
	tracerName = "github.com/fd1az/nodepulse/business/node/app"
	meterName  = "github.com/fd1az/nodepulse/business/node/app"
)

// aggregatorMetrics holds OTEL metric instruments.
type aggregatorMetrics struct {
	cycles       metric.Int64Counter
	nodeHeight   metric.Int64Gauge
	chainHeight  metric.Int64Gauge
	estimate     metric.Float64Gauge
	fallbackUsed metric.Int64Counter
}

// Aggregator turns one round of probes into a HealthSnapshot.
type Aggregator struct {
	conns     *ConnectionManager
	estimator *domain.SyncEstimator
	logger    logger.LoggerInterface

	now     func() time.Time
	cycleID func() string

	tracer  trace.Tracer
	metrics *aggregatorMetrics
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		a.now = now
	}
}

// WithCycleIDs overrides the cycle id generator.
func WithCycleIDs(fn func() string) AggregatorOption {
	return func(a *Aggregator) {
		a.cycleID = fn
	}
}

// NewAggregator creates an Aggregator.
func NewAggregator(conns *ConnectionManager, estimator *domain.SyncEstimator, log logger.LoggerInterface, opts ...AggregatorOption) (*Aggregator, error) {
	a := &Aggregator{
		conns:     conns,
		estimator: estimator,
		logger:    log,
		now:       time.Now,
		cycleID:   func() string { return uuid.NewString() },
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.initMetrics(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Aggregator) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	a.metrics = &aggregatorMetrics{}

	a.metrics.cycles, err = meter.Int64Counter(
		"node_poll_cycles_total",
		metric.WithDescription("Aggregation cycles by resulting sync state"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return err
	}

	a.metrics.nodeHeight, err = meter.Int64Gauge(
		"node_height",
		metric.WithDescription("Latest block known to the primary node"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return err
	}

	a.metrics.chainHeight, err = meter.Int64Gauge(
		"chain_height",
		metric.WithDescription("Best known chain head"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return err
	}

	a.metrics.estimate, err = meter.Float64Gauge(
		"node_sync_estimate_seconds",
		metric.WithDescription("Estimated time until the node is synced"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	a.metrics.fallbackUsed, err = meter.Int64Counter(
		"node_fallback_used_total",
		metric.WithDescription("Cycles that sourced chain height from the fallback"),
		metric.WithUnit("{cycle}"),
	)
	return err
}

// primaryReadings are the values read from the primary in one cycle.
type primaryReadings struct {
	chainID  *big.Int
	peers    *big.Int
	gasPrice *big.Int
	block    *big.Int
	progress *domain.SyncProgress
}

// Snapshot runs one aggregation cycle. A failed primary probe yields an
// error snapshot; fallback problems only degrade chain height and gas price.
func (a *Aggregator) Snapshot(ctx context.Context) domain.HealthSnapshot {
	id := a.cycleID()
	ctx, span := a.tracer.Start(ctx, "node.snapshot", trace.WithAttributes(attribute.String("cycle_id", id)))
	defer span.End()

	r, err := a.readPrimary(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "primary probe failed")
		a.logger.Warn(ctx, "health cycle failed", "cycle_id", id, "code", apperror.GetCode(err), "error", err)

		snap := domain.ErrorSnapshot(id, a.now())
		a.record(ctx, snap)
		return snap
	}

	fields := domain.SnapshotFields{
		CycleID:   id,
		ChainID:   r.chainID,
		PeerCount: r.peers,
	}

	if r.progress.Done() {
		fields.SyncState = domain.SyncStateSynced
		fields.NodeHeight = r.block
		fields.ChainHeight = r.block
		fields.GasPriceWei = r.gasPrice
		a.estimator.Reset()
	} else {
		fields.SyncState = domain.SyncStateSyncing
		fields.NodeHeight = r.progress.CurrentBlock
		fields.ChainHeight = r.progress.HighestBlock
		fields.GasPriceWei = r.gasPrice

		a.conns.EnsureFallback(ctx, r.chainID)
		height, gas, ferr := a.conns.FallbackReadings(ctx)
		if ferr == nil {
			fields.ChainHeight = height
			fields.GasPriceWei = gas
			fields.FallbackUsed = true
		} else {
			span.AddEvent("fallback_unavailable")
			a.logger.Debug(ctx, "using primary figures while syncing", "cycle_id", id, "reason", ferr)
		}

		if est, ok := a.estimator.Observe(fields.NodeHeight, fields.ChainHeight, a.now()); ok {
			fields.Estimate = &est
		}
	}

	fields.ObservedAt = a.now()
	snap := domain.NewHealthSnapshot(fields)

	span.SetAttributes(
		attribute.String("sync_state", string(snap.SyncState())),
		attribute.Bool("fallback_used", snap.FallbackUsed()),
	)
	span.SetStatus(codes.Ok, "")
	a.record(ctx, snap)

	return snap
}

// readPrimary issues the four independent probes concurrently, then the
// sync status, all under the primary read lock.
func (a *Aggregator) readPrimary(ctx context.Context) (primaryReadings, error) {
	var r primaryReadings

	err := a.conns.WithPrimary(ctx, func(p Probe) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			r.chainID, err = p.ChainID(gctx)
			return err
		})
		g.Go(func() (err error) {
			r.peers, err = p.PeerCount(gctx)
			return err
		})
		g.Go(func() (err error) {
			r.gasPrice, err = p.GasPrice(gctx)
			return err
		})
		g.Go(func() (err error) {
			r.block, err = p.BlockNumber(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		progress, err := p.SyncStatus(ctx)
		if err != nil {
			return err
		}
		r.progress = progress
		return nil
	})

	return r, err
}

func (a *Aggregator) record(ctx context.Context, snap domain.HealthSnapshot) {
	a.metrics.cycles.Add(ctx, 1, metric.WithAttributes(attribute.String("state", string(snap.SyncState()))))

	if h := snap.NodeHeight(); h != nil && h.IsInt64() {
		a.metrics.nodeHeight.Record(ctx, h.Int64())
	}
	if h := snap.ChainHeight(); h != nil && h.IsInt64() {
		a.metrics.chainHeight.Record(ctx, h.Int64())
	}
	if est, ok := snap.EstimatedSecondsRemaining(); ok {
		a.metrics.estimate.Record(ctx, est)
	}
	if snap.FallbackUsed() {
		a.metrics.fallbackUsed.Add(ctx, 1)
	}
}
