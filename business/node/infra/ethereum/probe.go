// Package ethereum implements node probes over go-ethereum's JSON-RPC client.
package ethereum

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/nodepulse/business/node/domain"
	"github.com/fd1az/nodepulse/internal/apperror"
	"github.com/fd1az/nodepulse/internal/circuitbreaker"
	"github.com/fd1az/nodepulse/internal/ratelimit"
)

// Probe issues JSON-RPC calls against one endpoint.
type Probe struct {
	url     string
	role    domain.Role
	client  *rpc.Client
	timeout time.Duration

	// Only set for the fallback; both are nil-safe.
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[struct{}]

	tracer  trace.Tracer
	metrics *probeMetrics
}

// syncProgress mirrors the eth_syncing object.
type syncProgress struct {
	StartingBlock *hexutil.Big `json:"startingBlock"`
	CurrentBlock  *hexutil.Big `json:"currentBlock"`
	HighestBlock  *hexutil.Big `json:"highestBlock"`
}

func (p *Probe) URL() string { return p.url }

// ChainID calls eth_chainId.
func (p *Probe) ChainID(ctx context.Context) (*big.Int, error) {
	return p.callBig(ctx, domain.MethodChainID)
}

// PeerCount calls net_peerCount.
func (p *Probe) PeerCount(ctx context.Context) (*big.Int, error) {
	return p.callBig(ctx, domain.MethodPeerCount)
}

// GasPrice calls eth_gasPrice.
func (p *Probe) GasPrice(ctx context.Context) (*big.Int, error) {
	return p.callBig(ctx, domain.MethodGasPrice)
}

// BlockNumber calls eth_blockNumber.
func (p *Probe) BlockNumber(ctx context.Context) (*big.Int, error) {
	return p.callBig(ctx, domain.MethodBlockNumber)
}

// SyncStatus calls eth_syncing. A false result means the node is not syncing.
func (p *Probe) SyncStatus(ctx context.Context) (*domain.SyncProgress, error) {
	var raw json.RawMessage
	if err := p.call(ctx, domain.MethodSyncing, &raw); err != nil {
		return nil, err
	}

	var syncing bool
	if err := json.Unmarshal(raw, &syncing); err == nil {
		if syncing {
			return nil, invalidResponse(domain.MethodSyncing, "true without progress")
		}
		return nil, nil
	}

	var sp syncProgress
	if err := json.Unmarshal(raw, &sp); err != nil {
		return nil, apperror.New(apperror.CodeInvalidNodeResponse,
			apperror.WithContext(domain.MethodSyncing),
			apperror.WithCause(err))
	}
	if sp.CurrentBlock == nil || sp.HighestBlock == nil {
		return nil, invalidResponse(domain.MethodSyncing, "missing currentBlock or highestBlock")
	}

	progress := &domain.SyncProgress{
		CurrentBlock: new(big.Int).Set(sp.CurrentBlock.ToInt()),
		HighestBlock: new(big.Int).Set(sp.HighestBlock.ToInt()),
	}
	if sp.StartingBlock != nil {
		progress.StartingBlock = new(big.Int).Set(sp.StartingBlock.ToInt())
	}
	return progress, nil
}

// Listening calls net_listening.
func (p *Probe) Listening(ctx context.Context) (bool, error) {
	var listening bool
	if err := p.call(ctx, domain.MethodListening, &listening); err != nil {
		return false, err
	}
	return listening, nil
}

// Close closes the underlying client.
func (p *Probe) Close() {
	p.client.Close()
}

func (p *Probe) callBig(ctx context.Context, method string) (*big.Int, error) {
	var v hexutil.Big
	if err := p.call(ctx, method, &v); err != nil {
		return nil, err
	}
	return new(big.Int).Set(v.ToInt()), nil
}

// call performs one bounded request. There are no retries.
func (p *Probe) call(ctx context.Context, method string, result any) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ctx, span := p.tracer.Start(ctx, "rpc."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.method", method),
			attribute.String("node.role", string(p.role)),
		),
	)
	defer span.End()

	start := time.Now()
	err := p.guarded(ctx, func() error {
		return p.client.CallContext(ctx, result, method)
	})
	p.metrics.record(ctx, method, p.role, err == nil, time.Since(start))

	if err != nil {
		appErr := classify(method, err)
		span.RecordError(appErr)
		span.SetStatus(codes.Error, string(appErr.Code))
		return appErr
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (p *Probe) guarded(ctx context.Context, fn func() error) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return apperror.New(apperror.CodeRateLimited, apperror.WithCause(err))
	}
	if p.breaker == nil {
		return fn()
	}
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// classify maps client errors to codes. Breaker and limiter rejections
// count as unreachable.
func classify(method string, err error) *apperror.AppError {
	var (
		rpcErr    rpc.Error
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)

	switch {
	case errors.As(err, &rpcErr):
		return apperror.New(apperror.CodeNodeRPCError,
			apperror.WithMessage(rpcErr.Error()),
			apperror.WithContext(method),
			apperror.WithCause(err))
	case errors.As(err, &typeErr), errors.As(err, &syntaxErr):
		return apperror.New(apperror.CodeInvalidNodeResponse,
			apperror.WithContext(method),
			apperror.WithCause(err))
	default:
		return apperror.New(apperror.CodeNodeUnreachable,
			apperror.WithContext(method),
			apperror.WithCause(err))
	}
}

func invalidResponse(method, msg string) *apperror.AppError {
	return apperror.New(apperror.CodeInvalidNodeResponse,
		apperror.WithMessage(msg),
		apperror.WithContext(method))
}

// isBenign reports whether err proves the endpoint answered.
func isBenign(err error) bool {
	if err == nil {
		return true
	}
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr)
}

// probeMetrics holds OTEL metric instruments.
type probeMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

func newProbeMetrics(meter metric.Meter) (*probeMetrics, error) {
	requests, err := meter.Int64Counter(
		"node_probe_requests_total",
		metric.WithDescription("JSON-RPC probe calls by method and outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram(
		"node_probe_latency_ms",
		metric.WithDescription("JSON-RPC probe latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &probeMetrics{requests: requests, latency: latency}, nil
}

func (m *probeMetrics) record(ctx context.Context, method string, role domain.Role, success bool, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("role", string(role)),
		attribute.Bool("success", success),
	)
	m.requests.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(d.Microseconds())/1000, attrs)
}
