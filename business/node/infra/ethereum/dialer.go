package ethereum

import (
	"context"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/nodepulse/business/node/app"
	"github.com/fd1az/nodepulse/business/node/domain"
	"github.com/fd1az/nodepulse/internal/apperror"
	"github.com/fd1az/nodepulse/internal/circuitbreaker"
	"github.com/fd1az/nodepulse/internal/logger"
	"github.com/fd1az/nodepulse/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/nodepulse/business/node/infra/ethereum"
	meterName  = "github.com/fd1az/nodepulse/business/node/infra/ethereum"
)

// DialerConfig holds configuration for probes.
type DialerConfig struct {
	HTTPClient     *http.Client  // shared transport for http(s) endpoints
	RequestTimeout time.Duration // per call

	// Public fallback protection.
	FallbackRequestsPerMinute int
	FallbackBreakerFailures   uint32
	FallbackBreakerCooldown   time.Duration
}

// DefaultDialerConfig returns sensible defaults.
func DefaultDialerConfig() DialerConfig {
	return DialerConfig{
		HTTPClient:                http.DefaultClient,
		RequestTimeout:            5 * time.Second,
		FallbackRequestsPerMinute: 120,
		FallbackBreakerFailures:   5,
		FallbackBreakerCooldown:   30 * time.Second,
	}
}

// Dialer creates probes for the primary node and the public fallback.
type Dialer struct {
	config  DialerConfig
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *probeMetrics
}

var _ app.Dialer = (*Dialer)(nil)

// NewDialer creates a new Dialer.
func NewDialer(cfg DialerConfig, log logger.LoggerInterface) (*Dialer, error) {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}

	metrics, err := newProbeMetrics(otel.Meter(meterName))
	if err != nil {
		return nil, err
	}

	return &Dialer{
		config:  cfg,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
		metrics: metrics,
	}, nil
}

// Dial creates a probe for url. Fallback probes are rate limited and guarded
// by a circuit breaker.
func (d *Dialer) Dial(ctx context.Context, role domain.Role, url string) (app.Probe, error) {
	dialCtx, cancel := context.WithTimeout(ctx, d.config.RequestTimeout)
	defer cancel()

	client, err := rpc.DialOptions(dialCtx, url, rpc.WithHTTPClient(d.config.HTTPClient))
	if err != nil {
		return nil, apperror.New(apperror.CodeNodeUnreachable,
			apperror.WithContext("dial "+url),
			apperror.WithCause(err))
	}

	p := &Probe{
		url:     url,
		role:    role,
		client:  client,
		timeout: d.config.RequestTimeout,
		tracer:  d.tracer,
		metrics: d.metrics,
	}

	if role == domain.RoleFallback {
		p.limiter = ratelimit.New(d.config.FallbackRequestsPerMinute)

		cbCfg := circuitbreaker.DefaultConfig("fallback:" + url)
		if d.config.FallbackBreakerFailures > 0 {
			cbCfg.FailureThreshold = d.config.FallbackBreakerFailures
		}
		if d.config.FallbackBreakerCooldown > 0 {
			cbCfg.Timeout = d.config.FallbackBreakerCooldown
		}
		cbCfg.IsSuccessful = isBenign
		cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
			d.logger.Warn(context.Background(), "fallback circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		}
		p.breaker = circuitbreaker.New[struct{}](cbCfg)
	}

	return p, nil
}
