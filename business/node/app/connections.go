package app

import (
	"context"
	"math/big"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fd1az/nodepulse/business/node/domain"
	"github.com/fd1az/nodepulse/internal/apperror"
	"github.com/fd1az/nodepulse/internal/logger"
)

// slot is one installed endpoint. The probe is fixed for the slot's lifetime;
// only the recorded state changes. A slot whose dial failed has no probe and
// is replaced by redial.
type slot struct {
	probe Probe

	mu   sync.Mutex
	conn domain.NodeConnection
}

func (s *slot) record(state domain.ConnectionState, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.State = state
	s.conn.LastCheckedAt = at
}

func (s *slot) view() domain.NodeConnection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// ConnectionManager owns the primary and fallback connections.
//
// The primary is guarded by an RWMutex: aggregation cycles probe under the
// read side, Configure and Recheck take the write side. The fallback has its
// own RWMutex so it is created at most once per chain id.
type ConnectionManager struct {
	dialer   Dialer
	registry *domain.ChainRegistry
	logger   logger.LoggerInterface
	now      func() time.Time

	primaryMu sync.RWMutex
	primary   *slot

	fallbackMu    sync.RWMutex
	fallback      *slot
	fallbackChain *big.Int
}

// NewConnectionManager creates a manager with no endpoints configured.
func NewConnectionManager(dialer Dialer, registry *domain.ChainRegistry, log logger.LoggerInterface) *ConnectionManager {
	return &ConnectionManager{
		dialer:   dialer,
		registry: registry,
		logger:   log,
		now:      time.Now,
	}
}

// Configure replaces the primary endpoint and probes it once. Reachability
// failures are recorded as state and never returned.
func (m *ConnectionManager) Configure(ctx context.Context, url string) domain.NodeConnection {
	m.primaryMu.Lock()
	defer m.primaryMu.Unlock()

	if m.primary != nil && m.primary.probe != nil {
		m.primary.probe.Close()
	}

	s := m.install(ctx, domain.RolePrimary, url, 0)
	m.primary = s

	if s.probe != nil {
		m.checkPrimary(ctx, s)
	}

	conn := s.view()
	m.logger.Info(ctx, "primary node configured", "url", url, "state", conn.State)
	return conn
}

// install dials url and returns a slot in the configured state, or in the
// unreachable state when the dial itself fails.
func (m *ConnectionManager) install(ctx context.Context, role domain.Role, url string, chainID uint64) *slot {
	s := &slot{conn: domain.NodeConnection{
		Role:    role,
		URL:     url,
		ChainID: chainID,
		State:   domain.StateConfigured,
	}}

	probe, err := m.dialer.Dial(ctx, role, url)
	if err != nil {
		m.logger.Warn(ctx, "dial failed", "role", role, "url", url, "error", err)
		s.record(domain.StateUnreachable, m.now())
		return s
	}

	s.probe = probe
	return s
}

// redial dials the endpoint of a slot that has no probe again. The caller
// holds the write lock guarding the slot and stores the returned slot.
func (m *ConnectionManager) redial(ctx context.Context, s *slot) *slot {
	conn := s.view()
	next := m.install(ctx, conn.Role, conn.URL, conn.ChainID)
	if next.probe != nil {
		m.logger.Info(ctx, "endpoint dialed", "role", conn.Role, "url", conn.URL)
	}
	return next
}

func (m *ConnectionManager) primaryUndialed() bool {
	m.primaryMu.RLock()
	defer m.primaryMu.RUnlock()
	return m.primary != nil && m.primary.probe == nil
}

// redialPrimary retries the dial of a primary whose dial failed.
func (m *ConnectionManager) redialPrimary(ctx context.Context) {
	if !m.primaryUndialed() {
		return
	}

	m.primaryMu.Lock()
	defer m.primaryMu.Unlock()
	if m.primary != nil && m.primary.probe == nil {
		m.primary = m.redial(ctx, m.primary)
	}
}

func (m *ConnectionManager) checkPrimary(ctx context.Context, s *slot) {
	_, err := s.probe.Listening(ctx)
	m.recordOutcome(ctx, s, err)
}

func (m *ConnectionManager) checkFallback(ctx context.Context, s *slot) {
	_, err := s.probe.BlockNumber(ctx)
	m.recordOutcome(ctx, s, err)
}

// recordOutcome maps a probe result to state. A JSON-RPC error still proves
// the endpoint answered, so only transport failures mark it unreachable.
func (m *ConnectionManager) recordOutcome(ctx context.Context, s *slot, err error) {
	if apperror.HasCode(err, apperror.CodeNodeUnreachable) {
		s.record(domain.StateUnreachable, m.now())
		m.logger.Debug(ctx, "endpoint unreachable", "role", s.conn.Role, "error", err)
		return
	}
	s.record(domain.StateReachable, m.now())
}

// WithPrimary runs fn against the primary probe under the read lock, so a
// concurrent Configure waits for fn to finish. The outcome updates the
// primary's reachability. A primary whose dial failed is dialed again first.
func (m *ConnectionManager) WithPrimary(ctx context.Context, fn func(Probe) error) error {
	m.redialPrimary(ctx)

	m.primaryMu.RLock()
	defer m.primaryMu.RUnlock()

	if m.primary == nil {
		return apperror.New(apperror.CodeNodeNotConfigured)
	}
	if m.primary.probe == nil {
		return apperror.New(apperror.CodeNodeUnreachable, apperror.WithContext(m.primary.view().URL))
	}

	err := fn(m.primary.probe)
	m.recordOutcome(ctx, m.primary, err)
	return err
}

// EnsureFallback makes sure a fallback for chainID exists. Calls for the
// chain already installed are no-ops, except that an unreachable fallback
// is probed again on the same connection, or dialed again when its dial
// failed. A different chain id replaces the
// fallback. Unknown chains leave the fallback unconfigured.
func (m *ConnectionManager) EnsureFallback(ctx context.Context, chainID *big.Int) {
	if chainID == nil {
		return
	}

	m.fallbackMu.RLock()
	same := m.fallbackChain != nil && m.fallbackChain.Cmp(chainID) == 0
	current := m.fallback
	m.fallbackMu.RUnlock()

	if same && (current == nil || current.view().Reachable()) {
		return
	}

	m.fallbackMu.Lock()
	defer m.fallbackMu.Unlock()

	// Another cycle may have won the race.
	if m.fallbackChain != nil && m.fallbackChain.Cmp(chainID) == 0 {
		if m.fallback != nil && !m.fallback.view().Reachable() {
			if m.fallback.probe == nil {
				m.fallback = m.redial(ctx, m.fallback)
			}
			if m.fallback.probe != nil {
				m.checkFallback(ctx, m.fallback)
			}
		}
		return
	}

	if m.fallback != nil && m.fallback.probe != nil {
		m.fallback.probe.Close()
	}
	m.fallback = nil
	m.fallbackChain = new(big.Int).Set(chainID)

	ep, err := m.registry.LookupErr(chainID)
	if err != nil {
		m.logger.Warn(ctx, "no fallback endpoint for chain", "chain_id", chainID.String(), "error", err)
		return
	}

	s := m.install(ctx, domain.RoleFallback, ep.FallbackRPCURL, ep.ChainID)
	if s.probe != nil {
		m.checkFallback(ctx, s)
	}
	m.fallback = s

	m.logger.Info(ctx, "fallback configured", "chain", ep.String(), "url", ep.FallbackRPCURL, "state", s.view().State)
}

// FallbackReadings returns chain height and gas price from the fallback.
// Both readings must succeed; otherwise FALLBACK_UNAVAILABLE is returned.
func (m *ConnectionManager) FallbackReadings(ctx context.Context) (height, gasPrice *big.Int, err error) {
	m.fallbackMu.RLock()
	defer m.fallbackMu.RUnlock()

	s := m.fallback
	if s == nil || s.probe == nil || !s.view().Reachable() {
		return nil, nil, apperror.New(apperror.CodeFallbackUnavailable)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		height, err = s.probe.BlockNumber(gctx)
		return err
	})
	g.Go(func() (err error) {
		gasPrice, err = s.probe.GasPrice(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		m.recordOutcome(ctx, s, err)
		return nil, nil, apperror.New(apperror.CodeFallbackUnavailable, apperror.WithCause(err))
	}

	s.record(domain.StateReachable, m.now())
	return height, gasPrice, nil
}

// Status returns both connections.
func (m *ConnectionManager) Status() domain.ConnectionStatus {
	var status domain.ConnectionStatus

	m.primaryMu.RLock()
	if m.primary != nil {
		status.Primary = m.primary.view()
	} else {
		status.Primary = domain.NodeConnection{Role: domain.RolePrimary, State: domain.StateUnconfigured}
	}
	m.primaryMu.RUnlock()

	m.fallbackMu.RLock()
	if m.fallback != nil {
		status.Fallback = m.fallback.view()
	} else {
		status.Fallback = domain.NodeConnection{Role: domain.RoleFallback, State: domain.StateUnconfigured}
		if m.fallbackChain != nil && m.fallbackChain.IsUint64() {
			status.Fallback.ChainID = m.fallbackChain.Uint64()
		}
	}
	m.fallbackMu.RUnlock()

	return status
}

// Recheck re-runs the reachability probe of both connections, dialing again
// any connection whose dial failed.
func (m *ConnectionManager) Recheck(ctx context.Context) domain.ConnectionStatus {
	m.primaryMu.Lock()
	if m.primary != nil && m.primary.probe == nil {
		m.primary = m.redial(ctx, m.primary)
	}
	if m.primary != nil && m.primary.probe != nil {
		m.checkPrimary(ctx, m.primary)
	}
	m.primaryMu.Unlock()

	m.fallbackMu.Lock()
	if m.fallback != nil && m.fallback.probe == nil {
		m.fallback = m.redial(ctx, m.fallback)
	}
	if m.fallback != nil && m.fallback.probe != nil {
		m.checkFallback(ctx, m.fallback)
	}
	m.fallbackMu.Unlock()

	return m.Status()
}

// Close releases both connections.
func (m *ConnectionManager) Close() error {
	m.primaryMu.Lock()
	if m.primary != nil && m.primary.probe != nil {
		m.primary.probe.Close()
	}
	m.primary = nil
	m.primaryMu.Unlock()

	m.fallbackMu.Lock()
	if m.fallback != nil && m.fallback.probe != nil {
		m.fallback.probe.Close()
	}
	m.fallback = nil
	m.fallbackChain = nil
	m.fallbackMu.Unlock()

	return nil
}
