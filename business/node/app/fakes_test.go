package app

import (
	"context"
	"math/big"
	"sync"

	"github.com/fd1az/nodepulse/business/node/domain"
	"github.com/fd1az/nodepulse/internal/apperror"
	"github.com/fd1az/nodepulse/internal/logger"
)

var errUnreachable = apperror.New(apperror.CodeNodeUnreachable, apperror.WithContext("connection refused"))

// fakeProbe answers from fields. A method listed in errs fails; a method
// listed in hang blocks until the context ends and fails as a timeout.
type fakeProbe struct {
	url string

	mu       sync.Mutex
	chainID  *big.Int
	peers    *big.Int
	gasPrice *big.Int
	block    *big.Int
	progress *domain.SyncProgress
	errs     map[string]error
	hang     map[string]bool
	calls    map[string]int
	closed   bool
}

func newFakeProbe(url string) *fakeProbe {
	return &fakeProbe{
		url:      url,
		chainID:  big.NewInt(100),
		peers:    big.NewInt(25),
		gasPrice: big.NewInt(5_000_000_000),
		block:    big.NewInt(1000),
		errs:     make(map[string]error),
		hang:     make(map[string]bool),
		calls:    make(map[string]int),
	}
}

func (p *fakeProbe) URL() string { return p.url }

func (p *fakeProbe) call(ctx context.Context, method string) error {
	p.mu.Lock()
	p.calls[method]++
	err := p.errs[method]
	hang := p.hang[method]
	p.mu.Unlock()

	if hang {
		<-ctx.Done()
		return apperror.New(apperror.CodeNodeUnreachable, apperror.WithContext(method), apperror.WithCause(ctx.Err()))
	}
	return err
}

func (p *fakeProbe) value(ctx context.Context, method string, v **big.Int) (*big.Int, error) {
	if err := p.call(ctx, method); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if *v == nil {
		return nil, nil
	}
	return new(big.Int).Set(*v), nil
}

func (p *fakeProbe) ChainID(ctx context.Context) (*big.Int, error) {
	return p.value(ctx, domain.MethodChainID, &p.chainID)
}

func (p *fakeProbe) PeerCount(ctx context.Context) (*big.Int, error) {
	return p.value(ctx, domain.MethodPeerCount, &p.peers)
}

func (p *fakeProbe) GasPrice(ctx context.Context) (*big.Int, error) {
	return p.value(ctx, domain.MethodGasPrice, &p.gasPrice)
}

func (p *fakeProbe) BlockNumber(ctx context.Context) (*big.Int, error) {
	return p.value(ctx, domain.MethodBlockNumber, &p.block)
}

func (p *fakeProbe) SyncStatus(ctx context.Context) (*domain.SyncProgress, error) {
	if err := p.call(ctx, domain.MethodSyncing); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress, nil
}

func (p *fakeProbe) Listening(ctx context.Context) (bool, error) {
	if err := p.call(ctx, domain.MethodListening); err != nil {
		return false, err
	}
	return true, nil
}

func (p *fakeProbe) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *fakeProbe) set(fn func(p *fakeProbe)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

func (p *fakeProbe) callCount(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[method]
}

func (p *fakeProbe) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// fakeDialer hands out a probe per URL, creating reachable defaults for
// URLs it has not been told about.
type fakeDialer struct {
	mu     sync.Mutex
	probes map[string]*fakeProbe
	dials  map[string]int
	fail   map[string]error
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{
		probes: make(map[string]*fakeProbe),
		dials:  make(map[string]int),
		fail:   make(map[string]error),
	}
}

func (d *fakeDialer) Dial(_ context.Context, _ domain.Role, url string) (Probe, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials[url]++
	if err := d.fail[url]; err != nil {
		return nil, err
	}
	p, ok := d.probes[url]
	if !ok {
		p = newFakeProbe(url)
		d.probes[url] = p
	}
	return p, nil
}

func (d *fakeDialer) probe(url string) *fakeProbe {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.probes[url]
	if !ok {
		p = newFakeProbe(url)
		d.probes[url] = p
	}
	return p
}

func (d *fakeDialer) setFail(url string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.fail, url)
		return
	}
	d.fail[url] = err
}

func (d *fakeDialer) dialCount(url string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials[url]
}

// memoryStore is an in-memory NodeURLStore.
type memoryStore struct {
	mu      sync.Mutex
	url     string
	saveErr error
	saves   int
}

func (s *memoryStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, nil
}

func (s *memoryStore) Save(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.url = url
	return nil
}

// mockLogger records warnings for assertions.
type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}

func (m *mockLogger) warnCount(msg string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, w := range m.warns {
		if w == msg {
			n++
		}
	}
	return n
}

var _ logger.LoggerInterface = (*mockLogger)(nil)
