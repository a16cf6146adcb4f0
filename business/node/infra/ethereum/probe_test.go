package ethereum

import (
	"context"
	"errors"
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/fd1az/nodepulse/business/node/domain"
	"github.com/fd1az/nodepulse/internal/apperror"
	"github.com/fd1az/nodepulse/internal/httpclient"
	"github.com/fd1az/nodepulse/internal/logger"
)

// nodeError is a JSON-RPC error with an explicit code.
type nodeError struct {
	code int
	msg  string
}

func (e nodeError) Error() string  { return e.msg }
func (e nodeError) ErrorCode() int { return e.code }

// ethService is served under the "eth" namespace.
type ethService struct {
	mu       sync.Mutex
	chainID  *big.Int
	gasPrice *big.Int
	block    *big.Int
	syncing  any
	slow     bool
	calls    int
}

func (s *ethService) wait(ctx context.Context) {
	s.mu.Lock()
	s.calls++
	slow := s.slow
	s.mu.Unlock()
	if slow {
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
	}
}

func (s *ethService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *ethService) ChainId(ctx context.Context) (*hexutil.Big, error) {
	s.wait(ctx)
	return (*hexutil.Big)(s.chainID), nil
}

func (s *ethService) GasPrice(ctx context.Context) (*hexutil.Big, error) {
	s.wait(ctx)
	return (*hexutil.Big)(s.gasPrice), nil
}

func (s *ethService) BlockNumber(ctx context.Context) (*hexutil.Big, error) {
	s.wait(ctx)
	if s.block == nil {
		return nil, nodeError{code: -32000, msg: "header not found"}
	}
	return (*hexutil.Big)(s.block), nil
}

func (s *ethService) Syncing(ctx context.Context) (any, error) {
	s.wait(ctx)
	return s.syncing, nil
}

// netService is served under the "net" namespace.
type netService struct{}

func (netService) PeerCount() hexutil.Uint { return 25 }
func (netService) Listening() bool         { return true }

func newFakeNode(t *testing.T, eth *ethService) string {
	t.Helper()

	server := rpc.NewServer()
	if err := server.RegisterName("eth", eth); err != nil {
		t.Fatalf("register eth: %v", err)
	}
	if err := server.RegisterName("net", netService{}); err != nil {
		t.Fatalf("register net: %v", err)
	}

	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		ts.Close()
		server.Stop()
	})
	return ts.URL
}

func newTestDialer(t *testing.T, timeout time.Duration) *Dialer {
	t.Helper()

	client, err := httpclient.New(httpclient.WithProviderName("test"), httpclient.WithRequestTimeout(10*time.Second))
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}

	cfg := DefaultDialerConfig()
	cfg.HTTPClient = client
	cfg.RequestTimeout = timeout
	cfg.FallbackRequestsPerMinute = 0

	d, err := NewDialer(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("NewDialer: %v", err)
	}
	return d
}

func dial(t *testing.T, d *Dialer, role domain.Role, url string) *Probe {
	t.Helper()
	p, err := d.Dial(context.Background(), role, url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(p.Close)
	return p.(*Probe)
}

func TestProbe_NumericCalls(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	eth := &ethService{
		chainID:  big.NewInt(100),
		gasPrice: huge,
		block:    big.NewInt(1000),
		syncing:  false,
	}
	p := dial(t, newTestDialer(t, time.Second), domain.RolePrimary, newFakeNode(t, eth))
	ctx := context.Background()

	tests := []struct {
		name string
		call func(context.Context) (*big.Int, error)
		want *big.Int
	}{
		{"chainId", p.ChainID, big.NewInt(100)},
		{"peerCount", p.PeerCount, big.NewInt(25)},
		{"gasPrice beyond int64", p.GasPrice, huge},
		{"blockNumber", p.BlockNumber, big.NewInt(1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.call(ctx)
			if err != nil {
				t.Fatalf("call failed: %v", err)
			}
			if got.Cmp(tt.want) != 0 {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	listening, err := p.Listening(ctx)
	if err != nil || !listening {
		t.Errorf("Listening = %v, %v", listening, err)
	}
}

func TestProbe_SyncStatus(t *testing.T) {
	tests := []struct {
		name     string
		syncing  any
		want     *domain.SyncProgress
		wantCode apperror.Code
	}{
		{
			name:    "not syncing",
			syncing: false,
		},
		{
			name: "syncing",
			syncing: map[string]any{
				"startingBlock": hexutil.Uint64(100),
				"currentBlock":  hexutil.Uint64(500),
				"highestBlock":  hexutil.Uint64(1000),
			},
			want: &domain.SyncProgress{
				StartingBlock: big.NewInt(100),
				CurrentBlock:  big.NewInt(500),
				HighestBlock:  big.NewInt(1000),
			},
		},
		{
			name:     "missing highest block",
			syncing:  map[string]any{"currentBlock": hexutil.Uint64(500)},
			wantCode: apperror.CodeInvalidNodeResponse,
		},
		{
			name:     "bare true",
			syncing:  true,
			wantCode: apperror.CodeInvalidNodeResponse,
		},
		{
			name:     "garbage",
			syncing:  "soon",
			wantCode: apperror.CodeInvalidNodeResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eth := &ethService{syncing: tt.syncing}
			p := dial(t, newTestDialer(t, time.Second), domain.RolePrimary, newFakeNode(t, eth))

			got, err := p.SyncStatus(context.Background())
			if tt.wantCode != "" {
				if apperror.GetCode(err) != tt.wantCode {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SyncStatus: %v", err)
			}
			if tt.want == nil {
				if got != nil {
					t.Errorf("expected nil progress, got %+v", got)
				}
				return
			}
			if got.CurrentBlock.Cmp(tt.want.CurrentBlock) != 0 ||
				got.HighestBlock.Cmp(tt.want.HighestBlock) != 0 ||
				got.StartingBlock.Cmp(tt.want.StartingBlock) != 0 {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProbe_ErrorClassification(t *testing.T) {
	t.Run("json-rpc error", func(t *testing.T) {
		p := dial(t, newTestDialer(t, time.Second), domain.RolePrimary, newFakeNode(t, &ethService{}))

		_, err := p.BlockNumber(context.Background())
		if apperror.GetCode(err) != apperror.CodeNodeRPCError {
			t.Errorf("expected %s, got %v", apperror.CodeNodeRPCError, err)
		}
	})

	t.Run("method not found", func(t *testing.T) {
		server := rpc.NewServer()
		ts := httptest.NewServer(server)
		defer ts.Close()
		p := dial(t, newTestDialer(t, time.Second), domain.RolePrimary, ts.URL)

		_, err := p.Listening(context.Background())
		if apperror.GetCode(err) != apperror.CodeNodeRPCError {
			t.Errorf("expected %s, got %v", apperror.CodeNodeRPCError, err)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		ts := httptest.NewServer(rpc.NewServer())
		url := ts.URL
		ts.Close()
		p := dial(t, newTestDialer(t, time.Second), domain.RolePrimary, url)

		_, err := p.ChainID(context.Background())
		if apperror.GetCode(err) != apperror.CodeNodeUnreachable {
			t.Errorf("expected %s, got %v", apperror.CodeNodeUnreachable, err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		eth := &ethService{chainID: big.NewInt(1), slow: true}
		p := dial(t, newTestDialer(t, 50*time.Millisecond), domain.RolePrimary, newFakeNode(t, eth))

		start := time.Now()
		_, err := p.ChainID(context.Background())
		if apperror.GetCode(err) != apperror.CodeNodeUnreachable {
			t.Errorf("expected %s, got %v", apperror.CodeNodeUnreachable, err)
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("timeout not enforced, call took %s", elapsed)
		}
	})
}

func TestDialer_InvalidURL(t *testing.T) {
	_, err := newTestDialer(t, time.Second).Dial(context.Background(), domain.RolePrimary, "ftp://node")
	if apperror.GetCode(err) != apperror.CodeNodeUnreachable {
		t.Errorf("expected %s, got %v", apperror.CodeNodeUnreachable, err)
	}
}

func TestFallbackProbe_BreakerOpensOnTransportFailures(t *testing.T) {
	ts := httptest.NewServer(rpc.NewServer())
	url := ts.URL
	ts.Close()

	d := newTestDialer(t, time.Second)
	d.config.FallbackBreakerFailures = 2
	d.config.FallbackBreakerCooldown = time.Minute
	p := dial(t, d, domain.RoleFallback, url)

	for i := 0; i < 2; i++ {
		_, _ = p.BlockNumber(context.Background())
	}

	_, err := p.BlockNumber(context.Background())
	if apperror.GetCode(err) != apperror.CodeNodeUnreachable {
		t.Fatalf("expected %s, got %v", apperror.CodeNodeUnreachable, err)
	}
	var appErr *apperror.AppError
	if !errors.As(errors.Unwrap(err), &appErr) || appErr.Code != apperror.CodeCircuitOpen {
		t.Errorf("expected the open breaker as cause, got %v", err)
	}
}

func TestFallbackProbe_RPCErrorsDoNotTripBreaker(t *testing.T) {
	eth := &ethService{}
	d := newTestDialer(t, time.Second)
	d.config.FallbackBreakerFailures = 1
	p := dial(t, d, domain.RoleFallback, newFakeNode(t, eth))

	for i := 0; i < 3; i++ {
		_, err := p.BlockNumber(context.Background())
		if apperror.GetCode(err) != apperror.CodeNodeRPCError {
			t.Fatalf("call %d: expected %s, got %v", i, apperror.CodeNodeRPCError, err)
		}
	}
	if got := eth.callCount(); got != 3 {
		t.Errorf("expected every call to reach the node, got %d", got)
	}
}
