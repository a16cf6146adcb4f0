package node

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/fd1az/nodepulse/internal/config"
	"github.com/fd1az/nodepulse/internal/logger"
	"github.com/fd1az/nodepulse/internal/monolith"
)

type ethService struct{}

func (ethService) ChainId() *hexutil.Big     { return (*hexutil.Big)(big.NewInt(100)) }
func (ethService) GasPrice() *hexutil.Big    { return (*hexutil.Big)(big.NewInt(2_000_000_000)) }
func (ethService) BlockNumber() *hexutil.Big { return (*hexutil.Big)(big.NewInt(4242)) }
func (ethService) Syncing() bool             { return false }

type netService struct{}

func (netService) PeerCount() hexutil.Uint { return 7 }
func (netService) Listening() bool         { return true }

func newSyncedNode(t *testing.T) string {
	t.Helper()

	server := rpc.NewServer()
	if err := server.RegisterName("eth", ethService{}); err != nil {
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

func startModule(t *testing.T, nodeURL string) (*config.Config, http.Handler) {
	t.Helper()

	cfg := &config.Config{
		Node: config.NodeConfig{
			URL:            nodeURL,
			StateFile:      filepath.Join(t.TempDir(), "config.json"),
			RequestTimeout: 2 * time.Second,
		},
		Server: config.ServerConfig{Port: 3009, CORSOrigin: "*"},
	}

	mono, err := monolith.New(cfg, logger.Discard(), "test")
	if err != nil {
		t.Fatalf("monolith.New: %v", err)
	}
	t.Cleanup(func() { _ = mono.Close() })

	m := &Module{}
	if err := mono.RegisterModules(m); err != nil {
		t.Fatalf("RegisterModules: %v", err)
	}
	if err := mono.StartModules(context.Background(), m); err != nil {
		t.Fatalf("StartModules: %v", err)
	}
	return cfg, mono.Mux()
}

func TestModule_GeneralMetrics(t *testing.T) {
	cfg, mux := startModule(t, newSyncedNode(t))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generalMetrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := map[string]any{
		"syncingState": "synced",
		"nodeHeight":   "4242",
		"chainHeight":  "4242",
		"gasPrice":     "2000000000",
		"chainId":      float64(100),
		"peers":        float64(7),
		"nodeError":    false,
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s = %v, want %v", k, body[k], v)
		}
	}

	raw, err := os.ReadFile(cfg.Node.StateFile)
	if err != nil {
		t.Fatalf("state file not created: %v", err)
	}
	if !strings.Contains(string(raw), cfg.Node.URL) {
		t.Errorf("state file %s does not hold the node url", raw)
	}
}

func TestModule_HealthAndConnections(t *testing.T) {
	_, mux := startModule(t, newSyncedNode(t))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/ready = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/connections", strings.NewReader(`{"node":"not a url"}`))
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /connections with invalid url = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("/ws without poller = %d, want 404", rec.Code)
	}
}

func TestModule_UnreachableNodeStillStarts(t *testing.T) {
	_, mux := startModule(t, "http://127.0.0.1:1")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generalMetrics", nil))

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["nodeError"] != true || body["syncingState"] != "error" {
		t.Errorf("expected error snapshot, got %v", body)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready = %d, want 503", rec.Code)
	}
}
