package monolith

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fd1az/nodepulse/internal/config"
	"github.com/fd1az/nodepulse/internal/di"
	"github.com/fd1az/nodepulse/internal/logger"
)

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

type recordingModule struct {
	registered bool
	started    bool
}

func (m *recordingModule) RegisterServices(c di.Container) error {
	m.registered = true
	c.Register("recording", m)
	return nil
}

func (m *recordingModule) Startup(_ context.Context, mono Monolith) error {
	if mono.Services().Get("recording") != m {
		return errors.New("module service not resolvable")
	}
	m.started = true
	return nil
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := &config.Config{Node: config.NodeConfig{RequestTimeout: time.Second}}
	a, err := New(cfg, logger.Discard(), "test")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

func TestApp_ModulesLifecycle(t *testing.T) {
	a := newTestApp(t)
	m := &recordingModule{}

	if err := a.RegisterModules(m); err != nil {
		t.Fatalf("RegisterModules: %v", err)
	}
	if err := a.StartModules(context.Background(), m); err != nil {
		t.Fatalf("StartModules: %v", err)
	}
	if !m.registered || !m.started {
		t.Errorf("expected module registered and started, got %+v", m)
	}
	if a.HTTPClient().Timeout != time.Second {
		t.Errorf("expected client timeout from config, got %s", a.HTTPClient().Timeout)
	}
}

func TestApp_HealthMounted(t *testing.T) {
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected /live mounted, got %d", rec.Code)
	}
}

func TestApp_CloseReverseOrder(t *testing.T) {
	a := newTestApp(t)

	var order []int
	boom := errors.New("boom")
	a.OnClose(closeFunc(func() error { order = append(order, 1); return nil }))
	a.OnClose(closeFunc(func() error { order = append(order, 2); return boom }))

	if err := a.Close(); !errors.Is(err, boom) {
		t.Errorf("expected joined close error, got %v", err)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("expected reverse close order, got %v", order)
	}
}
