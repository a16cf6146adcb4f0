package app

import (
	"context"
	"testing"
	"time"

	"github.com/fd1az/nodepulse/business/node/domain"
)

func newTestPoller(t *testing.T, interval time.Duration) (*Poller, *fakeDialer) {
	t.Helper()

	conns, dialer, log := newTestManager()
	agg, err := NewAggregator(conns, domain.NewSyncEstimator(), log)
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	conns.Configure(context.Background(), primaryURL)
	return NewPoller(conns, agg, interval, log), dialer
}

func TestPoller_TickPublishes(t *testing.T) {
	p, dialer := newTestPoller(t, time.Minute)

	if _, ok := p.Latest(); ok {
		t.Fatal("expected no snapshot before the first tick")
	}

	ch, cancel := p.Subscribe(1)
	defer cancel()

	snap := p.Tick(context.Background())

	select {
	case got := <-ch:
		if got.CycleID() != snap.CycleID() {
			t.Errorf("published %q, want %q", got.CycleID(), snap.CycleID())
		}
	default:
		t.Fatal("expected a published snapshot")
	}

	latest, ok := p.Latest()
	if !ok || latest.CycleID() != snap.CycleID() {
		t.Errorf("Latest() = %q, want %q", latest.CycleID(), snap.CycleID())
	}

	// Configure probes once, Tick rechecks once.
	if got := dialer.probe(primaryURL).callCount(domain.MethodListening); got != 2 {
		t.Errorf("expected 2 reachability probes, got %d", got)
	}
}

func TestPoller_SlowSubscriberDoesNotBlock(t *testing.T) {
	p, _ := newTestPoller(t, time.Minute)

	_, cancel := p.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		p.Tick(context.Background())
		p.Tick(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked on a full subscriber")
	}
}

func TestPoller_Unsubscribe(t *testing.T) {
	p, _ := newTestPoller(t, time.Minute)

	ch, cancel := p.Subscribe(1)
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}
	p.Tick(context.Background())
}

func TestPoller_Run(t *testing.T) {
	p, _ := newTestPoller(t, 10*time.Millisecond)
	ch, cancel := p.Subscribe(8)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d not published", i)
		}
	}

	stop()
	if err := <-errCh; err != nil {
		t.Errorf("Run returned %v", err)
	}
	for range ch {
	}
}

func TestPoller_RunDisabled(t *testing.T) {
	p, _ := newTestPoller(t, 0)

	if err := p.Run(context.Background()); err != nil {
		t.Errorf("Run returned %v", err)
	}
	if _, ok := p.Latest(); ok {
		t.Error("disabled poller must not tick")
	}
}
