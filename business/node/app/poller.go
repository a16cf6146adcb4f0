package app

import (
	"context"
	"sync"
	"time"

	"github.com/fd1az/nodepulse/business/node/domain"
	"github.com/fd1az/nodepulse/internal/logger"
)

// Poller rechecks reachability and runs an aggregation cycle on a fixed
// interval, publishing each snapshot to subscribers.
type Poller struct {
	conns      *ConnectionManager
	aggregator *Aggregator
	interval   time.Duration
	logger     logger.LoggerInterface

	mu     sync.RWMutex
	subs   map[int]chan domain.HealthSnapshot
	nextID int
	latest *domain.HealthSnapshot
}

// NewPoller creates a Poller. A non-positive interval disables Run.
func NewPoller(conns *ConnectionManager, aggregator *Aggregator, interval time.Duration, log logger.LoggerInterface) *Poller {
	return &Poller{
		conns:      conns,
		aggregator: aggregator,
		interval:   interval,
		logger:     log,
		subs:       make(map[int]chan domain.HealthSnapshot),
	}
}

// Run polls until ctx is cancelled. The first tick happens immediately.
func (p *Poller) Run(ctx context.Context) error {
	if p.interval <= 0 {
		p.logger.Info(ctx, "periodic prober disabled")
		return nil
	}

	p.logger.Info(ctx, "periodic prober started", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.closeSubscribers()
			return nil
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one recheck and aggregation cycle and publishes the result.
func (p *Poller) Tick(ctx context.Context) domain.HealthSnapshot {
	p.conns.Recheck(ctx)
	snap := p.aggregator.Snapshot(ctx)
	p.publish(snap)
	return snap
}

// Subscribe returns a channel receiving every published snapshot and a
// cancel func. Slow subscribers miss snapshots rather than block the poller.
func (p *Poller) Subscribe(buffer int) (<-chan domain.HealthSnapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan domain.HealthSnapshot, buffer)

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if sub, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(sub)
			}
		})
	}
}

// Latest returns the most recent published snapshot.
func (p *Poller) Latest() (domain.HealthSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return domain.HealthSnapshot{}, false
	}
	return *p.latest, true
}

func (p *Poller) publish(snap domain.HealthSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.latest = &snap
	for _, ch := range p.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (p *Poller) closeSubscribers() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}
