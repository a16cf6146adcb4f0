package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fd1az/nodepulse/business/system/domain"
	"github.com/fd1az/nodepulse/internal/apperror"
)

// SystemService samples the host.
type SystemService struct {
	sampler   Sampler
	startTime time.Time
	now       func() time.Time
}

// NewSystemService creates a new SystemService. startTime is reported as
// the process start.
func NewSystemService(sampler Sampler, startTime time.Time) *SystemService {
	return &SystemService{
		sampler:   sampler,
		startTime: startTime,
		now:       time.Now,
	}
}

// Metrics samples memory, CPU and disks concurrently.
func (s *SystemService) Metrics(ctx context.Context) (domain.SystemMetrics, error) {
	m := domain.SystemMetrics{StartTime: s.startTime}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m.Memory, err = s.sampler.Memory(gctx)
		return wrap(err, "memory")
	})
	g.Go(func() (err error) {
		m.CPU, err = s.sampler.CPU(gctx)
		return wrap(err, "cpu")
	})
	g.Go(func() (err error) {
		m.Disks, err = s.sampler.Disks(gctx)
		return wrap(err, "disk")
	})

	if err := g.Wait(); err != nil {
		return domain.SystemMetrics{}, err
	}

	m.SampledAt = s.now()
	return m, nil
}

// StartTime returns the process start.
func (s *SystemService) StartTime() time.Time {
	return s.startTime
}

func wrap(err error, what string) error {
	if err == nil {
		return nil
	}
	return apperror.New(apperror.CodeSystemMetricsFailed, apperror.WithContext(what), apperror.WithCause(err))
}
