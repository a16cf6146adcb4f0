// Package system implements the host metrics bounded context.
package system

import (
	"context"
	"time"

	"github.com/fd1az/nodepulse/business/system/app"
	systemDI "github.com/fd1az/nodepulse/business/system/di"
	"github.com/fd1az/nodepulse/business/system/infra/host"
	"github.com/fd1az/nodepulse/business/system/infra/httpapi"
	"github.com/fd1az/nodepulse/internal/di"
	"github.com/fd1az/nodepulse/internal/monolith"
)

const cpuSampleWindow = 200 * time.Millisecond

// Module implements the system bounded context.
type Module struct {
	StartTime time.Time // zero means module registration time
}

// RegisterServices registers all system services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	start := m.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	di.RegisterToken(c, systemDI.Sampler, func(di.ServiceRegistry) app.Sampler {
		return host.NewSampler(cpuSampleWindow)
	})

	di.RegisterToken(c, systemDI.SystemService, func(sr di.ServiceRegistry) *app.SystemService {
		return app.NewSystemService(systemDI.GetSampler(sr), start)
	})

	return nil
}

// Startup mounts /systemMetrics.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	svc := systemDI.GetSystemService(mono.Services())
	httpapi.NewHandler(svc, mono.Logger()).Register(mono.Mux())

	mono.Logger().Info(ctx, "system module started")
	return nil
}
