// Package node implements the node health bounded context.
package node

import (
	"context"
	"net/http"

	"github.com/fd1az/nodepulse/business/node/app"
	nodeDI "github.com/fd1az/nodepulse/business/node/di"
	"github.com/fd1az/nodepulse/business/node/domain"
	"github.com/fd1az/nodepulse/business/node/infra/configstore"
	"github.com/fd1az/nodepulse/business/node/infra/ethereum"
	"github.com/fd1az/nodepulse/business/node/infra/httpapi"
	"github.com/fd1az/nodepulse/internal/config"
	"github.com/fd1az/nodepulse/internal/di"
	"github.com/fd1az/nodepulse/internal/logger"
	"github.com/fd1az/nodepulse/internal/monolith"
)

// Module implements the node bounded context.
type Module struct{}

// RegisterServices registers all node services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register ChainRegistry (private)
	di.RegisterToken(c, nodeDI.ChainRegistry, func(sr di.ServiceRegistry) *domain.ChainRegistry {
		cfg := sr.Get("config").(*config.Config)

		overrides := make([]domain.ChainEndpoint, 0, len(cfg.Fallback.Chains))
		for _, ch := range cfg.Fallback.Chains {
			overrides = append(overrides, domain.ChainEndpoint{
				ChainID:        ch.ChainID,
				Name:           ch.Name,
				FallbackRPCURL: ch.RPCURL,
				Testnet:        ch.Testnet,
			})
		}
		return domain.DefaultChainRegistry(overrides...)
	})

	// Register Dialer (private)
	di.RegisterToken(c, nodeDI.Dialer, func(sr di.ServiceRegistry) app.Dialer {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		dialerCfg := ethereum.DefaultDialerConfig()
		dialerCfg.HTTPClient = sr.Get("httpClient").(*http.Client)
		dialerCfg.RequestTimeout = cfg.Node.RequestTimeout
		dialerCfg.FallbackRequestsPerMinute = cfg.Fallback.RequestsPerMinute
		dialerCfg.FallbackBreakerFailures = cfg.Fallback.BreakerFailures
		dialerCfg.FallbackBreakerCooldown = cfg.Fallback.BreakerCooldown

		dialer, err := ethereum.NewDialer(dialerCfg, log)
		if err != nil {
			panic("failed to create dialer: " + err.Error())
		}
		return dialer
	})

	// Register NodeURLStore (private)
	di.RegisterToken(c, nodeDI.NodeURLStore, func(sr di.ServiceRegistry) app.NodeURLStore {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return configstore.New(cfg.Node.StateFile, cfg.Node.URL, log)
	})

	// Register ConnectionManager (private)
	di.RegisterToken(c, nodeDI.ConnectionManager, func(sr di.ServiceRegistry) *app.ConnectionManager {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewConnectionManager(nodeDI.GetDialer(sr), nodeDI.GetChainRegistry(sr), log)
	})

	// Register Aggregator (private)
	di.RegisterToken(c, nodeDI.Aggregator, func(sr di.ServiceRegistry) *app.Aggregator {
		log := sr.Get("logger").(logger.LoggerInterface)

		agg, err := app.NewAggregator(nodeDI.GetConnectionManager(sr), domain.NewSyncEstimator(), log)
		if err != nil {
			panic("failed to create aggregator: " + err.Error())
		}
		return agg
	})

	// Register NodeService (public)
	di.RegisterToken(c, nodeDI.NodeService, func(sr di.ServiceRegistry) *app.NodeService {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewNodeService(
			nodeDI.GetConnectionManager(sr),
			nodeDI.GetAggregator(sr),
			nodeDI.GetNodeURLStore(sr),
			log,
		)
	})

	// Register Poller (public)
	di.RegisterToken(c, nodeDI.Poller, func(sr di.ServiceRegistry) *app.Poller {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewPoller(nodeDI.GetConnectionManager(sr), nodeDI.GetAggregator(sr), cfg.Node.PollInterval, log)
	})

	return nil
}

// Startup connects the primary node and mounts the HTTP routes.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	svc := nodeDI.GetNodeService(mono.Services())
	if err := svc.Start(ctx); err != nil {
		return err
	}
	mono.OnClose(svc)

	mono.Health().RegisterCheck("node", func(context.Context) (bool, string) {
		status := svc.ConnectionStatus()
		if status.NodeError() {
			return false, "primary " + string(status.Primary.State)
		}
		return true, ""
	})

	var source httpapi.SnapshotSource
	if cfg.Node.PollInterval > 0 {
		source = nodeDI.GetPoller(mono.Services())
	}
	httpapi.NewHandler(svc, source, cfg.Server.CORSOrigin, log).Register(mono.Mux())

	status := svc.ConnectionStatus()
	log.Info(ctx, "node module started",
		"node", status.Primary.URL,
		"state", status.Primary.State,
	)
	return nil
}
