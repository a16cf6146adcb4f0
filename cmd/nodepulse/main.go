// Package main is the entry point for nodepulse.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/nodepulse/business/node"
	nodeDI "github.com/fd1az/nodepulse/business/node/di"
	"github.com/fd1az/nodepulse/business/system"
	"github.com/fd1az/nodepulse/internal/apm"
	"github.com/fd1az/nodepulse/internal/config"
	"github.com/fd1az/nodepulse/internal/logger"
	"github.com/fd1az/nodepulse/internal/metrics"
	"github.com/fd1az/nodepulse/internal/monolith"
	"github.com/fd1az/nodepulse/internal/web"
	"github.com/fd1az/nodepulse/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	tuiMode := flag.Bool("tui", false, "Show the terminal dashboard instead of logs")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("nodepulse %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath, *tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.TUIMode = tuiMode

	var out io.Writer = os.Stderr
	if tuiMode {
		// The dashboard owns the terminal.
		out = io.Discard
	}
	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, apm.TraceIDFromContext)
	log.Info(ctx, "starting nodepulse",
		"version", version,
		"environment", cfg.App.Environment,
	)

	shutdownTelemetry := setupTelemetry(ctx, cfg, log)
	defer shutdownTelemetry()

	mono, err := monolith.New(cfg, log, version)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer func() {
		if err := mono.Close(); err != nil {
			log.Error(context.Background(), "closing monolith", "error", err)
		}
	}()

	modules := []monolith.Module{
		&node.Module{},
		&system.Module{StartTime: time.Now()},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	server := web.NewServer(cfg.Server.Port, web.CORS(cfg.Server.CORSOrigin, mono.Mux()), log)
	poller := nodeDI.GetPoller(mono.Services())
	svc := nodeDI.GetNodeService(mono.Services())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Serve)
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sctx)
	})

	g.Go(func() error {
		return poller.Run(gctx)
	})

	if tuiMode {
		g.Go(func() error {
			opts := ui.Options{
				Title:   cfg.App.Name,
				Status:  svc.ConnectionStatus,
				Refresh: poller.Tick,
			}
			if cfg.Node.PollInterval > 0 {
				opts.Feed = poller
			}
			if err := ui.Run(gctx, opts); err != nil {
				return fmt.Errorf("TUI error: %w", err)
			}
			// Quitting the dashboard stops the process.
			return errQuit
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

var errQuit = errors.New("dashboard closed")

// setupTelemetry installs tracing and metrics when enabled and returns a
// function releasing them.
func setupTelemetry(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) func() {
	if !cfg.Telemetry.Enabled {
		return func() {}
	}

	tp := apm.NewTraceProvider(log, apm.ExporterConfig{
		Provider:    apm.Provider(cfg.Telemetry.TraceProvider),
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Headers:     cfg.Telemetry.OTLPHeaders,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	log.Info(ctx, "tracing initialized", "provider", cfg.Telemetry.TraceProvider, "endpoint", cfg.Telemetry.OTLPEndpoint)

	metricOpts := []metrics.OptionFn{
		metrics.WithServiceName(cfg.Telemetry.ServiceName),
		metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
	}
	if apm.Provider(cfg.Telemetry.TraceProvider) == apm.OTLPGRPCProvider && cfg.Telemetry.OTLPEndpoint != "" {
		endpoint := cfg.Telemetry.OTLPEndpoint
		metricOpts = append(metricOpts, metrics.WithProviderConfig(
			metrics.NewOtelCollectorConfig(endpoint, cfg.Telemetry.OTLPHeaders, strings.HasPrefix(endpoint, "http://")),
		))
	}
	mp, err := metrics.NewMetricProvider(metricOpts...)
	if err != nil {
		log.Warn(ctx, "metrics disabled", "error", err)
	}

	port := cfg.Telemetry.PrometheusPort
	if port == 0 {
		port = 9090
	}
	promServer := metrics.NewServer(metrics.WithPort(strconv.Itoa(port)))
	go func() {
		if err := promServer.Serve(); err != nil {
			log.Error(ctx, "prometheus server stopped", "error", err)
		}
	}()
	log.Info(ctx, "prometheus metrics server started", "port", port)

	return func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = promServer.Shutdown(sctx)
		if mp != nil {
			_ = mp.Shutdown(sctx)
		}
		if err := tp.Stop(); err != nil {
			log.Warn(sctx, "stopping tracer", "error", err)
		}
	}
}
