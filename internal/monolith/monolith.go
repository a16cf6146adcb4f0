// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/fd1az/nodepulse/internal/config"
	"github.com/fd1az/nodepulse/internal/di"
	"github.com/fd1az/nodepulse/internal/health"
	"github.com/fd1az/nodepulse/internal/httpclient"
	"github.com/fd1az/nodepulse/internal/logger"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	HTTPClient() *http.Client
	Mux() *http.ServeMux
	Health() *health.Checker
	Services() di.ServiceRegistry
	// OnClose registers a resource released by Close, in reverse order.
	OnClose(io.Closer)
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config     *config.Config
	logger     logger.LoggerInterface
	httpClient *http.Client
	mux        *http.ServeMux
	health     *health.Checker
	container  di.Container
	closers    []io.Closer
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface, version string) (*app, error) {
	httpClient, err := httpclient.New(
		httpclient.WithProviderName("node"),
		httpclient.WithRequestTimeout(cfg.Node.RequestTimeout),
	)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	checker := health.NewChecker(version)
	checker.Register(mux)

	container := di.NewContainer()

	// Register global services
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("httpClient", httpClient)
	container.Register("mux", mux)
	container.Register("health", checker)

	return &app{
		config:     cfg,
		logger:     log,
		httpClient: httpClient,
		mux:        mux,
		health:     checker,
		container:  container,
	}, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) HTTPClient() *http.Client {
	return a.httpClient
}

func (a *app) Mux() *http.ServeMux {
	return a.mux
}

func (a *app) Health() *health.Checker {
	return a.health
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

func (a *app) OnClose(c io.Closer) {
	a.closers = append(a.closers, c)
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all resources.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	a.httpClient.CloseIdleConnections()
	return errors.Join(errs...)
}
