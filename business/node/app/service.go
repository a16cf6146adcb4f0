package app

import (
	"context"

	"github.com/fd1az/nodepulse/business/node/domain"
	"github.com/fd1az/nodepulse/internal/apperror"
	"github.com/fd1az/nodepulse/internal/config"
	"github.com/fd1az/nodepulse/internal/logger"
)

// NodeService is the surface exposed to transports.
type NodeService struct {
	conns      *ConnectionManager
	aggregator *Aggregator
	store      NodeURLStore
	logger     logger.LoggerInterface
}

// NewNodeService creates a new NodeService.
func NewNodeService(conns *ConnectionManager, aggregator *Aggregator, store NodeURLStore, log logger.LoggerInterface) *NodeService {
	return &NodeService{
		conns:      conns,
		aggregator: aggregator,
		store:      store,
		logger:     log,
	}
}

// Start configures the primary from the persisted URL.
func (s *NodeService) Start(ctx context.Context) error {
	url, err := s.store.Load(ctx)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeConfigurationError, "loading node url")
	}
	if err := config.ValidateNodeURL(url); err != nil {
		return apperror.New(apperror.CodeInvalidNodeURL, apperror.WithCause(err), apperror.WithContext(url))
	}

	s.conns.Configure(ctx, url)
	return nil
}

// HealthSnapshot runs one aggregation cycle.
func (s *NodeService) HealthSnapshot(ctx context.Context) domain.HealthSnapshot {
	return s.aggregator.Snapshot(ctx)
}

// ReconfigurePrimary persists url and switches the primary to it. Only an
// invalid URL is an error; an unreachable node is reported in the result.
func (s *NodeService) ReconfigurePrimary(ctx context.Context, url string) (domain.NodeConnection, error) {
	if err := config.ValidateNodeURL(url); err != nil {
		return domain.NodeConnection{}, apperror.New(apperror.CodeInvalidNodeURL,
			apperror.WithCause(err),
			apperror.WithContext(url))
	}

	if err := s.store.Save(ctx, url); err != nil {
		appErr := apperror.Wrap(err, apperror.CodeConfigPersistFailed, "saving node url")
		s.logger.Error(ctx, "node url not persisted", appErr.LogAttrs()...)
	}

	return s.conns.Configure(ctx, url), nil
}

// ConnectionStatus returns the primary and fallback connections.
func (s *NodeService) ConnectionStatus() domain.ConnectionStatus {
	return s.conns.Status()
}

// Close releases the connections.
func (s *NodeService) Close() error {
	return s.conns.Close()
}
