// Package di contains dependency injection tokens for the node context.
package di

import (
	"github.com/fd1az/nodepulse/business/node/app"
	"github.com/fd1az/nodepulse/business/node/domain"
	"github.com/fd1az/nodepulse/internal/di"
)

// Public service tokens - exposed to other modules
var (
	NodeService = di.NewToken[*app.NodeService]("node.NodeService")
	Poller      = di.NewToken[*app.Poller]("node.Poller")
)

// Private dependency tokens - internal to node module
var (
	ChainRegistry     = di.NewToken[*domain.ChainRegistry]("node:chainRegistry")
	Dialer            = di.NewToken[app.Dialer]("node:dialer")
	NodeURLStore      = di.NewToken[app.NodeURLStore]("node:nodeURLStore")
	ConnectionManager = di.NewToken[*app.ConnectionManager]("node:connectionManager")
	Aggregator        = di.NewToken[*app.Aggregator]("node:aggregator")
)

// Helper functions for type-safe access
func GetNodeService(c di.ServiceRegistry) *app.NodeService {
	return di.GetToken(c, NodeService)
}

func GetPoller(c di.ServiceRegistry) *app.Poller {
	return di.GetToken(c, Poller)
}

func GetChainRegistry(c di.ServiceRegistry) *domain.ChainRegistry {
	return di.GetToken(c, ChainRegistry)
}

func GetDialer(c di.ServiceRegistry) app.Dialer {
	return di.GetToken(c, Dialer)
}

func GetNodeURLStore(c di.ServiceRegistry) app.NodeURLStore {
	return di.GetToken(c, NodeURLStore)
}

func GetConnectionManager(c di.ServiceRegistry) *app.ConnectionManager {
	return di.GetToken(c, ConnectionManager)
}

func GetAggregator(c di.ServiceRegistry) *app.Aggregator {
	return di.GetToken(c, Aggregator)
}
