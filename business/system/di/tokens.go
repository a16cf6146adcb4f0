// Package di contains dependency injection tokens for the system context.
package di

import (
	"github.com/fd1az/nodepulse/business/system/app"
	"github.com/fd1az/nodepulse/internal/di"
)

// Public service tokens - exposed to other modules
var (
	SystemService = di.NewToken[*app.SystemService]("system.SystemService")
)

// Private dependency tokens - internal to system module
var (
	Sampler = di.NewToken[app.Sampler]("system:sampler")
)

func GetSystemService(c di.ServiceRegistry) *app.SystemService {
	return di.GetToken(c, SystemService)
}

func GetSampler(c di.ServiceRegistry) app.Sampler {
	return di.GetToken(c, Sampler)
}
