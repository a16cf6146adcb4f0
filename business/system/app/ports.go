// Package app contains application services and port definitions for the system metrics context.
package app

import (
	"context"

	"github.com/fd1az/nodepulse/business/system/domain"
)

// Sampler reads host statistics.
type Sampler interface {
	Memory(ctx context.Context) (domain.MemoryStats, error)
	CPU(ctx context.Context) (domain.CPUStats, error)
	Disks(ctx context.Context) ([]domain.DiskStats, error)
}
