// Package host samples host statistics with gopsutil.
package host

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/mem"

	"github.com/fd1az/nodepulse/business/system/app"
	"github.com/fd1az/nodepulse/business/system/domain"
)

// Sampler implements app.Sampler.
type Sampler struct {
	cpuInterval time.Duration
}

var _ app.Sampler = (*Sampler)(nil)

// NewSampler creates a sampler measuring CPU load over cpuInterval.
func NewSampler(cpuInterval time.Duration) *Sampler {
	return &Sampler{cpuInterval: cpuInterval}
}

// Memory reads virtual memory statistics.
func (s *Sampler) Memory(ctx context.Context) (domain.MemoryStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return domain.MemoryStats{}, err
	}
	return domain.MemoryStats{
		Total:       vm.Total,
		Used:        vm.Used,
		Available:   vm.Available,
		UsedPercent: vm.UsedPercent,
	}, nil
}

// CPU reads total and per-core load.
func (s *Sampler) CPU(ctx context.Context) (domain.CPUStats, error) {
	perCore, err := cpu.PercentWithContext(ctx, s.cpuInterval, true)
	if err != nil {
		return domain.CPUStats{}, err
	}

	var total float64
	for _, p := range perCore {
		total += p
	}
	if len(perCore) > 0 {
		total /= float64(len(perCore))
	}

	return domain.CPUStats{
		Cores:        len(perCore),
		TotalPercent: total,
		PerCore:      perCore,
	}, nil
}

// Disks reads usage of every physical partition. Partitions whose usage
// cannot be read are skipped.
func (s *Sampler) Disks(ctx context.Context) ([]domain.DiskStats, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DiskStats, 0, len(parts))
	for _, p := range parts {
		u, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue
		}
		out = append(out, domain.DiskStats{
			Mount:      p.Mountpoint,
			FSType:     p.Fstype,
			Size:       u.Total,
			Used:       u.Used,
			UsePercent: u.UsedPercent,
		})
	}
	return out, nil
}
