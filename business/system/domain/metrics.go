// Package domain contains the core domain types for the system metrics context.
package domain

import "time"

// MemoryStats describes physical memory in bytes.
type MemoryStats struct {
	Total       uint64
	Used        uint64
	Available   uint64
	UsedPercent float64
}

// CPUStats describes current CPU load.
type CPUStats struct {
	Cores        int
	TotalPercent float64
	PerCore      []float64
}

// DiskStats describes one mounted filesystem.
type DiskStats struct {
	Mount      string
	FSType     string
	Size       uint64
	Used       uint64
	UsePercent float64
}

// SystemMetrics is one host sample.
type SystemMetrics struct {
	Memory    MemoryStats
	CPU       CPUStats
	Disks     []DiskStats
	StartTime time.Time // process start
	SampledAt time.Time
}

// Uptime is the process run time at sampling.
func (m SystemMetrics) Uptime() time.Duration {
	return m.SampledAt.Sub(m.StartTime)
}
