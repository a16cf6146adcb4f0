// Package httpapi exposes host metrics over HTTP.
package httpapi

import "github.com/fd1az/nodepulse/business/system/domain"

// SystemMetrics is the /systemMetrics response body.
type SystemMetrics struct {
	Mem       Memory       `json:"mem"`
	CPU       CPU          `json:"cpu"`
	Disk      []Filesystem `json:"disk"`
	StartTime int64        `json:"startTime"` // unix ms
}

type Memory struct {
	Total     uint64  `json:"total"`
	Used      uint64  `json:"used"`
	Available uint64  `json:"available"`
	Percent   float64 `json:"percent"`
}

type CPU struct {
	Cores   int       `json:"cores"`
	Load    float64   `json:"load"`
	PerCore []float64 `json:"perCore"`
}

type Filesystem struct {
	Mount  string  `json:"mount"`
	Type   string  `json:"type,omitempty"`
	Size   uint64  `json:"size"`
	Used   uint64  `json:"used"`
	Use    float64 `json:"use"`
}

// NewSystemMetrics maps a domain sample to the response body.
func NewSystemMetrics(m domain.SystemMetrics) SystemMetrics {
	disks := make([]Filesystem, 0, len(m.Disks))
	for _, d := range m.Disks {
		disks = append(disks, Filesystem{
			Mount:  d.Mount,
			Type:   d.FSType,
			Size:   d.Size,
			Used:   d.Used,
			Use:    d.UsePercent,
		})
	}

	perCore := m.CPU.PerCore
	if perCore == nil {
		perCore = []float64{}
	}

	return SystemMetrics{
		Mem: Memory{
			Total:     m.Memory.Total,
			Used:      m.Memory.Used,
			Available: m.Memory.Available,
			Percent:   m.Memory.UsedPercent,
		},
		CPU: CPU{
			Cores:   m.CPU.Cores,
			Load:    m.CPU.TotalPercent,
			PerCore: perCore,
		},
		Disk:      disks,
		StartTime: m.StartTime.UnixMilli(),
	}
}
