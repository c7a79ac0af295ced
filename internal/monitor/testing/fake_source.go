// Package testing provides test doubles for the monitor package.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/pch/internal/monitor"
)

const gb = 1024 * 1024 * 1024

// FakeSource returns canned readings without touching the OS.
type FakeSource struct {
	mu sync.Mutex

	CPU     float64
	Mem     monitor.Usage
	DiskU   monitor.Usage
	CPUErr  error
	MemErr  error
	DiskErr error

	// Call tracking
	DiskPaths []string
	Windows   []time.Duration
}

// NewFakeSource returns a source reporting the given figures in GB.
func NewFakeSource(cpu, memUsedGB, memTotalGB, diskUsedGB, diskTotalGB float64) *FakeSource {
	return &FakeSource{
		CPU:   cpu,
		Mem:   monitor.Usage{UsedBytes: uint64(memUsedGB * gb), TotalBytes: uint64(memTotalGB * gb)},
		DiskU: monitor.Usage{UsedBytes: uint64(diskUsedGB * gb), TotalBytes: uint64(diskTotalGB * gb)},
	}
}

func (f *FakeSource) CPUPercent(_ context.Context, window time.Duration) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Windows = append(f.Windows, window)
	return f.CPU, f.CPUErr
}

func (f *FakeSource) Memory(context.Context) (monitor.Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Mem, f.MemErr
}

func (f *FakeSource) Disk(_ context.Context, path string) (monitor.Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DiskPaths = append(f.DiskPaths, path)
	return f.DiskU, f.DiskErr
}

// Report builds a HealthReport directly, for tests that don't need a Collector.
func Report(at time.Time, cpu, memUsedGB, memTotalGB, diskUsedGB, diskTotalGB float64) *monitor.HealthReport {
	return &monitor.HealthReport{
		Timestamp:     at,
		CPUPercent:    cpu,
		MemoryUsedGB:  memUsedGB,
		MemoryTotalGB: memTotalGB,
		DiskUsedGB:    diskUsedGB,
		DiskTotalGB:   diskTotalGB,
		DiskPath:      "/",
	}
}
