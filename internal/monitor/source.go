package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Source reads raw utilization figures from the operating system.
type Source interface {
	// CPUPercent blocks for window and returns the average busy percentage.
	CPUPercent(ctx context.Context, window time.Duration) (float64, error)
	Memory(ctx context.Context) (Usage, error)
	Disk(ctx context.Context, path string) (Usage, error)
}

// SystemSource reads metrics from the local machine via gopsutil.
type SystemSource struct{}

// NewSystemSource returns the production Source.
func NewSystemSource() *SystemSource {
	return &SystemSource{}
}

func (SystemSource) CPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("no CPU samples returned")
	}
	return percents[0], nil
}

func (SystemSource) Memory(ctx context.Context) (Usage, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Usage{}, err
	}
	return Usage{UsedBytes: vm.Used, TotalBytes: vm.Total}, nil
}

func (SystemSource) Disk(ctx context.Context, path string) (Usage, error) {
	du, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return Usage{}, err
	}
	return Usage{UsedBytes: du.Used, TotalBytes: du.Total}, nil
}
