package monitor

import (
	"context"
	"time"

	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/logger"
)

// DefaultSampleWindow is the CPU averaging window when none is configured.
const DefaultSampleWindow = time.Second

// Collector samples a Source into HealthReports.
type Collector struct {
	source   Source
	diskPath string
	window   time.Duration
	log      logger.Logger
	now      func() time.Time
}

// Option configures a Collector.
type Option func(*Collector)

// WithDiskPath sets the mount point whose usage is reported.
func WithDiskPath(path string) Option {
	return func(c *Collector) {
		if path != "" {
			c.diskPath = path
		}
	}
}

// WithSampleWindow sets the CPU averaging window.
func WithSampleWindow(d time.Duration) Option {
	return func(c *Collector) {
		if d >= 0 {
			c.window = d
		}
	}
}

// WithLogger sets the logger used for unavailable-metric warnings.
func WithLogger(l logger.Logger) Option {
	return func(c *Collector) {
		c.log = logger.OrDefault(l)
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// NewCollector creates a collector reading from source.
func NewCollector(source Source, opts ...Option) *Collector {
	c := &Collector{
		source:   source,
		diskPath: "/",
		window:   DefaultSampleWindow,
		log:      logger.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect takes one sample. It blocks for the CPU window and never fails:
// metrics that can't be read are recorded in Unavailable and left at zero.
func (c *Collector) Collect(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Timestamp: c.now(),
		DiskPath:  c.diskPath,
	}

	if pct, err := c.source.CPUPercent(ctx, c.window); err != nil {
		c.unavailable(report, MetricCPU, err)
	} else {
		report.CPUPercent = clampPercent(pct)
	}

	if u, err := c.source.Memory(ctx); err != nil {
		c.unavailable(report, MetricMemory, err)
	} else {
		report.MemoryUsedGB, report.MemoryTotalGB = clampUsage(u)
	}

	if u, err := c.source.Disk(ctx, c.diskPath); err != nil {
		c.unavailable(report, MetricDisk, err)
	} else {
		report.DiskUsedGB, report.DiskTotalGB = clampUsage(u)
	}

	return report
}

func (c *Collector) unavailable(report *HealthReport, m Metric, cause error) {
	err := errors.WrapWithCode(cause, errors.ErrMetricUnavailable,
		"Couldn't read "+string(m)+" usage",
		"The report will show it as unavailable")
	c.log.Warn("%s unavailable (%s): %v", m, errors.CodeOf(err), cause)
	report.Unavailable = append(report.Unavailable, m)
}

func clampPercent(p float64) float64 {
	switch {
	case p != p, p < 0: // NaN or negative
		return 0
	case p > 100:
		return 100
	}
	return p
}

func clampUsage(u Usage) (used, total float64) {
	if u.UsedBytes > u.TotalBytes {
		u.UsedBytes = u.TotalBytes
	}
	return toGB(u.UsedBytes), toGB(u.TotalBytes)
}
