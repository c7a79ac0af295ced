package monitor

import "time"

// Metric names one of the sampled utilization figures.
type Metric string

const (
	MetricCPU    Metric = "cpu"
	MetricMemory Metric = "memory"
	MetricDisk   Metric = "disk"
)

// HealthReport is a point-in-time snapshot of machine utilization.
// Used values never exceed their totals and CPUPercent is within 0-100.
type HealthReport struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryUsedGB  float64   `json:"memory_used_gb"`
	MemoryTotalGB float64   `json:"memory_total_gb"`
	DiskUsedGB    float64   `json:"disk_used_gb"`
	DiskTotalGB   float64   `json:"disk_total_gb"`
	DiskPath      string    `json:"disk_path"`

	// Unavailable lists metrics that could not be read for this sample.
	Unavailable []Metric `json:"unavailable,omitempty"`
}

// MemoryPercent returns memory utilization, or 0 when the total is unknown.
func (r *HealthReport) MemoryPercent() float64 {
	return percentOf(r.MemoryUsedGB, r.MemoryTotalGB)
}

// DiskPercent returns disk utilization, or 0 when the total is unknown.
func (r *HealthReport) DiskPercent() float64 {
	return percentOf(r.DiskUsedGB, r.DiskTotalGB)
}

// IsAvailable reports whether m was read successfully.
func (r *HealthReport) IsAvailable(m Metric) bool {
	for _, u := range r.Unavailable {
		if u == m {
			return false
		}
	}
	return true
}

// Usage is a used/total pair in bytes as returned by a Source.
type Usage struct {
	UsedBytes  uint64
	TotalBytes uint64
}

const bytesPerGB = 1024 * 1024 * 1024

func toGB(b uint64) float64 {
	return float64(b) / bytesPerGB
}

func percentOf(used, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return used / total * 100
}
