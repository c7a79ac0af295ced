package monitor

// Level classifies a utilization percentage.
type Level int

const (
	LevelGood Level = iota
	LevelElevated
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelGood:
		return "good"
	case LevelElevated:
		return "elevated"
	case LevelHigh:
		return "high"
	}
	return "unknown"
}

// Thresholds are the percentages where a metric becomes elevated and high.
type Thresholds struct {
	Warning  float64
	Critical float64
}

// DefaultThresholds matches the dashboard gauge bands: green below 50,
// yellow below 80, red from 80.
var DefaultThresholds = Thresholds{Warning: 50, Critical: 80}

// NewThresholds converts integer config values, falling back to the
// defaults when either is unset.
func NewThresholds(warning, critical int) Thresholds {
	if warning <= 0 || critical <= 0 {
		return DefaultThresholds
	}
	return Thresholds{Warning: float64(warning), Critical: float64(critical)}
}

// Level classifies percent against t.
func (t Thresholds) Level(percent float64) Level {
	switch {
	case percent >= t.Critical:
		return LevelHigh
	case percent >= t.Warning:
		return LevelElevated
	default:
		return LevelGood
	}
}

// LevelOf classifies percent against DefaultThresholds.
func LevelOf(percent float64) Level {
	return DefaultThresholds.Level(percent)
}
