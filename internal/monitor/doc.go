// Package monitor samples local CPU, memory and disk utilization and renders
// the fixed-format health report that is shown to users and embedded in the
// analysis prompt.
//
// # Components
//
//	Source     - Reads raw readings from the OS (gopsutil in production)
//	Collector  - Turns readings into a clamped HealthReport, recording gaps
//	Render     - The plain-text report block
//	RenderCard - The lipgloss card used by the terminal commands
//
// A metric the platform refuses to read never aborts a collection. It is
// logged, listed in HealthReport.Unavailable and rendered as "unavailable".
package monitor
