// Package pipeline ties collection, analysis and persistence together:
// collect a report, send it for analysis, and save the result.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/pch/internal/analysis"
	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/history"
	"github.com/rileyhilliard/pch/internal/logger"
	"github.com/rileyhilliard/pch/internal/monitor"
)

// Collector produces health reports.
type Collector interface {
	Collect(ctx context.Context) *monitor.HealthReport
}

// Recorder persists successful analyses.
type Recorder interface {
	Append(entry history.Entry) error
}

// Pipeline runs checks and analyses. The last collected report is held
// here rather than by whatever surface triggered the check.
type Pipeline struct {
	collector Collector
	analyzer  analysis.Analyzer
	store     Recorder
	log       logger.Logger
	now       func() time.Time

	mu   sync.Mutex
	last *monitor.HealthReport
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		p.log = logger.OrDefault(l)
	}
}

// WithClock overrides the clock used to stamp history entries.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New builds a pipeline from its collaborators.
func New(collector Collector, analyzer analysis.Analyzer, store Recorder, opts ...Option) *Pipeline {
	p := &Pipeline{
		collector: collector,
		analyzer:  analyzer,
		store:     store,
		log:       logger.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunCheck collects a fresh report and remembers it as the last report.
func (p *Pipeline) RunCheck(ctx context.Context) *monitor.HealthReport {
	report := p.collector.Collect(ctx)

	p.mu.Lock()
	p.last = report
	p.mu.Unlock()

	p.log.Debug("collected report (cpu %.1f%%, unavailable %v)", report.CPUPercent, report.Unavailable)
	return report
}

// LastReport returns the report from the most recent RunCheck, or nil.
func (p *Pipeline) LastReport() *monitor.HealthReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// RunAnalysis analyzes report and saves the result before returning it.
//
// A failed analysis saves nothing and its error is returned unchanged.
// If the analysis succeeds but saving fails, the analysis text is returned
// together with the STORE_WRITE error so it can still be shown.
func (p *Pipeline) RunAnalysis(ctx context.Context, report *monitor.HealthReport) (string, error) {
	if report == nil {
		return "", errNoReport()
	}

	text := report.Render()
	result, err := p.analyzer.Analyze(ctx, text)
	if err != nil {
		p.log.Debug("analysis failed, nothing saved: %s", errors.Summary(err))
		return "", err
	}

	entry := history.NewEntry(p.now(), history.TypeSystem, text, result)
	if err := p.store.Append(entry); err != nil {
		p.log.Error("analysis finished but couldn't be saved: %s", errors.Summary(err))
		if !errors.IsCode(err, errors.ErrStoreWrite) {
			err = errors.WrapWithCode(err, errors.ErrStoreWrite,
				"The analysis couldn't be saved to history", "")
		}
		return result, err
	}

	return result, nil
}

// AnalyzeLast analyzes the report from the most recent RunCheck.
func (p *Pipeline) AnalyzeLast(ctx context.Context) (string, error) {
	report := p.LastReport()
	if report == nil {
		return "", errNoReport()
	}
	return p.RunAnalysis(ctx, report)
}

// CheckAndAnalyze runs a check and immediately analyzes it.
func (p *Pipeline) CheckAndAnalyze(ctx context.Context) (*monitor.HealthReport, string, error) {
	report := p.RunCheck(ctx)
	result, err := p.RunAnalysis(ctx, report)
	return report, result, err
}

func errNoReport() error {
	return errors.New(errors.ErrUsage,
		"No report to analyze yet",
		"Run a check first")
}
