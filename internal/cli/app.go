package cli

import (
	"io"

	"github.com/rileyhilliard/pch/internal/analysis"
	"github.com/rileyhilliard/pch/internal/config"
	"github.com/rileyhilliard/pch/internal/history"
	"github.com/rileyhilliard/pch/internal/lock"
	"github.com/rileyhilliard/pch/internal/logger"
	"github.com/rileyhilliard/pch/internal/monitor"
	"github.com/rileyhilliard/pch/internal/output"
	"github.com/rileyhilliard/pch/internal/pipeline"
)

// cardWidth is the width of the report card printed by check and analyze.
const cardWidth = 56

// newMetricSource supplies system metrics. Tests swap in a fake.
var newMetricSource = func() monitor.Source {
	return monitor.NewSystemSource()
}

// newLogger builds the logger handed to every component.
var newLogger = func() logger.Logger {
	return logger.NewEnvLogger("[pch]")
}

// app holds the collaborators built from one loaded config. The client
// and store are created here once and injected into the pipeline.
type app struct {
	cfg        *config.Config
	configPath string
	log        logger.Logger
	thresholds monitor.Thresholds

	collector *monitor.Collector
	client    *analysis.Client
	store     *history.Store
	pipeline  *pipeline.Pipeline
}

// loadApp loads and validates the config, then wires the app.
func (o *rootOptions) loadApp() (*app, error) {
	cfg, path, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return newApp(cfg, path), nil
}

func newApp(cfg *config.Config, path string) *app {
	log := newLogger()

	collector := monitor.NewCollector(newMetricSource(),
		monitor.WithDiskPath(cfg.Monitor.DiskPath),
		monitor.WithSampleWindow(cfg.Monitor.SampleWindow),
		monitor.WithLogger(log),
	)

	client := analysis.NewClient(analysis.Options{
		BaseURL:     cfg.Backend.URL,
		Model:       cfg.Backend.Model,
		APIKey:      cfg.Backend.APIKey,
		Temperature: cfg.Backend.Temperature,
		MaxTokens:   cfg.Backend.MaxTokens,
		Timeout:     cfg.Backend.Timeout,
		Logger:      log,
	})

	store := history.NewStore(cfg.Store.Path,
		history.WithLockConfig(lock.Config{
			Timeout: cfg.Store.LockTimeout,
			Stale:   cfg.Store.LockStale,
		}),
		history.WithLogger(log),
	)

	return &app{
		cfg:        cfg,
		configPath: path,
		log:        log,
		thresholds: monitor.NewThresholds(cfg.Monitor.Thresholds.Warning, cfg.Monitor.Thresholds.Critical),
		collector:  collector,
		client:     client,
		store:      store,
		pipeline:   pipeline.New(collector, client, store, pipeline.WithLogger(log)),
	}
}

// writeJSON writes a success envelope, or a failure envelope carrying
// data when err is set. A reported failure becomes an ExitError so
// Execute doesn't print it a second time.
func writeJSON(w io.Writer, data any, err error) error {
	if err != nil {
		if werr := output.Write(w, output.Failure(err, data)); werr != nil {
			return werr
		}
		return reported(err)
	}
	return output.WriteSuccess(w, data)
}
