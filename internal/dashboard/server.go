// Package dashboard serves the browser UI: a single page that runs
// checks and analyses through the same pipeline as the CLI, plus a small
// JSON API and a websocket that announces history changes.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rileyhilliard/pch/internal/analysis"
	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/history"
	"github.com/rileyhilliard/pch/internal/logger"
	"github.com/rileyhilliard/pch/internal/monitor"
	"github.com/rileyhilliard/pch/internal/output"
	"github.com/rileyhilliard/pch/internal/pipeline"
)

// DefaultAddr is where the dashboard listens when nothing is configured.
const DefaultAddr = "127.0.0.1:8501"

// HistoryStore is the slice of the history store the dashboard uses.
type HistoryStore interface {
	pipeline.Recorder
	LoadAll() []history.Entry
	LoadRecent(n int) []history.Entry
	Clear() error
}

// Events delivers history change notifications. *history.Watcher
// satisfies it.
type Events interface {
	Subscribe() chan history.Event
	Unsubscribe(ch chan history.Event)
}

// Options configures a Server.
type Options struct {
	Collector    pipeline.Collector
	Analyzer     analysis.Analyzer
	Store        HistoryStore
	Events       Events // optional; without it /ws/events only keeps the socket open
	Thresholds   monitor.Thresholds
	HistoryLimit int
	Backend      string // shown in the page header
	Version      string
	Logger       logger.Logger
	Now          func() time.Time
}

// Server is the dashboard HTTP handler.
type Server struct {
	collector    pipeline.Collector
	pipe         *pipeline.Pipeline
	store        HistoryStore
	events       Events
	thresholds   monitor.Thresholds
	historyLimit int
	backend      string
	version      string
	log          logger.Logger

	sessions *sessions
	mux      *http.ServeMux
}

// New builds a Server and registers its routes.
func New(opts Options) *Server {
	log := logger.OrDefault(opts.Logger)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	thresholds := opts.Thresholds
	if thresholds == (monitor.Thresholds{}) {
		thresholds = monitor.DefaultThresholds
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = 10
	}

	s := &Server{
		collector: opts.Collector,
		pipe: pipeline.New(opts.Collector, opts.Analyzer, opts.Store,
			pipeline.WithLogger(log), pipeline.WithClock(now)),
		store:        opts.Store,
		events:       opts.Events,
		thresholds:   thresholds,
		historyLimit: limit,
		backend:      opts.Backend,
		version:      opts.Version,
		log:          log,
		sessions:     newSessions(now),
		mux:          http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/check", s.handleCheck)
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("DELETE /api/history", s.handleClearHistory)
	s.mux.HandleFunc("GET /api/gauges", s.handleGauges)
	s.mux.HandleFunc("GET /ws/events", s.handleEvents)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("dashboard listening on http://%s", addr)

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrUsage,
			"Couldn't start the dashboard on "+addr,
			"Pick another address with --addr")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// writeJSON writes env with the given status.
func writeJSON(w http.ResponseWriter, status int, env output.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// statusFor maps an error code onto an HTTP status.
func statusFor(err error) int {
	switch errors.CodeOf(err) {
	case errors.ErrUsage:
		return http.StatusConflict
	case errors.ErrBackendUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrBackend:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
