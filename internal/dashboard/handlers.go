package dashboard

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rileyhilliard/pch/internal/analysis"
	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/history"
	"github.com/rileyhilliard/pch/internal/monitor"
	"github.com/rileyhilliard/pch/internal/output"
)

// checkResponse is the payload of POST /api/check.
type checkResponse struct {
	Report *monitor.HealthReport `json:"report"`
	Text   string                `json:"text"`
	Levels map[string]string     `json:"levels"`
}

// analyzeResponse is the payload of POST /api/analyze.
type analyzeResponse struct {
	Analysis string `json:"analysis"`
	Status   string `json:"status,omitempty"`
	Saved    bool   `json:"saved"`
}

// historyResponse is the payload of GET /api/history.
type historyResponse struct {
	Entries []history.Entry `json:"entries"`
	Count   int             `json:"count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, output.Success(map[string]string{
		"status":  "ok",
		"version": s.version,
	}))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.id(w, r)

	report := s.collector.Collect(r.Context())
	s.sessions.setReport(id, report)

	writeJSON(w, http.StatusOK, output.Success(checkResponse{
		Report: report,
		Text:   report.Render(),
		Levels: s.levels(report),
	}))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.id(w, r)

	report := s.sessions.lastReport(id)
	if report == nil {
		writeJSON(w, http.StatusConflict, output.Failure(
			errors.New(errors.ErrUsage, "No report to analyze yet", "Run a check first"), nil))
		return
	}

	result, err := s.pipe.RunAnalysis(r.Context(), report)
	if err != nil {
		s.log.Warn("dashboard analysis: %s", errors.Summary(err))
		var partial any
		if result != "" {
			partial = analyzeResponse{Analysis: result, Status: string(analysis.ParseStatus(result))}
		}
		writeJSON(w, statusFor(err), output.Failure(err, partial))
		return
	}

	writeJSON(w, http.StatusOK, output.Success(analyzeResponse{
		Analysis: result,
		Status:   string(analysis.ParseStatus(result)),
		Saved:    true,
	}))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.historyLimit
	all := false
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if strings.EqualFold(raw, "all") {
			all = true
		} else {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeJSON(w, http.StatusBadRequest, output.Failure(
					errors.New(errors.ErrUsage, "limit must be a non-negative number or 'all'", ""), nil))
				return
			}
			limit = n
		}
	}

	var entries []history.Entry
	if all {
		entries = s.store.LoadAll()
	} else {
		entries = s.store.LoadRecent(limit)
	}

	writeJSON(w, http.StatusOK, output.Success(historyResponse{
		Entries: entries,
		Count:   len(entries),
	}))
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(); err != nil {
		s.log.Error("dashboard clear: %s", errors.Summary(err))
		writeJSON(w, statusFor(err), output.Failure(err, nil))
		return
	}
	writeJSON(w, http.StatusOK, output.Success(historyResponse{Entries: []history.Entry{}}))
}

func (s *Server) handleGauges(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.id(w, r)

	report := s.sessions.lastReport(id)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if report == nil {
		_ = pageTemplates.ExecuteTemplate(w, "no_gauges", nil)
		return
	}

	if err := renderGauges(w, report, s.thresholds); err != nil {
		s.log.Error("rendering gauges: %v", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.sessions.id(w, r)

	data := indexData{
		Version: s.version,
		Backend: s.backend,
		Limit:   s.historyLimit,
		Entries: reverse(s.store.LoadRecent(s.historyLimit)),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "index", data); err != nil {
		s.log.Error("rendering index: %v", err)
	}
}

// levels classifies each available metric for the page's color coding.
func (s *Server) levels(r *monitor.HealthReport) map[string]string {
	out := make(map[string]string, 3)
	if r.IsAvailable(monitor.MetricCPU) {
		out[string(monitor.MetricCPU)] = s.thresholds.Level(r.CPUPercent).String()
	}
	if r.IsAvailable(monitor.MetricMemory) {
		out[string(monitor.MetricMemory)] = s.thresholds.Level(r.MemoryPercent()).String()
	}
	if r.IsAvailable(monitor.MetricDisk) {
		out[string(monitor.MetricDisk)] = s.thresholds.Level(r.DiskPercent()).String()
	}
	return out
}

// reverse returns entries newest first.
func reverse(entries []history.Entry) []history.Entry {
	out := make([]history.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}
