package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/pch/internal/analysis"
	analysistest "github.com/rileyhilliard/pch/internal/analysis/testing"
	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/history"
	"github.com/rileyhilliard/pch/internal/logger"
	"github.com/rileyhilliard/pch/internal/monitor"
	montest "github.com/rileyhilliard/pch/internal/monitor/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stubReply = "Status: Warning\nIssues: High disk usage\nAction: Free up disk space"

var fixedTime = time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)

func clock() time.Time { return fixedTime }

func newStore(t *testing.T) *history.Store {
	t.Helper()
	return history.NewStore(filepath.Join(t.TempDir(), "history.json"), history.WithLogger(logger.Noop()))
}

func scenarioCollector() *monitor.Collector {
	return monitor.NewCollector(montest.NewFakeSource(25.0, 8.5, 16.0, 450.0, 512.0),
		monitor.WithClock(clock), monitor.WithLogger(logger.Noop()), monitor.WithSampleWindow(0))
}

// failingRecorder stands in for a full disk.
type failingRecorder struct{ err error }

func (f failingRecorder) Append(history.Entry) error { return f.err }

func TestRunCheck_RemembersLastReport(t *testing.T) {
	p := New(scenarioCollector(), analysistest.NewFakeAnalyzer(stubReply), newStore(t), WithLogger(logger.Noop()))

	assert.Nil(t, p.LastReport())

	r := p.RunCheck(context.Background())
	require.NotNil(t, r)
	assert.Same(t, r, p.LastReport())
	assert.Equal(t, 25.0, r.CPUPercent)
}

func TestRunAnalysis_DiskScenario(t *testing.T) {
	store := newStore(t)
	fake := analysistest.NewFakeAnalyzer(stubReply)
	p := New(scenarioCollector(), fake, store, WithLogger(logger.Noop()), WithClock(clock))

	before := len(store.LoadAll())
	report := p.RunCheck(context.Background())

	out, err := p.RunAnalysis(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, stubReply, out)

	entries := store.LoadAll()
	require.Len(t, entries, before+1)
	got := entries[len(entries)-1]
	assert.Contains(t, got.Report, "87.9")
	assert.Equal(t, stubReply, got.Analysis)
	assert.Equal(t, history.TypeSystem, got.Type)
	assert.True(t, fixedTime.Equal(got.Timestamp.Time))

	require.Len(t, fake.Reports, 1)
	assert.Equal(t, report.Render(), fake.Reports[0], "analyzer sees the rendered report verbatim")
}

func TestRunAnalysis_FailureAppendsNothing(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unavailable", errors.New(errors.ErrBackendUnavailable, "Can't reach the model server", "")},
		{"backend error", errors.New(errors.ErrBackend, "Empty reply", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			require.NoError(t, store.Append(history.NewEntry(fixedTime, history.TypeSystem, "old", "old")))

			p := New(scenarioCollector(), analysistest.Failing(tt.err), store, WithLogger(logger.Noop()))
			out, err := p.RunAnalysis(context.Background(), p.RunCheck(context.Background()))

			assert.Empty(t, out)
			assert.Same(t, tt.err, err, "error surfaces unchanged")
			assert.Len(t, store.LoadAll(), 1)
		})
	}
}

func TestRunAnalysis_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := newStore(t)
	require.NoError(t, store.Append(history.NewEntry(fixedTime, history.TypeSystem, "old", "old")))
	before := len(store.LoadAll())

	client := analysis.NewClient(analysis.Options{BaseURL: url, Timeout: 2 * time.Second, Logger: logger.Noop()})
	p := New(scenarioCollector(), client, store, WithLogger(logger.Noop()))

	_, err := p.RunAnalysis(context.Background(), p.RunCheck(context.Background()))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBackendUnavailable))
	assert.Len(t, store.LoadAll(), before)
}

func TestRunAnalysis_StoreFailureStillReturnsText(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"structured", errors.New(errors.ErrStoreWrite, "disk full", "")},
		{"plain", context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewBufferLogger()
			p := New(scenarioCollector(), analysistest.NewFakeAnalyzer(stubReply), failingRecorder{tt.err}, WithLogger(log))

			out, err := p.RunAnalysis(context.Background(), p.RunCheck(context.Background()))
			assert.Equal(t, stubReply, out)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrStoreWrite))
			assert.True(t, log.HasLevel("error"))
		})
	}
}

func TestAnalyzeLast(t *testing.T) {
	store := newStore(t)
	fake := analysistest.NewFakeAnalyzer(stubReply)
	p := New(scenarioCollector(), fake, store, WithLogger(logger.Noop()))

	_, err := p.AnalyzeLast(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUsage))
	assert.Equal(t, 0, fake.Calls())
	assert.Empty(t, store.LoadAll())

	p.RunCheck(context.Background())
	out, err := p.AnalyzeLast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stubReply, out)
	assert.Len(t, store.LoadAll(), 1)
}

func TestRunAnalysis_NilReport(t *testing.T) {
	p := New(scenarioCollector(), analysistest.NewFakeAnalyzer(stubReply), newStore(t), WithLogger(logger.Noop()))
	_, err := p.RunAnalysis(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.ErrUsage))
}

func TestCheckAndAnalyze(t *testing.T) {
	store := newStore(t)
	p := New(scenarioCollector(), analysistest.NewFakeAnalyzer(stubReply), store, WithLogger(logger.Noop()))

	report, out, err := p.CheckAndAnalyze(context.Background())
	require.NoError(t, err)
	assert.Same(t, report, p.LastReport())
	assert.Equal(t, stubReply, out)
	assert.True(t, strings.HasPrefix(store.LoadAll()[0].Report, "PC Health Report - 2024-03-09 14:30:05"))
}
