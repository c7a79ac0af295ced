package dashboard

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analysistest "github.com/rileyhilliard/pch/internal/analysis/testing"
	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/history"
	"github.com/rileyhilliard/pch/internal/logger"
	"github.com/rileyhilliard/pch/internal/monitor"
	montest "github.com/rileyhilliard/pch/internal/monitor/testing"
	"github.com/rileyhilliard/pch/internal/output"
)

const stubReply = "Status: Warning\nIssues: High disk usage\nAction: Free up disk space"

var fixedTime = time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)

func clock() time.Time { return fixedTime }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *output.Error   `json:"error"`
}

type fixture struct {
	server   *httptest.Server
	store    *history.Store
	analyzer *analysistest.FakeAnalyzer
}

func newFixture(t *testing.T, analyzer *analysistest.FakeAnalyzer) *fixture {
	t.Helper()

	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), history.WithLogger(logger.Noop()))
	collector := monitor.NewCollector(montest.NewFakeSource(25.0, 8.5, 16.0, 450.0, 512.0),
		monitor.WithClock(clock), monitor.WithLogger(logger.Noop()), monitor.WithSampleWindow(0))

	srv := New(Options{
		Collector:    collector,
		Analyzer:     analyzer,
		Store:        store,
		HistoryLimit: 10,
		Version:      "v1.0.0-test",
		Logger:       logger.Noop(),
		Now:          clock,
	})

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &fixture{server: ts, store: store, analyzer: analyzer}
}

// client returns a browser-like client that keeps its session cookie.
func (f *fixture) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, method, url string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func getBody(t *testing.T, c *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, analysistest.NewFakeAnalyzer(stubReply))

	status, env := do(t, f.client(t), http.MethodGet, f.server.URL+"/health")

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"ok","version":"v1.0.0-test"}`, string(env.Data))
}

func TestAnalyze_WithoutCheck(t *testing.T) {
	f := newFixture(t, analysistest.NewFakeAnalyzer(stubReply))

	status, env := do(t, f.client(t), http.MethodPost, f.server.URL+"/api/analyze")

	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, errors.ErrUsage, env.Error.Code)
	assert.Contains(t, strings.ToLower(env.Error.Suggestion), "run a check first")
	assert.Zero(t, f.analyzer.Calls())
}

func TestCheckThenAnalyze(t *testing.T) {
	f := newFixture(t, analysistest.NewFakeAnalyzer(stubReply))
	c := f.client(t)

	status, env := do(t, c, http.MethodPost, f.server.URL+"/api/check")
	require.Equal(t, http.StatusOK, status)

	var check struct {
		Report *monitor.HealthReport `json:"report"`
		Text   string                `json:"text"`
		Levels map[string]string     `json:"levels"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &check))
	assert.Equal(t, 25.0, check.Report.CPUPercent)
	assert.Contains(t, check.Text, "Disk: 450.0 GB / 512.0 GB (87.9%)")
	assert.Equal(t, map[string]string{"cpu": "good", "memory": "elevated", "disk": "high"}, check.Levels)

	status, env = do(t, c, http.MethodPost, f.server.URL+"/api/analyze")
	require.Equal(t, http.StatusOK, status)

	var result analyzeResponse
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, stubReply, result.Analysis)
	assert.Equal(t, "Warning", result.Status)
	assert.True(t, result.Saved)

	entries := f.store.LoadAll()
	require.Len(t, entries, 1)
	assert.Equal(t, check.Text, entries[0].Report)
	assert.Equal(t, stubReply, entries[0].Analysis)
}

func TestSessionsAreIsolated(t *testing.T) {
	f := newFixture(t, analysistest.NewFakeAnalyzer(stubReply))
	alice, bob := f.client(t), f.client(t)

	status, _ := do(t, alice, http.MethodPost, f.server.URL+"/api/check")
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, bob, http.MethodPost, f.server.URL+"/api/analyze")
	assert.Equal(t, http.StatusConflict, status)

	status, _ = do(t, alice, http.MethodPost, f.server.URL+"/api/analyze")
	assert.Equal(t, http.StatusOK, status)
}

func TestAnalyze_BackendDown(t *testing.T) {
	down := analysistest.Failing(errors.New(errors.ErrBackendUnavailable, "Can't reach the model server", ""))
	f := newFixture(t, down)
	c := f.client(t)

	do(t, c, http.MethodPost, f.server.URL+"/api/check")
	status, env := do(t, c, http.MethodPost, f.server.URL+"/api/analyze")

	assert.Equal(t, http.StatusServiceUnavailable, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, errors.ErrBackendUnavailable, env.Error.Code)
	assert.Empty(t, f.store.LoadAll())
}

func TestHistoryEndpoints(t *testing.T) {
	f := newFixture(t, analysistest.NewFakeAnalyzer(stubReply))
	c := f.client(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.store.Append(history.NewEntry(fixedTime.Add(time.Duration(i)*time.Minute),
			history.TypeSystem, "report", "analysis "+string(rune('a'+i)))))
	}

	tests := []struct {
		query  string
		status int
		count  int
		first  string
	}{
		{"", http.StatusOK, 3, "analysis a"},
		{"?limit=2", http.StatusOK, 2, "analysis b"},
		{"?limit=all", http.StatusOK, 3, "analysis a"},
		{"?limit=0", http.StatusOK, 0, ""},
		{"?limit=nope", http.StatusBadRequest, 0, ""},
		{"?limit=-1", http.StatusBadRequest, 0, ""},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			status, env := do(t, c, http.MethodGet, f.server.URL+"/api/history"+tc.query)
			assert.Equal(t, tc.status, status)
			if tc.status != http.StatusOK {
				assert.False(t, env.Success)
				return
			}

			var resp historyResponse
			require.NoError(t, json.Unmarshal(env.Data, &resp))
			assert.Equal(t, tc.count, resp.Count)
			require.Len(t, resp.Entries, tc.count)
			if tc.count > 0 {
				assert.Equal(t, tc.first, resp.Entries[0].Analysis)
			}
		})
	}

	status, env := do(t, c, http.MethodDelete, f.server.URL+"/api/history")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Empty(t, f.store.LoadAll())
}

func TestGauges(t *testing.T) {
	f := newFixture(t, analysistest.NewFakeAnalyzer(stubReply))
	c := f.client(t)

	status, body := getBody(t, c, f.server.URL+"/api/gauges")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Run a check to see gauges.")

	do(t, c, http.MethodPost, f.server.URL+"/api/check")

	status, body = getBody(t, c, f.server.URL+"/api/gauges")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "echarts")
	assert.Contains(t, body, "PC Health Gauges")
	assert.Contains(t, body, "87.9")
}

func TestIndex(t *testing.T) {
	f := newFixture(t, analysistest.NewFakeAnalyzer(stubReply))
	require.NoError(t, f.store.Append(history.NewEntry(fixedTime, history.TypeSystem, "report", stubReply)))

	resp, err := f.client(t).Get(f.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "PC Health Analyzer")
	assert.Contains(t, string(body), "Free up disk space")
	assert.Contains(t, string(body), `class="status-Warning"`)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "index should issue a session cookie")
	assert.True(t, cookie.HttpOnly)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, analysistest.NewFakeAnalyzer(stubReply))

	resp, err := http.Get(f.server.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "/api/check")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{errors.ErrUsage, http.StatusConflict},
		{errors.ErrBackendUnavailable, http.StatusServiceUnavailable},
		{errors.ErrBackend, http.StatusBadGateway},
		{errors.ErrStoreWrite, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, statusFor(errors.New(tc.code, "x", "")), tc.code)
	}
}
