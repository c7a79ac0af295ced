package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stubReply = "Status: Warning\nIssues: High disk usage\nAction: Free up disk space"

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatResponse(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "local-model",
		"choices": []map[string]interface{}{
			{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	return NewClient(Options{
		BaseURL:     url,
		Temperature: DefaultTemperature,
		Timeout:     2 * time.Second,
		Logger:      logger.Noop(),
	})
}

func TestClient_Analyze(t *testing.T) {
	var got chatRequest
	var path, auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse(stubReply)))
	}))
	defer srv.Close()

	report := "PC Health Report - 2024-03-09 14:30:05\n\nCPU Usage: 25.0%"
	out, err := newClient(t, srv.URL+"/v1").Analyze(context.Background(), report)
	require.NoError(t, err)

	assert.Equal(t, stubReply, out)
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "Bearer not-needed", auth)
	assert.Equal(t, DefaultModel, got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 0.001)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, report)
	assert.Contains(t, got.Messages[0].Content, "Good/Warning/Critical")
}

func TestClient_ZeroTemperatureUsesDefault(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse(stubReply)))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Temperature: 0, Logger: logger.Noop()})
	_, err := c.Analyze(context.Background(), "report")
	require.NoError(t, err)

	temp, ok := body["temperature"]
	require.True(t, ok, "temperature must always be sent")
	assert.InDelta(t, DefaultTemperature, temp, 0.001)
}

func TestClient_Analyze_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{"server error", http.StatusInternalServerError, `{"error": {"message": "model crashed", "type": "server_error"}}`, errors.ErrBackend},
		{"unparseable error body", http.StatusBadGateway, `<html>bad gateway</html>`, errors.ErrBackend},
		{"malformed payload", http.StatusOK, `{"choices": [`, errors.ErrBackend},
		{"no choices", http.StatusOK, `{"id": "x", "choices": []}`, errors.ErrBackend},
		{"empty content", http.StatusOK, chatResponse("   "), errors.ErrBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			out, err := newClient(t, srv.URL).Analyze(context.Background(), "report")
			require.Error(t, err)
			assert.Empty(t, out)
			assert.True(t, errors.IsCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestClient_Analyze_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url).Analyze(context.Background(), "report")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBackendUnavailable), "got %v", err)
	assert.Contains(t, err.Error(), "running")
}

func TestClient_Analyze_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Options{BaseURL: srv.URL, Timeout: 100 * time.Millisecond, Logger: logger.Noop()})
	_, err := c.Analyze(context.Background(), "report")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBackendUnavailable), "got %v", err)
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object": "list", "data": [{"id": "llama-3-8b", "object": "model"}, {"id": "mistral-7b", "object": "model"}]}`))
	}))
	defer srv.Close()

	ids, err := newClient(t, srv.URL+"/v1/").Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama-3-8b", "mistral-7b"}, ids)
}

func TestClient_Ping_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url).Ping(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrBackendUnavailable))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Options{})
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, DefaultMaxTokens, c.maxTokens)
	assert.Equal(t, DefaultTimeout, c.timeout)

	c = NewClient(Options{BaseURL: "http://box:1234/v1/", Model: "phi-3", APIKey: "sk-x", MaxTokens: 50})
	assert.Equal(t, "http://box:1234/v1", c.BaseURL())
	assert.Equal(t, "phi-3", c.Model())
	assert.Equal(t, 50, c.maxTokens)
}
