package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrUsage,
		ErrMetricUnavailable,
		ErrBackendUnavailable,
		ErrBackend,
		ErrStoreCorrupt,
		ErrStoreWrite,
		ErrLock,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .pch.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "backend unavailable",
			code:       ErrBackendUnavailable,
			message:    "Cannot reach the analysis backend",
			suggestion: "Make sure LM Studio is running",
		},
		{
			name:       "store write",
			code:       ErrStoreWrite,
			message:    "Failed to save analysis",
			suggestion: "Check disk space",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check .pch.yaml syntax"),
			expectedParts: []string{"✗", "Invalid configuration", "Check .pch.yaml syntax"},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrBackend, "Backend returned no choices", ""),
			expectedParts: []string{"Backend returned no choices"},
			notExpected:   []string{"\n\n  \n"},
		},
		{
			name:          "error with cause",
			err:           WrapWithCode(errors.New("dial tcp: connection refused"), ErrBackendUnavailable, "Cannot reach backend", "Start it"),
			expectedParts: []string{"connection refused", "Cannot reach backend", "Start it"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("context deadline exceeded"),
		ErrBackendUnavailable,
		"Analysis backend did not answer",
		"Check that the model server is running",
	)

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "✗"))
	assert.Contains(t, lines[0], "Analysis backend did not answer")
}

func TestUnwrapAndIs(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := WrapWithCode(cause, ErrStoreWrite, "write failed", "")

	assert.Equal(t, cause, wrapped.Unwrap())
	assert.True(t, errors.Is(wrapped, cause))
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrBackend))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))

	// Codes survive fmt.Errorf wrapping
	outer := fmt.Errorf("analyze: %w", New(ErrBackendUnavailable, "down", ""))
	assert.True(t, IsCode(outer, ErrBackendUnavailable))
	assert.Equal(t, ErrBackendUnavailable, CodeOf(outer))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOk   bool
	}{
		{"ExitError returns code", NewExitError(42), 42, true},
		{"wrapped ExitError", fmt.Errorf("doctor: %w", NewExitError(1)), 1, true},
		{"standard error", errors.New("standard error"), 0, false},
		{"nil error", nil, 0, false},
		{"structured Error", New(ErrUsage, "test", ""), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := GetExitCode(tt.err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}

	assert.Equal(t, "exit code 3", NewExitError(3).Error())
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), "boom"},
		{"structured", New(ErrUsage, "No report yet", "Run pch check"), "USAGE: No report yet"},
		{"with cause", WrapWithCode(errors.New("connection refused"), ErrBackendUnavailable, "Can't reach backend", "Start it"),
			"BACKEND_UNAVAILABLE: Can't reach backend: connection refused"},
		{"nested", WrapWithCode(New(ErrLock, "Timed out", ""), ErrStoreWrite, "Couldn't save", ""),
			"STORE_WRITE: Couldn't save: LOCK: Timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.err))
		})
	}
}
