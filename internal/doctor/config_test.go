package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/pch/internal/config"
)

// isolate runs the test in an empty directory with an empty home so no
// real config file is found.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, name := range []string{"LLM_BASE_URL", "LLM_MODEL", "HISTORY_LIMIT", "PCH_BACKEND_URL", "PCH_BACKEND_TEMPERATURE"} {
		t.Setenv(name, "")
	}
	t.Chdir(dir)
	return dir
}

func TestConfigFileCheck(t *testing.T) {
	t.Run("explicit path missing", func(t *testing.T) {
		dir := isolate(t)
		check := &ConfigFileCheck{ConfigPath: filepath.Join(dir, "nonexistent.yaml")}

		result := check.Run()

		assert.Equal(t, StatusFail, result.Status)
		assert.Contains(t, result.Message, "nonexistent.yaml")
		assert.False(t, result.Fixable)
	})

	t.Run("none found then fixed", func(t *testing.T) {
		dir := isolate(t)
		check := &ConfigFileCheck{}

		result := check.Run()
		assert.Equal(t, StatusWarn, result.Status)
		assert.True(t, result.Fixable)

		require.NoError(t, check.Fix())
		assert.FileExists(t, filepath.Join(dir, config.ConfigFileName))

		result = check.Run()
		assert.Equal(t, StatusPass, result.Status)
		assert.Contains(t, result.Message, config.ConfigFileName)
	})

	t.Run("name and category", func(t *testing.T) {
		check := &ConfigFileCheck{}
		assert.Equal(t, "config_file", check.Name())
		assert.Equal(t, CategoryConfig, check.Category())
	})
}

func TestConfigValidCheck(t *testing.T) {
	tests := []struct {
		name    string
		content string // empty means no file
		status  CheckStatus
		message string
	}{
		{
			name:    "defaults",
			status:  StatusPass,
			message: "Config is valid",
		},
		{
			name:    "valid file",
			content: "backend:\n  url: http://localhost:8080/v1\nhistory_limit: 5\n",
			status:  StatusPass,
			message: "Config is valid",
		},
		{
			name:    "bad temperature",
			content: "backend:\n  temperature: 5\n",
			status:  StatusFail,
			message: "temperature",
		},
		{
			name:    "broken yaml",
			content: "backend: [\n",
			status:  StatusFail,
			message: "Failed to read config file",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := isolate(t)
			if tc.content != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(tc.content), 0644))
			}

			result := (&ConfigValidCheck{}).Run()

			assert.Equal(t, tc.status, result.Status, result.Message)
			assert.Contains(t, result.Message, tc.message)
		})
	}
}

func TestNewConfigChecks(t *testing.T) {
	checks := NewConfigChecks("")
	require.Len(t, checks, 2)
	assert.Equal(t, "config_file", checks[0].Name())
	assert.Equal(t, "config_valid", checks[1].Name())
}
