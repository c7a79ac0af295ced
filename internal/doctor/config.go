package doctor

import (
	"fmt"

	"github.com/rileyhilliard/pch/internal/config"
	"github.com/rileyhilliard/pch/internal/errors"
)

// ConfigFileCheck reports which config file is in effect. Running on
// defaults is fine, so a missing file is only a warning.
type ConfigFileCheck struct {
	ConfigPath string // Explicit --config path, or empty to search
	// InitPath is where Fix writes a default file. Defaults to ./.pch.yaml.
	InitPath string
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run() CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    errorMessage(err),
			Suggestion: "Check the --config path, or run 'pch config init'",
		}
	}

	if path == "" {
		return CheckResult{
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'pch config init' to create " + config.ConfigFileName,
			Fixable:    true,
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}

// Fix writes a default config file.
func (c *ConfigFileCheck) Fix() error {
	path := c.InitPath
	if path == "" {
		path = config.ConfigFileName
	}
	return config.WriteDefault(path, false)
}

// ConfigValidCheck loads the effective config (file plus environment)
// and validates it.
type ConfigValidCheck struct {
	ConfigPath string
}

func (c *ConfigValidCheck) Name() string     { return "config_valid" }
func (c *ConfigValidCheck) Category() string { return CategoryConfig }

func (c *ConfigValidCheck) Run() CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    errorMessage(err),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    errorMessage(err),
			Suggestion: suggestionOf(err),
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: "Config is valid",
	}
}

func (c *ConfigValidCheck) Fix() error {
	return nil // Invalid values need a human
}

// errorMessage returns the message of a structured error without its
// decoration.
func errorMessage(err error) string {
	if e, ok := err.(*errors.Error); ok {
		return e.Message
	}
	return err.Error()
}

func suggestionOf(err error) string {
	if e, ok := err.(*errors.Error); ok {
		return e.Suggestion
	}
	return ""
}

// NewConfigChecks creates all config-related checks.
func NewConfigChecks(configPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigValidCheck{ConfigPath: configPath},
	}
}
