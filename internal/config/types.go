package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .pch.yaml configuration file.
type Config struct {
	Version       int             `yaml:"version" mapstructure:"version"`
	Backend       BackendConfig   `yaml:"backend" mapstructure:"backend"`
	Store         StoreConfig     `yaml:"store" mapstructure:"store"`
	Monitor       MonitorConfig   `yaml:"monitor" mapstructure:"monitor"`
	Dashboard     DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Email         EmailConfig     `yaml:"email" mapstructure:"email"`
	CheckInterval time.Duration   `yaml:"check_interval" mapstructure:"check_interval"`
	HistoryLimit  int             `yaml:"history_limit" mapstructure:"history_limit"`
}

// BackendConfig describes the chat-completion server that analyzes reports.
type BackendConfig struct {
	// URL is the OpenAI-compatible base URL, including the /v1 suffix.
	URL string `yaml:"url" mapstructure:"url"`

	// Model is the model identifier sent with every request.
	// Local servers like LM Studio accept any placeholder.
	Model string `yaml:"model" mapstructure:"model"`

	// APIKey is optional; local servers ignore it.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// StoreConfig controls where analysis history is persisted.
type StoreConfig struct {
	// Path is the JSON history file. Supports ~ and ${HOME}.
	Path string `yaml:"path" mapstructure:"path"`

	// LockTimeout is how long a writer waits for the history lock.
	LockTimeout time.Duration `yaml:"lock_timeout" mapstructure:"lock_timeout"`

	// LockStale is when a held lock is considered abandoned.
	LockStale time.Duration `yaml:"lock_stale" mapstructure:"lock_stale"`
}

// MonitorConfig controls metric sampling.
type MonitorConfig struct {
	// DiskPath is the mount point whose usage is reported.
	DiskPath string `yaml:"disk_path" mapstructure:"disk_path"`

	// SampleWindow is the CPU averaging window.
	SampleWindow time.Duration `yaml:"sample_window" mapstructure:"sample_window"`

	Thresholds ThresholdValues `yaml:"thresholds" mapstructure:"thresholds"`
}

// ThresholdValues defines the utilization percentages where gauges change color.
type ThresholdValues struct {
	Warning  int `yaml:"warning" mapstructure:"warning"`
	Critical int `yaml:"critical" mapstructure:"critical"`
}

// DashboardConfig controls the browser dashboard.
type DashboardConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// EmailConfig holds the optional inbox credentials.
type EmailConfig struct {
	Address     string `yaml:"address" mapstructure:"address"`
	Password    string `yaml:"password" mapstructure:"password"`
	Server      string `yaml:"server" mapstructure:"server"`
	MaxMessages int    `yaml:"max_messages" mapstructure:"max_messages"`
}

// Configured reports whether both halves of the credential pair are set.
func (e EmailConfig) Configured() bool {
	return e.Address != "" && e.Password != ""
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Backend: BackendConfig{
			URL:         "http://localhost:1234/v1",
			Model:       "local-model",
			Temperature: 0.7,
			MaxTokens:   200,
			Timeout:     60 * time.Second,
		},
		Store: StoreConfig{
			Path:        "data/history.json",
			LockTimeout: 10 * time.Second,
			LockStale:   2 * time.Minute,
		},
		Monitor: MonitorConfig{
			DiskPath:     "/",
			SampleWindow: time.Second,
			Thresholds: ThresholdValues{
				Warning:  50,
				Critical: 80,
			},
		},
		Dashboard: DashboardConfig{
			Addr: "127.0.0.1:8501",
		},
		Email: EmailConfig{
			Server:      "imap.gmail.com",
			MaxMessages: 10,
		},
		CheckInterval: 6 * time.Hour,
		HistoryLimit:  10,
	}
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Backend.APIKey != "" {
		out.Backend.APIKey = mask
	}
	if out.Email.Password != "" {
		out.Email.Password = mask
	}
	return &out
}

const mask = "********"
