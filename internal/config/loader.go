package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".pch.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/pch"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes the generated environment variable names (PCH_BACKEND_URL).
	EnvPrefix = "PCH"
	// DotEnvFile is loaded from the working directory before reading the environment.
	DotEnvFile = ".env"
)

// legacyEnv maps config keys to the plain environment variable names
// accepted in addition to the PCH_ prefixed form.
var legacyEnv = map[string]string{
	"backend.url":        "LLM_BASE_URL",
	"backend.model":      "LLM_MODEL",
	"backend.api_key":    "LLM_API_KEY",
	"email.address":      "EMAIL_ADDRESS",
	"email.password":     "EMAIL_PASSWORD",
	"email.server":       "EMAIL_SERVER",
	"email.max_messages": "MAX_EMAILS_TO_CHECK",
	"history_limit":      "HISTORY_LIMIT",
}

// checkIntervalHoursEnv is an integer hour count that overrides check_interval.
const checkIntervalHoursEnv = "CHECK_INTERVAL_HOURS"

// Load reads config from the specified path. An empty path loads defaults
// plus environment overrides.
func Load(path string) (*Config, error) {
	loadDotEnv()

	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'pch config init' to create one, or point --config at an existing file")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .pch.yaml in current directory
// 3. ~/.config/pch/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if global := GlobalConfigPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// GlobalConfigPath returns ~/.config/pch/config.yaml, or "" without a home directory.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadOrDefault finds and loads the config, falling back to defaults
// (still honoring the environment) when no file exists.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		source := "the environment"
		if path != "" {
			source = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+source)
	}

	if hours := v.GetInt("check_interval_hours"); hours > 0 {
		cfg.CheckInterval = time.Duration(hours) * time.Hour
	}

	cfg.Store.Path = ExpandTilde(Expand(cfg.Store.Path))

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("version", d.Version)
	v.SetDefault("backend.url", d.Backend.URL)
	v.SetDefault("backend.model", d.Backend.Model)
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.temperature", d.Backend.Temperature)
	v.SetDefault("backend.max_tokens", d.Backend.MaxTokens)
	v.SetDefault("backend.timeout", d.Backend.Timeout.String())
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.lock_timeout", d.Store.LockTimeout.String())
	v.SetDefault("store.lock_stale", d.Store.LockStale.String())
	v.SetDefault("monitor.disk_path", d.Monitor.DiskPath)
	v.SetDefault("monitor.sample_window", d.Monitor.SampleWindow.String())
	v.SetDefault("monitor.thresholds.warning", d.Monitor.Thresholds.Warning)
	v.SetDefault("monitor.thresholds.critical", d.Monitor.Thresholds.Critical)
	v.SetDefault("dashboard.addr", d.Dashboard.Addr)
	v.SetDefault("email.address", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.server", d.Email.Server)
	v.SetDefault("email.max_messages", d.Email.MaxMessages)
	v.SetDefault("check_interval", d.CheckInterval.String())
	v.SetDefault("history_limit", d.HistoryLimit)
}

// bindEnv wires PCH_SECTION_KEY for every key plus the legacy plain names.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, env)
	}
	_ = v.BindEnv("check_interval_hours", checkIntervalHoursEnv)
}

// loadDotEnv reads .env from the working directory without overriding
// variables that are already set. A missing or malformed file is ignored.
func loadDotEnv() {
	_ = gotenv.Load(DotEnvFile)
}
