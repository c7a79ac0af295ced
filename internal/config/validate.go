package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rileyhilliard/pch/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but pch only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade pch or lower the version field.")
	}

	if err := validateBackend(cfg.Backend); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'backend' section in your .pch.yaml.")
	}

	if err := validateStore(cfg.Store); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'store' section in your .pch.yaml.")
	}

	if err := validateMonitor(cfg.Monitor); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'monitor' section in your .pch.yaml.")
	}

	if cfg.HistoryLimit <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("history_limit needs to be positive (got %d)", cfg.HistoryLimit),
			"Set history_limit to something like 10.")
	}

	if cfg.CheckInterval < 0 {
		return errors.New(errors.ErrConfig,
			"check_interval can't be negative",
			"Use a duration like 6h, or CHECK_INTERVAL_HOURS=6.")
	}

	return nil
}

// validateBackend checks the chat-completion backend settings.
func validateBackend(b BackendConfig) error {
	if strings.TrimSpace(b.URL) == "" {
		return fmt.Errorf("backend.url is empty - point it at your model server, e.g. http://localhost:1234/v1")
	}
	u, err := url.Parse(b.URL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("backend.url '%s' doesn't look like a URL", b.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.url '%s' needs an http:// or https:// scheme", b.URL)
	}
	if b.Temperature <= 0 || b.Temperature > 2 {
		return fmt.Errorf("backend.temperature needs to be above 0 and at most 2 (got %g)", b.Temperature)
	}
	if b.MaxTokens <= 0 {
		return fmt.Errorf("backend.max_tokens needs to be positive (got %d)", b.MaxTokens)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("backend.timeout needs to be positive - without one a stuck server hangs pch forever")
	}
	return nil
}

// validateStore checks history store settings.
func validateStore(s StoreConfig) error {
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("store.path is empty")
	}
	if s.LockTimeout < 0 {
		return fmt.Errorf("store.lock_timeout can't be negative")
	}
	if s.LockStale < 0 {
		return fmt.Errorf("store.lock_stale can't be negative")
	}
	if s.LockTimeout > 0 && s.LockStale > 0 && s.LockTimeout > s.LockStale {
		return fmt.Errorf("store.lock_timeout (%v) is longer than store.lock_stale (%v) - you'd time out before the lock expires", s.LockTimeout, s.LockStale)
	}
	return nil
}

// validateMonitor checks sampling and threshold settings.
func validateMonitor(m MonitorConfig) error {
	if strings.TrimSpace(m.DiskPath) == "" {
		return fmt.Errorf("monitor.disk_path is empty - use / or a drive like C:\\")
	}
	if m.SampleWindow < 0 {
		return fmt.Errorf("monitor.sample_window can't be negative")
	}
	return validateThresholds(m.Thresholds)
}

// validateThresholds checks the gauge color thresholds.
func validateThresholds(thresh ThresholdValues) error {
	if thresh.Warning < 0 || thresh.Warning > 100 {
		return fmt.Errorf("monitor.thresholds.warning needs to be 0-100 (got %d)", thresh.Warning)
	}
	if thresh.Critical < 0 || thresh.Critical > 100 {
		return fmt.Errorf("monitor.thresholds.critical needs to be 0-100 (got %d)", thresh.Critical)
	}
	if thresh.Warning > 0 && thresh.Critical > 0 && thresh.Warning >= thresh.Critical {
		return fmt.Errorf("monitor.thresholds.warning (%d%%) is higher than critical (%d%%) - should be the other way around", thresh.Warning, thresh.Critical)
	}
	return nil
}
