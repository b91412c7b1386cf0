package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateService(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateService() error {
	if c.Service.BaseURL == "" {
		return errors.New("service.base_url must be set")
	}
	if c.Service.Username == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/likebot/config.toml"
		}
		return fmt.Errorf("service.username is required. Edit %s (create with 'likebot config init')", defaultPath)
	}
	if c.Service.RequestTimeout <= 0 {
		return errors.New("service.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if err := ensurePositiveMap(map[string]int{
		"processing.concurrency_limit": c.Processing.ConcurrencyLimit,
		"processing.retry_base_delay":  c.Processing.RetryBaseDelay,
		"processing.rate_limit_delay":  c.Processing.RateLimitDelay,
		"processing.max_delay":         c.Processing.MaxDelay,
		"processing.shutdown_grace":    c.Processing.ShutdownGrace,
	}); err != nil {
		return err
	}
	if c.Processing.MaxRetries < 0 {
		return errors.New("processing.max_retries must be non-negative")
	}
	if c.Processing.MaxDelay < c.Processing.RetryBaseDelay {
		return errors.New("processing.max_delay must be at least processing.retry_base_delay")
	}
	if c.Processing.RateLimitDelay < c.Processing.RetryBaseDelay {
		return errors.New("processing.rate_limit_delay must be at least processing.retry_base_delay")
	}
	for _, code := range c.Processing.RateLimitStatusCodes {
		if code < 100 || code > 599 {
			return fmt.Errorf("processing.rate_limit_status_codes contains invalid status %d", code)
		}
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.UpdateInterval <= 0 {
		return errors.New("metrics.update_interval must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
