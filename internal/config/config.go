package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file location configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	LogDir      string `toml:"log_dir"`
	InputFile   string `toml:"input_file"`
	SummaryFile string `toml:"summary_file"`
}

// Service contains connection settings for the remote content platform.
type Service struct {
	BaseURL        string `toml:"base_url"`
	Username       string `toml:"username"`
	Token          string `toml:"token"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Processing contains retry, backoff, and concurrency settings for the
// target pipeline.
type Processing struct {
	ConcurrencyLimit     int   `toml:"concurrency_limit"`
	MaxRetries           int   `toml:"max_retries"`
	RetryBaseDelay       int   `toml:"retry_base_delay"`
	RateLimitDelay       int   `toml:"rate_limit_delay"`
	MaxDelay             int   `toml:"max_delay"`
	RateLimitStatusCodes []int `toml:"rate_limit_status_codes"`
	ShutdownGrace        int   `toml:"shutdown_grace"`
}

// Metrics contains configuration for the background metrics task.
type Metrics struct {
	UpdateInterval int `toml:"update_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for likebot.
//
// Configuration sections by subsystem:
//   - Paths: data directory, log directory, default input and summary files
//   - Service: remote platform connection settings
//   - Processing: concurrency limit, retry budget, backoff delays
//   - Metrics: background metrics refresh interval
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Service    Service    `toml:"service"`
	Processing Processing `toml:"processing"`
	Metrics    Metrics    `toml:"metrics"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/likebot/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. The boolean reports whether a
// file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	// A defaults-only config is allowed so bootstrap commands like
	// `config init` work before credentials exist. Commands that talk
	// to the service validate before running.
	if exists {
		if err := cfg.Validate(); err != nil {
			return nil, "", false, err
		}
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("likebot.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.DataDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	for _, field := range []*string{&c.Paths.InputFile, &c.Paths.SummaryFile} {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.Service.BaseURL = strings.TrimRight(strings.TrimSpace(c.Service.BaseURL), "/")
	c.Service.Username = strings.TrimSpace(c.Service.Username)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if len(c.Processing.RateLimitStatusCodes) == 0 {
		c.Processing.RateLimitStatusCodes = defaultRateLimitStatusCodes()
	}
	return nil
}

// EnsureDirectories creates the directories likebot needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequestTimeout returns the per-call remote timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Service.RequestTimeout) * time.Second
}

// ShutdownGrace returns the bounded shutdown wait as a duration.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.Processing.ShutdownGrace) * time.Second
}

// MetricsInterval returns the metrics refresh interval as a duration.
func (c *Config) MetricsInterval() time.Duration {
	return time.Duration(c.Metrics.UpdateInterval) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
