package testsupport

import (
	"path/filepath"
	"testing"

	"likebot/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.InputFile = filepath.Join(base, "followers.txt")
	cfg.Paths.SummaryFile = filepath.Join(base, "summary_report.json")
	cfg.Service.Username = "operator"
	cfg.Service.Token = "test-token"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithConcurrency overrides the worker pool size on the test config.
func WithConcurrency(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Processing.ConcurrencyLimit = limit
	}
}

// WithBaseURL points the content client at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Service.BaseURL = url
	}
}
