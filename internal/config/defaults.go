package config

const (
	defaultDataDir         = "~/.local/share/likebot"
	defaultLogDir          = "~/.local/share/likebot/logs"
	defaultInputFile       = "followers.txt"
	defaultSummaryFile     = "summary_report.json"
	defaultServiceBaseURL  = "https://api.example.com"
	defaultRequestTimeout  = 120
	defaultConcurrency     = 5
	defaultMaxRetries      = 5
	defaultRetryBaseDelay  = 5
	defaultRateLimitDelay  = 60
	defaultMaxDelay        = 60
	defaultShutdownGrace   = 10
	defaultMetricsInterval = 300
	defaultLogFormat       = "auto"
	defaultLogLevel        = "info"
)

func defaultRateLimitStatusCodes() []int {
	return []int{401, 429}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
			InputFile:   defaultInputFile,
			SummaryFile: defaultSummaryFile,
		},
		Service: Service{
			BaseURL:        defaultServiceBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Processing: Processing{
			ConcurrencyLimit:     defaultConcurrency,
			MaxRetries:           defaultMaxRetries,
			RetryBaseDelay:       defaultRetryBaseDelay,
			RateLimitDelay:       defaultRateLimitDelay,
			MaxDelay:             defaultMaxDelay,
			RateLimitStatusCodes: defaultRateLimitStatusCodes(),
			ShutdownGrace:        defaultShutdownGrace,
		},
		Metrics: Metrics{
			UpdateInterval: defaultMetricsInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
