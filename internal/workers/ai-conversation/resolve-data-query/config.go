// internal/workers/ai-conversation/resolve-data-query/config.go
package resolvedataquery

import (
	"time"

	"homelead-workers/internal/common/camunda"
	"homelead-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// Retry governs resending the completion command to the gateway.
	Retry *camunda.RetryConfig
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Retry:   camunda.DefaultRetryConfig,
	}
}

// ConfigFrom uses the worker's job timeout as the pipeline deadline.
func ConfigFrom(w config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if w.Timeout > 0 {
		cfg.Timeout = config.GetDuration(w.Timeout)
	}
	if w.MaxRetries > 0 {
		cfg.Retry = &camunda.RetryConfig{
			MaxRetries: w.MaxRetries,
			BaseDelay:  camunda.DefaultRetryConfig.BaseDelay,
			MaxDelay:   camunda.DefaultRetryConfig.MaxDelay,
		}
	}
	return cfg
}
