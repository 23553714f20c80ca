// internal/workers/ai-conversation/parse-user-intent/config.go
package parseuserintent

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
