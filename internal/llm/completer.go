// Package llm talks to an OpenAI-compatible text-completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"homelead-workers/internal/common/config"
	"homelead-workers/internal/common/logger"
	"homelead-workers/internal/common/metrics"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrLLMTimeout         = errors.New("LLM_TIMEOUT")
	ErrLLMSynthesisFailed = errors.New("LLM_SYNTHESIS_FAILED")
	ErrLLMNotConfigured   = errors.New("LLM_NOT_CONFIGURED")
)

// Completer turns a prompt into raw completion text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxRetries  int
}

// ConfigFrom maps the apis.llm section.
func ConfigFrom(c config.LLMConfig) Config {
	return Config{
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		TopP:        c.TopP,
		MaxRetries:  c.MaxRetries,
	}
}

type OpenAICompleter struct {
	client *openai.Client
	config Config
	logger logger.Logger
}

// NewOpenAICompleter returns ErrLLMNotConfigured when no API key is set.
// doer may be nil to use the SDK's default HTTP client.
func NewOpenAICompleter(cfg Config, doer openai.HTTPDoer, log logger.Logger) (*OpenAICompleter, error) {
	if cfg.APIKey == "" {
		return nil, ErrLLMNotConfigured
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if doer != nil {
		clientCfg.HTTPClient = doer
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(clientCfg),
		config: cfg,
		logger: log.With(map[string]interface{}{"model": cfg.Model}),
	}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.CompletionRequest{
		Model:       c.config.Model,
		Prompt:      prompt,
		MaxTokens:   c.config.MaxTokens,
		Temperature: requestTemperature(c.config.Temperature),
		TopP:        c.config.TopP,
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.QueryLLMRequests.WithLabelValues("timeout").Inc()
				return "", ErrLLMTimeout
			}
		}

		resp, err := c.client.CreateCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				metrics.QueryLLMRequests.WithLabelValues("empty").Inc()
				return "", fmt.Errorf("%w: completion has no choices", ErrLLMSynthesisFailed)
			}
			metrics.QueryLLMRequests.WithLabelValues("success").Inc()
			return resp.Choices[0].Text, nil
		}

		if ctx.Err() != nil {
			metrics.QueryLLMRequests.WithLabelValues("timeout").Inc()
			return "", ErrLLMTimeout
		}

		lastErr = err
		if !isRetryable(err) {
			break
		}
		c.logger.Warn("Completion attempt failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	metrics.QueryLLMRequests.WithLabelValues("error").Inc()
	return "", fmt.Errorf("%w: %s", ErrLLMSynthesisFailed, describe(lastErr))
}

// requestTemperature keeps a configured zero on the wire. The SDK drops a
// zero temperature as omitempty, which lets the provider pick its default.
func requestTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// isRetryable is true for transport failures, throttling and 5xx.
func isRetryable(err error) bool {
	status := 0
	var reqErr *openai.RequestError
	var apiErr *openai.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return true
	}
	return status == http.StatusTooManyRequests || status >= 500
}

func describe(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("status %d: %s", reqErr.HTTPStatusCode, strings.TrimSpace(string(reqErr.Body)))
	}
	if err == nil {
		return "no attempt made"
	}
	return err.Error()
}
