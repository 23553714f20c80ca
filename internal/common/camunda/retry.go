package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"homelead-workers/internal/common/errors"
)

// RetryConfig bounds how often a gateway command is resent.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

func (r *RetryConfig) delay(attempt int) time.Duration {
	d := r.BaseDelay << attempt
	if d > r.MaxDelay || d <= 0 {
		return r.MaxDelay
	}
	return d
}

// transientMarkers are substrings of gateway errors worth resending for.
var transientMarkers = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"unavailable",
	"unreachable",
	"deadline exceeded",
	"timeout",
}

// SendWithRetry sends a gateway command, resending it with exponential
// backoff while the failure looks transient. The final failure comes back as
// a StandardError classified by gatewayError. A nil cfg sends once.
func SendWithRetry[T any](ctx context.Context, cfg *RetryConfig, operation string, send func(context.Context) (T, error)) (T, error) {
	if cfg == nil {
		cfg = &RetryConfig{}
	}

	var zero T
	for attempt := 0; ; attempt++ {
		resp, err := send(ctx)
		if err == nil {
			return resp, nil
		}
		if attempt >= cfg.MaxRetries || !isTransient(err) {
			return zero, gatewayError(operation, attempt+1, err)
		}

		select {
		case <-time.After(cfg.delay(attempt)):
		case <-ctx.Done():
			return zero, errors.NewTimeoutError("zeebe",
				fmt.Errorf("%s cancelled after %d attempt(s): %w", operation, attempt+1, ctx.Err()))
		}
	}
}

func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// gatewayError maps a failed command onto the shared error codes.
func gatewayError(operation string, attempts int, err error) error {
	wrapped := fmt.Errorf("zeebe %s failed (%d attempt(s)): %w", operation, attempts, err)
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timeout"):
		return errors.NewTimeoutError("zeebe", wrapped)
	case strings.Contains(msg, "not found"):
		return errors.NewResourceNotFoundError("zeebe", wrapped.Error())
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "unauthenticated"), strings.Contains(msg, "unauthorized"):
		return errors.NewAuthenticationError(wrapped.Error())
	}
	return errors.NewExternalServiceError("zeebe", wrapped)
}
