package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"homelead-workers/internal/common/logger"
	"homelead-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "query:llm:"

// CachedCompleter memoizes completions in Redis. Cache failures are logged
// and fall through to the wrapped completer.
type CachedCompleter struct {
	next   Completer
	redis  redis.Cmdable
	ttl    time.Duration
	scope  string
	logger logger.Logger
}

// NewCachedCompleter keys entries by scope (normally the model name) and
// prompt.
func NewCachedCompleter(next Completer, rdb redis.Cmdable, ttl time.Duration, scope string, log logger.Logger) *CachedCompleter {
	return &CachedCompleter{next: next, redis: rdb, ttl: ttl, scope: scope, logger: log}
}

func (c *CachedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	key := CacheKey(c.scope, prompt)

	cached, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.QueryCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, redis.Nil):
		metrics.QueryCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.QueryCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("Completion cache read failed", map[string]interface{}{"error": err.Error()})
	}

	text, err := c.next.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := c.redis.Set(ctx, key, text, c.ttl).Err(); err != nil {
		c.logger.Warn("Completion cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return text, nil
}

func CacheKey(scope, prompt string) string {
	sum := sha256.Sum256([]byte(scope + "\x00" + prompt))
	return cachePrefix + hex.EncodeToString(sum[:])
}
