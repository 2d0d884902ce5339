package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
)

const defaultTTL = 30 * time.Minute

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is a single-writer lock shared by every worker pointed at the
// same Redis instance.
type RedisLock struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	logger *logging.Logger
}

func NewRedisLock(client redis.UniversalClient, ttl time.Duration, logger *logging.Logger) *RedisLock {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisLock{
		client: client,
		ttl:    ttl,
		prefix: "football-insights:",
		logger: logger.Named("redis_lock"),
	}
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (l *RedisLock) Acquire(ctx context.Context, key string) (func(), bool, error) {
	key = l.prefix + strings.TrimSpace(key)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock key=%s: %w", key, err)
	}
	if !ok {
		return func() {}, false, nil
	}

	release := func() {
		// The caller's context may already be cancelled during shutdown.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.logger.WarnContext(releaseCtx, "release lock failed", "key", key, "error", err)
		}
	}
	return release, true, nil
}
