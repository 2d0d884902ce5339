package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLock_SingleHolder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := NewLocalLock()

	release, ok, err := l.Acquire(ctx, "sync:history_backward")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx, "sync:history_backward")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = l.Acquire(ctx, "sync:history_forward")
	require.NoError(t, err)
	assert.True(t, ok)

	release()
	release()

	_, ok, err = l.Acquire(ctx, "sync:history_backward")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_UnreachableServerIsAnError(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLock(client, time.Minute, logging.NewNop())
	_, ok, err := l.Acquire(context.Background(), "sync:history_forward")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "football-insights:sync:history_forward")
}

func TestNewRedisClient_RejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedisClient("http://localhost:6379")
	require.Error(t, err)

	client, err := NewRedisClient(" redis://localhost:6379/2 ")
	require.NoError(t, err)
	assert.Equal(t, 2, client.Options().DB)
	_ = client.Close()
}
