package lock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Run("in-process without redis", func(t *testing.T) {
		l, client, err := Open(Options{})
		require.NoError(t, err)
		assert.Nil(t, client)
		assert.IsType(t, &KeyedMutex{}, l)
	})

	t.Run("redis when configured", func(t *testing.T) {
		l, client, err := Open(Options{RedisURL: "redis://localhost:6379/0", TTL: 30 * time.Second, Retry: 50 * time.Millisecond})
		require.NoError(t, err)
		require.NotNil(t, client)
		t.Cleanup(func() { client.Close() })

		rl, ok := l.(*RedisLocker)
		require.True(t, ok)
		assert.Equal(t, 30*time.Second, rl.ttl)
		assert.Equal(t, 50*time.Millisecond, rl.retry)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, _, err := Open(Options{RedisURL: "://nope"})
		assert.Error(t, err)
	})
}
