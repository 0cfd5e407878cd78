package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

func newTestRedisLocker(t *testing.T) (*RedisLocker, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	l := NewRedisLocker(client, 10*time.Second, time.Millisecond)
	l.token = func() string { return "tok-1" }
	return l, mock
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	l, mock := newTestRedisLocker(t)

	mock.ExpectSetNX("rentchain:lock:t1", "tok-1", 10*time.Second).SetVal(true)
	mock.ExpectEvalSha(releaseScript.Hash(), []string{"rentchain:lock:t1"}, "tok-1").SetVal(int64(1))

	unlock, err := l.Lock(context.Background(), "t1")
	require.NoError(t, err)
	unlock()
	unlock()

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_RetriesWhileHeld(t *testing.T) {
	l, mock := newTestRedisLocker(t)

	mock.ExpectSetNX("rentchain:lock:t1", "tok-1", 10*time.Second).SetVal(false)
	mock.ExpectSetNX("rentchain:lock:t1", "tok-1", 10*time.Second).SetVal(false)
	mock.ExpectSetNX("rentchain:lock:t1", "tok-1", 10*time.Second).SetVal(true)

	_, err := l.Lock(context.Background(), "t1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_GivesUpOnContext(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := NewRedisLocker(client, 10*time.Second, time.Hour)
	l.token = func() string { return "tok-1" }

	mock.ExpectSetNX("rentchain:lock:t1", "tok-1", 10*time.Second).SetVal(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := l.Lock(ctx, "t1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)
}

func TestRedisLocker_RedisDown(t *testing.T) {
	l, mock := newTestRedisLocker(t)

	mock.ExpectSetNX("rentchain:lock:t1", "tok-1", 10*time.Second).SetErr(errors.New("dial tcp: connection refused"))

	_, err := l.Lock(context.Background(), "t1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)
}
