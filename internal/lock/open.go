package lock

import (
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Options struct {
	RedisURL string
	TTL      time.Duration
	Retry    time.Duration
}

// Open returns a RedisLocker when RedisURL is set and a KeyedMutex otherwise.
// Every process that checkpoints the same tenants must use the same Options,
// or their locks do not exclude each other. The client is nil for the
// in-process locker; callers own closing it.
func Open(opts Options) (Locker, *redis.Client, error) {
	if opts.RedisURL == "" {
		return NewKeyedMutex(), nil, nil
	}
	ropts, err := redis.ParseURL(opts.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("Open: parse redis url: %w", err)
	}
	client := redis.NewClient(ropts)
	return NewRedisLocker(client, opts.TTL, opts.Retry), client, nil
}
