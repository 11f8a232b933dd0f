package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// NewRedisClientFromURL opens the shared key-value store client used by the
// session store and the score ledger. The pool bounds come from the URL
// (pool_size, pool_timeout) or go-redis defaults.
func NewRedisClientFromURL(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("redis url is empty")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
