package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	opTimeout time.Duration
}

func NewRedisStore(client *redis.Client, opTimeout time.Duration) *RedisStore {
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &RedisStore{client: client, keyPrefix: "session:", opTimeout: opTimeout}
}

func (r *RedisStore) key(token string) string {
	return r.keyPrefix + token
}

// Create writes token -> userID with the fixed session TTL.
func (r *RedisStore) Create(ctx context.Context, token, userID string) error {
	if token == "" || userID == "" {
		return errors.New("session: missing token or user id")
	}
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()
	return r.client.Set(ctx, r.key(token), userID, TTL).Err()
}

// Resolve returns the user ID the token maps to. It deliberately does not
// extend the TTL: expiry is absolute, not sliding.
func (r *RedisStore) Resolve(ctx context.Context, token string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()
	userID, err := r.client.Get(ctx, r.key(token)).Result()
	if err == redis.Nil {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// Destroy deletes the mapping. Deleting an unknown or already-expired token
// is not an error.
func (r *RedisStore) Destroy(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()
	return r.client.Del(ctx, r.key(token)).Err()
}
