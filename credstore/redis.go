package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisDefaultPrefix = "dkcred"

// Redis is a Store backed by a Redis hashless key layout: one string key per
// credential, namespaced by prefix and owner. It serves server-side agents
// (bots, BFF workers) that hold storefront sessions for many users at once.
type Redis struct {
	client *redis.Client
	prefix string
	owner  string
}

// NewRedis creates a Redis-backed store for the given owner (typically a
// user or device identifier). An empty prefix falls back to the default.
func NewRedis(client *redis.Client, prefix, owner string) *Redis {
	if prefix == "" {
		prefix = redisDefaultPrefix
	}
	return &Redis{client: client, prefix: prefix, owner: owner}
}

func (r *Redis) key(key string) string {
	return r.prefix + ":" + r.owner + ":" + key
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("credstore: redis get: %w", err)
	}
	return v, nil
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("credstore: redis set: %w", err)
	}
	return nil
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("credstore: redis del: %w", err)
	}
	return nil
}
