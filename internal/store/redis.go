package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "mastermind:session:"

// Redis keeps sessions under a common key prefix. Every write renews the
// TTL, so abandoned games expire on their own.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, id string) ([]byte, error) {
	v, err := r.client.Get(ctx, redisPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *Redis) Set(ctx context.Context, id string, value []byte) error {
	return r.client.Set(ctx, redisPrefix+id, value, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, redisPrefix+id).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
