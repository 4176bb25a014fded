package blobstore

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "face:"

// RedisStore is a concrete blob store backed by go-redis. Crops are
// kept without expiration; they live until the enrollment is revoked.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a new Redis-backed blob store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put writes a blob to Redis.
func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, keyPrefix+key, data, 0).Err()
}

// Get retrieves a blob from Redis.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes a blob from Redis. Deleting an absent key succeeds.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
