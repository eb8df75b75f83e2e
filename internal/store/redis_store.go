package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

// DefaultRedisPrefix namespaces every hash written by RedisStore.
const DefaultRedisPrefix = "lawmate"

// RedisStore keeps each namespace in one hash named <prefix>:<namespace>.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore wraps an existing client. An empty prefix uses DefaultRedisPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) hash(namespace string) string {
	return s.prefix + ":" + namespace
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	v, err := s.client.HGet(ctx, s.hash(namespace), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis store: get %s/%s: %w", namespace, key, err)
	}
	return v, true, nil
}

// Set stores value under key.
func (s *RedisStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := s.client.HSet(ctx, s.hash(namespace), key, value).Err(); err != nil {
		return fmt.Errorf("redis store: set %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes key from namespace.
func (s *RedisStore) Delete(ctx context.Context, namespace, key string) error {
	if err := s.client.HDel(ctx, s.hash(namespace), key).Err(); err != nil {
		return fmt.Errorf("redis store: delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Clear deletes the namespace hash.
func (s *RedisStore) Clear(ctx context.Context, namespace string) error {
	if err := s.client.Del(ctx, s.hash(namespace)).Err(); err != nil {
		return fmt.Errorf("redis store: clear %s: %w", namespace, err)
	}
	return nil
}

// Compile-time assertion that RedisStore implements domain.KeyValueStore.
var _ domain.KeyValueStore = (*RedisStore)(nil)
