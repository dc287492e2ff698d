package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
)

const redisScanCount = 200

// RedisKVStore is a KVStore backed by Redis. Every key is stored under
// namespace so wipes never touch keys owned by other applications.
type RedisKVStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisKVStore creates a RedisKVStore.
func NewRedisKVStore(client *redis.Client, namespace string) *RedisKVStore {
	return &RedisKVStore{client: client, namespace: namespace}
}

func (s *RedisKVStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.namespace+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv get: %w: %w", ErrStorageUnavailable, err)
	}
	return v, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.namespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("kv set: %w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *RedisKVStore) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.namespace+key, value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("kv set if absent: %w: %w", ErrStorageUnavailable, err)
	}
	return ok, nil
}

func (s *RedisKVStore) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	return s.deleteWhere(ctx, func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func (s *RedisKVStore) DeleteMatching(ctx context.Context, markers []string) (int, error) {
	return s.deleteWhere(ctx, func(key string) bool {
		return containsAny(key, markers)
	})
}

func (s *RedisKVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// deleteWhere scans the namespace and deletes keys whose un-namespaced name
// satisfies match.
func (s *RedisKVStore) deleteWhere(ctx context.Context, match func(string) bool) (int, error) {
	pattern := escapeRedisGlob(s.namespace) + "*"
	iter := s.client.Scan(ctx, 0, pattern, redisScanCount).Iterator()

	var batch []string
	deleted := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.client.Del(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("kv delete: %w: %w", ErrStorageUnavailable, err)
		}
		deleted += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		full := iter.Val()
		if !match(strings.TrimPrefix(full, s.namespace)) {
			continue
		}
		batch = append(batch, full)
		if len(batch) >= redisScanCount {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("kv scan: %w: %w", ErrStorageUnavailable, err)
	}
	if err := flush(); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// escapeRedisGlob escapes the glob metacharacters understood by SCAN MATCH.
func escapeRedisGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
