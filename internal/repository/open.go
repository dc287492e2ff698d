package repository

import (
	"context"
	"fmt"
)

// Store backends selectable with CONTACT_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// RedisNamespace prefixes every key this service writes to Redis.
const RedisNamespace = "campusswap:"

// StoreConfig は KVStore の接続設定
type StoreConfig struct {
	Kind        string
	DatabaseURL string
	RedisURL    string
}

// OpenKVStore は設定に応じた KVStore を生成する。
// 返り値の close は接続を解放する（memory の場合は何もしない）。
func OpenKVStore(ctx context.Context, cfg StoreConfig) (store KVStore, closeFn func(), err error) {
	switch cfg.Kind {
	case "", StoreMemory:
		return NewMemoryKVStore(), func() {}, nil
	case StorePostgres:
		pool, err := NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return NewPgKVStore(pool), pool.Close, nil
	case StoreRedis:
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisKVStore(client, RedisNamespace), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown CONTACT_STORE %q", cfg.Kind)
	}
}
