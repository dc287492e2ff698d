package repository

import "context"

// KVStore は文字列キー・値の永続ストアを抽象化するインターフェース。
// メモリ / PostgreSQL / Redis 実装を差し替え可能。
type KVStore interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key, value string) error

	// SetIfAbsent stores value only when key does not exist yet.
	// Reports whether the value was written.
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)

	// DeleteByPrefix removes every key starting with prefix and returns the count.
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)

	// DeleteMatching removes every key containing at least one of markers and
	// returns the count. Matching is a plain substring test.
	DeleteMatching(ctx context.Context, markers []string) (int, error)

	Ping(ctx context.Context) error
}
