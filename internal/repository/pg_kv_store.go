package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgKVStore は KVStore の PostgreSQL 実装（kv_entries テーブル）
type PgKVStore struct {
	pool *pgxpool.Pool
}

// NewPgKVStore は PgKVStore を生成する
func NewPgKVStore(pool *pgxpool.Pool) *PgKVStore {
	return &PgKVStore{pool: pool}
}

func (s *PgKVStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv get: %w: %w", ErrStorageUnavailable, err)
	}
	return value, nil
}

func (s *PgKVStore) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO kv_entries (key, value)
		 VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("kv set: %w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// SetIfAbsent は key が未登録の場合のみ保存する（冪等: 既に存在する場合は無視）
func (s *PgKVStore) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO kv_entries (key, value)
		 VALUES ($1, $2)
		 ON CONFLICT (key) DO NOTHING`,
		key, value,
	)
	if err != nil {
		return false, fmt.Errorf("kv set if absent: %w: %w", ErrStorageUnavailable, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PgKVStore) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM kv_entries WHERE key LIKE $1 ESCAPE '\'`, escapeLike(prefix)+"%",
	)
	if err != nil {
		return 0, fmt.Errorf("kv delete by prefix: %w: %w", ErrStorageUnavailable, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PgKVStore) DeleteMatching(ctx context.Context, markers []string) (int, error) {
	var nonEmpty []string
	for _, m := range markers {
		if m != "" {
			nonEmpty = append(nonEmpty, m)
		}
	}
	if len(nonEmpty) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM kv_entries
		 WHERE EXISTS (SELECT 1 FROM unnest($1::text[]) AS m WHERE strpos(key, m) > 0)`,
		nonEmpty,
	)
	if err != nil {
		return 0, fmt.Errorf("kv delete matching: %w: %w", ErrStorageUnavailable, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PgKVStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so s matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
