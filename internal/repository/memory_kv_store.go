package repository

import (
	"context"
	"strings"
	"sync"
)

// MemoryKVStore は KVStore のインメモリ実装（開発・テスト用）
type MemoryKVStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryKVStore は空の MemoryKVStore を生成する
func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{entries: make(map[string]string)}
}

func (s *MemoryKVStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryKVStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
	return nil
}

// SetIfAbsent は key が未登録の場合のみ保存する（冪等）
func (s *MemoryKVStore) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = value
	return true, nil
}

func (s *MemoryKVStore) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	return s.deleteWhere(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	}), nil
}

func (s *MemoryKVStore) DeleteMatching(ctx context.Context, markers []string) (int, error) {
	return s.deleteWhere(func(key string) bool {
		return containsAny(key, markers)
	}), nil
}

func (s *MemoryKVStore) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryKVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryKVStore) deleteWhere(match func(string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.entries {
		if match(k) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// containsAny reports whether key contains any non-empty marker.
func containsAny(key string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(key, m) {
			return true
		}
	}
	return false
}
