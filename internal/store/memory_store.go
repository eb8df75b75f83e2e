package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

// MemoryStore keeps namespaces in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
	log  *zap.Logger
}

// NewMemoryStore returns an empty MemoryStore. A nil logger disables logging.
func NewMemoryStore(log *zap.Logger) *MemoryStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemoryStore{data: make(map[string]map[string][]byte), log: log}
}

// Get returns a copy of the value stored under key.
func (s *MemoryStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[namespace][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value under key.
func (s *MemoryStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		s.data[namespace] = ns
	}
	ns[key] = append([]byte(nil), value...)

	s.log.Debug("memory store entry set",
		zap.String("namespace", namespace),
		zap.String("key", key),
		zap.Int("size", len(ns)),
	)
	return nil
}

// Delete removes key from namespace.
func (s *MemoryStore) Delete(ctx context.Context, namespace, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[namespace], key)
	return nil
}

// Clear drops every key of namespace.
func (s *MemoryStore) Clear(ctx context.Context, namespace string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.data[namespace])
	delete(s.data, namespace)
	s.log.Debug("memory store namespace cleared", zap.String("namespace", namespace), zap.Int("entries", n))
	return nil
}

// Compile-time assertion that MemoryStore implements domain.KeyValueStore.
var _ domain.KeyValueStore = (*MemoryStore)(nil)
