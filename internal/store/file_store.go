package store

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

var namespacePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// FileStore persists each namespace as a JSON object in <dir>/<namespace>.json.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(namespace string) (string, error) {
	if !namespacePattern.MatchString(namespace) {
		return "", fmt.Errorf("file store: invalid namespace %q", namespace)
	}
	return filepath.Join(s.dir, namespace+".json"), nil
}

// Get returns the value stored under key in namespace.
func (s *FileStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path, err := s.path(namespace)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := loadNamespace(path)
	if err != nil {
		return nil, false, fmt.Errorf("file store: read %s: %w", namespace, err)
	}
	v, ok := m[key]
	return v, ok, nil
}

// Set stores value under key, replacing any previous value.
func (s *FileStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(namespace)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := loadNamespace(path)
	if err != nil {
		return fmt.Errorf("file store: read %s: %w", namespace, err)
	}
	m[key] = append([]byte(nil), value...)
	if err := saveNamespace(path, m); err != nil {
		return fmt.Errorf("file store: write %s: %w", namespace, err)
	}
	return nil
}

// Delete removes key from namespace; deleting a missing key is not an error.
func (s *FileStore) Delete(ctx context.Context, namespace, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(namespace)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := loadNamespace(path)
	if err != nil {
		return fmt.Errorf("file store: read %s: %w", namespace, err)
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return saveNamespace(path, m)
}

// Clear drops the whole namespace.
func (s *FileStore) Clear(ctx context.Context, namespace string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(namespace)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return dropNamespace(path)
}

// Compile-time assertion that FileStore implements domain.KeyValueStore.
var _ domain.KeyValueStore = (*FileStore)(nil)
