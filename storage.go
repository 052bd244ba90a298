package kermesse

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// FileStorage persists string values in a single JSON document on disk.
// Writes go through a temp file and rename so a crash never leaves a
// half-written store behind.
type FileStorage struct {
	mu     sync.Mutex
	path   string
	logger Logger
}

var _ Storage = (*FileStorage)(nil)

// FileStorageOption customizes FileStorage construction
type FileStorageOption func(*FileStorage)

// WithFileStorageLogger overrides the logger used for corruption warnings.
func WithFileStorageLogger(logger Logger) FileStorageOption {
	return func(s *FileStorage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFileStorage opens or creates the backing file's directory.
func NewFileStorage(path string, opts ...FileStorageOption) (*FileStorage, error) {
	if path == "" {
		return nil, goerrors.New("storage path must not be empty", goerrors.CategoryBadInput)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create storage directory")
	}

	s := &FileStorage{path: path, logger: defLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *FileStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", false, err
	}

	val, ok := values[key]
	return val, ok, nil
}

func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}

	values[key] = value
	return s.write(values)
}

func (s *FileStorage) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}

	for _, key := range keys {
		delete(values, key)
	}
	return s.write(values)
}

// read loads the backing document. A corrupt document is treated as empty
// and logged; it will be rewritten by the next Set or Delete.
func (s *FileStorage) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read storage file")
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		s.logger.Warn("storage file %s is corrupt, treating as empty: %s", s.path, err)
		return map[string]string{}, nil
	}
	return values, nil
}

func (s *FileStorage) write(values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode storage file")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write storage file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to replace storage file")
	}
	return nil
}

// MemoryStorage is an in-memory Storage, used in tests and ephemeral runs.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (s *MemoryStorage) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok, nil
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}
