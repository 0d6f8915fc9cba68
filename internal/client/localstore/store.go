package localstore

import (
	"errors"
	"sync"
)

// ErrQuotaExceeded is returned by Set when the value does not fit the store.
var ErrQuotaExceeded = errors.New("local storage quota exceeded")

// Store is a string key/value store scoped to one device.
type Store interface {
	// Get reports ok=false for a missing key.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStore keeps values in process memory. A positive quota caps the
// total bytes of keys and values held.
type MemoryStore struct {
	mu     sync.Mutex
	quota  int
	values map[string]string
}

func NewMemoryStore(quotaBytes int) *MemoryStore {
	return &MemoryStore{
		quota:  quotaBytes,
		values: make(map[string]string),
	}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 {
		used := len(key) + len(value)
		for k, v := range s.values {
			if k == key {
				continue
			}
			used += len(k) + len(v)
		}
		if used > s.quota {
			return ErrQuotaExceeded
		}
	}

	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
