package store

import (
	"context"
	"sync"
)

// MemoryStore is a minimal in-memory Store intended for tests and examples.
// Saves can be made to fail on demand.
type MemoryStore struct {
	mu      sync.RWMutex
	data    []byte
	present bool
	saves   int
	failing []error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns a store that already holds data.
func NewMemoryStoreWith(data []byte) *MemoryStore {
	s := &MemoryStore{}
	s.Seed(data)
	return s
}

func (s *MemoryStore) Load(context.Context) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return nil, false, nil
	}
	return append([]byte(nil), s.data...), true, nil
}

func (s *MemoryStore) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if len(s.failing) > 0 {
		err := s.failing[0]
		s.failing = s.failing[1:]
		return err
	}
	s.data = append([]byte(nil), data...)
	s.present = true
	return nil
}

// Seed replaces the stored document without counting a save.
func (s *MemoryStore) Seed(data []byte) {
	s.mu.Lock()
	s.data = append([]byte(nil), data...)
	s.present = true
	s.mu.Unlock()
}

// FailNext makes the next len(errs) saves return the given errors in order.
func (s *MemoryStore) FailNext(errs ...error) {
	s.mu.Lock()
	s.failing = append(s.failing, errs...)
	s.mu.Unlock()
}

// Saves reports how many times Save was called, including failures.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Bytes returns the stored document.
func (s *MemoryStore) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data...)
}

func (s *MemoryStore) Describe() string {
	return "memory"
}
