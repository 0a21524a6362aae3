package auth

import (
	"errors"
	"sync"
)

var ErrCorruptRecord = errors.New("corrupt session record")

// Store persists a single session record. Save replaces both entries at
// once; Clear removes both and is safe to call when nothing is stored.
type Store interface {
	Load() (Record, error)
	Save(rec Record) error
	Clear() error
}

type InMemoryStore struct {
	mu  sync.RWMutex
	rec Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Load() (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec, nil
}

func (s *InMemoryStore) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	return nil
}

func (s *InMemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = Record{}
	return nil
}
