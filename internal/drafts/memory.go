package drafts

import (
	"context"
	"slices"
	"sync"

	"github.com/meur/dtwiki/internal/errors"
)

// MemoryStore keeps drafts in process memory. It is used when no Redis
// address is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory draft store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string][]byte)}
}

// Load returns a copy of the draft stored under key
func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.drafts[key]
	if !ok {
		return nil, errors.NotFoundf("no draft for %s", key)
	}
	return slices.Clone(data), nil
}

// Save stores a copy of data under key
func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	if key == "" {
		return errors.InvalidArgument(errKeyEmpty)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key] = slices.Clone(data)
	return nil
}

// Delete removes the draft stored under key
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}
