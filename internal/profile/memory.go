package profile

import (
	"context"
	"sync"
)

// MemoryStore keeps the profile in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	profile Profile
	set     bool
}

// NewMemoryStore constructs a store, optionally seeded.
func NewMemoryStore(seed Profile) *MemoryStore {
	s := &MemoryStore{}
	seed = seed.Normalized()
	if seed != (Profile{}) {
		s.profile = seed
		s.set = true
	}
	return s
}

// Get returns the stored profile.
func (s *MemoryStore) Get(ctx context.Context) (Profile, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return Profile{}, ErrNotFound
	}
	return s.profile, nil
}

// Put overwrites the stored profile.
func (s *MemoryStore) Put(ctx context.Context, p Profile) error {
	_ = ctx
	s.mu.Lock()
	s.profile = p.Normalized()
	s.set = true
	s.mu.Unlock()
	return nil
}
