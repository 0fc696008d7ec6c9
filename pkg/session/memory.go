package session

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemorySessions bounds the in-memory store.
const DefaultMemorySessions = 32

// MemoryStore keeps the most recently used snapshots in memory.
// Snapshots are held by reference; older ones are evicted once the store
// is full.
type MemoryStore struct {
	cache *lru.Cache[string, *Snapshot]
}

// NewMemoryStore returns a store holding at most size snapshots.
// A non-positive size uses DefaultMemorySessions.
func NewMemoryStore(size int) *MemoryStore {
	if size <= 0 {
		size = DefaultMemorySessions
	}
	c, _ := lru.New[string, *Snapshot](size) // only fails for size <= 0
	return &MemoryStore{cache: c}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	snap, ok := s.cache.Get(id)
	if !ok {
		return nil, nil
	}
	return snap, nil
}

func (s *MemoryStore) Set(ctx context.Context, snap *Snapshot) error {
	s.cache.Add(snap.ID, snap)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.cache.Remove(id)
	return nil
}

// Len returns the number of stored snapshots.
func (s *MemoryStore) Len() int { return s.cache.Len() }

func (s *MemoryStore) Close() error {
	s.cache.Purge()
	return nil
}

var _ Store = (*MemoryStore)(nil)
