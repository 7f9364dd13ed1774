package mentions

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// InMemoryRepository is an in-memory implementation of the mention cache
type InMemoryRepository struct {
	mu   sync.RWMutex
	fids map[string]uint64
}

// NewInMemoryRepository creates a new in-memory mention cache
func NewInMemoryRepository() Repository {
	return &InMemoryRepository{
		fids: make(map[string]uint64),
	}
}

// GetMany returns cached FIDs for the known handles
func (r *InMemoryRepository) GetMany(_ context.Context, handles []string) (map[string]uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]uint64, len(handles))
	for _, handle := range handles {
		if fid, ok := r.fids[handle]; ok {
			found[handle] = fid
		}
	}
	return found, nil
}

// SetMany caches resolved handles
func (r *InMemoryRepository) SetMany(_ context.Context, fids map[string]uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	maps.Copy(r.fids, fids)
	return nil
}

// Handles lists cached handles in sorted order
func (r *InMemoryRepository) Handles(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := slices.Collect(maps.Keys(r.fids))
	slices.Sort(handles)
	return handles, nil
}
