package drafts

import (
	"slices"
	"sync"
)

// Registry hands out one Store per owner, creating stores on first use
type Registry struct {
	cfg    StoreConfig
	stores sync.Map // owner ID -> *Store
}

// NewRegistry creates a registry whose stores share cfg's collaborators.
// cfg.OwnerID is ignored.
func NewRegistry(cfg *StoreConfig) *Registry {
	if cfg.Formatter == nil {
		panic("formatter is required")
	}
	if cfg.Hub == nil {
		panic("hub client is required")
	}

	return &Registry{cfg: *cfg}
}

// ForOwner returns the owner's store
func (r *Registry) ForOwner(ownerID string) *Store {
	if s, ok := r.stores.Load(ownerID); ok {
		return s.(*Store)
	}

	cfg := r.cfg
	cfg.OwnerID = ownerID
	s, _ := r.stores.LoadOrStore(ownerID, NewStore(&cfg))
	return s.(*Store)
}

// Lookup returns the owner's store without creating one
func (r *Registry) Lookup(ownerID string) (*Store, bool) {
	s, ok := r.stores.Load(ownerID)
	if !ok {
		return nil, false
	}
	return s.(*Store), true
}

// Owners lists owners that have a store, sorted
func (r *Registry) Owners() []string {
	var owners []string
	r.stores.Range(func(key, _ any) bool {
		owners = append(owners, key.(string))
		return true
	})
	slices.Sort(owners)
	return owners
}
