package mentions

//go:generate mockgen -destination=mock/mock.go -package=mockmentions -source=interface.go

import "context"

// Repository caches fname -> FID lookups so repeated mentions skip the registry
type Repository interface {
	// GetMany returns the cached FIDs for the handles it knows; misses are omitted
	GetMany(ctx context.Context, handles []string) (map[string]uint64, error)

	// SetMany caches resolved handles
	SetMany(ctx context.Context, fids map[string]uint64) error

	// Handles lists every handle the cache has seen
	Handles(ctx context.Context) ([]string, error)
}
