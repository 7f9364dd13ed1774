package fname

import "context"

// Client resolves Farcaster usernames against the fname registry
type Client interface {
	// Resolve returns the FID for every handle the registry knows; unknown
	// handles are omitted rather than reported as errors
	Resolve(ctx context.Context, handles []string) (map[string]uint64, error)
}
