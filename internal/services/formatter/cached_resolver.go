package formatter

import (
	"context"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/repositories/mentions"
)

// CachedResolver answers from the mention cache and only asks the registry
// about misses. Identical concurrent lookups share one registry call.
type CachedResolver struct {
	inner  Resolver
	cache  mentions.Repository
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedResolver wraps inner with cache; a nil logger disables logging
func NewCachedResolver(inner Resolver, cache mentions.Repository, logger *zap.Logger) *CachedResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedResolver{
		inner:  inner,
		cache:  cache,
		logger: logger.Named("resolver"),
	}
}

// Resolve returns FIDs for the handles it can find
func (r *CachedResolver) Resolve(ctx context.Context, handles []string) (map[string]uint64, error) {
	fids, err := r.cache.GetMany(ctx, handles)
	if err != nil {
		// The cache is an optimization; fall through to the registry
		r.logger.Warn("mention cache read failed", zap.Error(err))
		fids = make(map[string]uint64, len(handles))
	}

	var missing []string
	for _, handle := range handles {
		if _, ok := fids[handle]; !ok {
			missing = append(missing, handle)
		}
	}
	if len(missing) == 0 {
		return fids, nil
	}

	slices.Sort(missing)
	missing = slices.Compact(missing)

	result, err, shared := r.group.Do(strings.Join(missing, ","), func() (any, error) {
		resolved, err := r.inner.Resolve(ctx, missing)
		if err != nil {
			return nil, err
		}
		if len(resolved) > 0 {
			if err := r.cache.SetMany(ctx, resolved); err != nil {
				r.logger.Warn("mention cache write failed", zap.Error(err))
			}
		}
		return resolved, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("resolved mentions",
		zap.Strings("handles", missing),
		zap.Int("cached", len(fids)),
		zap.Bool("shared", shared))

	maps.Copy(fids, result.(map[string]uint64))
	return fids, nil
}

// Handles lists every handle in the cache
func (r *CachedResolver) Handles(ctx context.Context) ([]string, error) {
	return r.cache.Handles(ctx)
}
