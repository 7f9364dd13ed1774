package mentions

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const handlesKey = "mentions:handles"

func mentionKey(handle string) string {
	return fmt.Sprintf("mention:%s", handle)
}

type redisRepo struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedis creates a redis backed mention cache. A zero ttl keeps entries forever.
func NewRedis(client redis.UniversalClient, ttl time.Duration) Repository {
	return &redisRepo{
		client: client,
		ttl:    ttl,
	}
}

func (r *redisRepo) GetMany(ctx context.Context, handles []string) (map[string]uint64, error) {
	found := make(map[string]uint64, len(handles))
	if len(handles) == 0 {
		return found, nil
	}

	keys := make([]string, len(handles))
	for i, handle := range handles {
		keys[i] = mentionKey(handle)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get mentions from Redis: %w", err)
	}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		fid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt fid for handle %s: %w", handles[i], err)
		}
		found[handles[i]] = fid
	}

	return found, nil
}

func (r *redisRepo) SetMany(ctx context.Context, fids map[string]uint64) error {
	if len(fids) == 0 {
		return nil
	}

	// Sorted so the pipeline is deterministic
	handles := make([]string, 0, len(fids))
	for handle := range fids {
		handles = append(handles, handle)
	}
	slices.Sort(handles)

	pipe := r.client.Pipeline()
	for _, handle := range handles {
		pipe.Set(ctx, mentionKey(handle), strconv.FormatUint(fids[handle], 10), r.ttl)
	}
	members := make([]any, len(handles))
	for i, handle := range handles {
		members[i] = handle
	}
	pipe.SAdd(ctx, handlesKey, members...)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set mentions in Redis: %w", err)
	}

	return nil
}

func (r *redisRepo) Handles(ctx context.Context) ([]string, error) {
	handles, err := r.client.SMembers(ctx, handlesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list mention handles from Redis: %w", err)
	}
	slices.Sort(handles)
	return handles, nil
}
