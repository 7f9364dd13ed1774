package middleware_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/middleware"
)

func TestRedisRateLimitStore(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := middleware.NewRedisRateLimitStore(client, "ratelimit")
	ctx := context.Background()

	mock.ExpectIncr("ratelimit:user-1").SetVal(1)
	mock.ExpectExpire("ratelimit:user-1", time.Minute).SetVal(true)
	mock.ExpectIncr("ratelimit:user-1").SetVal(2)

	count, err := store.Increment(ctx, "user-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.Increment(ctx, "user-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	mock.ExpectDel("ratelimit:user-1").SetVal(1)
	require.NoError(t, store.Reset(ctx, "user-1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRateLimitStore_Errors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := middleware.NewRedisRateLimitStore(client, "ratelimit")

	mock.ExpectIncr("ratelimit:user-1").SetErr(errors.New("connection refused"))
	_, err := store.Increment(context.Background(), "user-1", time.Minute)
	assert.ErrorContains(t, err, "connection refused")

	mock.ExpectIncr("ratelimit:user-1").SetVal(1)
	mock.ExpectExpire("ratelimit:user-1", time.Minute).SetErr(errors.New("readonly"))
	_, err = store.Increment(context.Background(), "user-1", time.Minute)
	assert.ErrorContains(t, err, "rate limit window")
}

func TestRateLimitMiddleware_StoreFailureAllows(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectIncr("ratelimit:user-1").SetErr(errors.New("connection refused"))

	handler := middleware.RateLimitMiddleware(&middleware.RateLimitConfig{
		MaxRequests: 1,
		Window:      time.Minute,
		Store:       middleware.NewRedisRateLimitStore(client, "ratelimit"),
	})(ok("fine"))

	result, err := handler.Handle(command("list"))
	require.NoError(t, err)
	assert.Equal(t, "fine", result.Response.Content)
}

func TestMemoryRateLimitStore_Reset(t *testing.T) {
	store := middleware.NewMemoryRateLimitStore()
	ctx := context.Background()

	_, _ = store.Increment(ctx, "k", time.Minute)
	count, _ := store.Increment(ctx, "k", time.Minute)
	assert.Equal(t, 2, count)

	require.NoError(t, store.Reset(ctx, "k"))
	count, _ = store.Increment(ctx, "k", time.Minute)
	assert.Equal(t, 1, count)
}
