package mentions_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/repositories/mentions"
)

func TestInMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := mentions.NewInMemoryRepository()

	found, err := repo.GetMany(ctx, []string{"alice"})
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, repo.SetMany(ctx, map[string]uint64{"alice": 42, "bob": 7}))

	found, err = repo.GetMany(ctx, []string{"alice", "carol"})
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{"alice": 42}, found)

	handles, err := repo.Handles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, handles)
}
