package drafts_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mockhub "github.com/KirkDiggler/farcaster-bot-discord/internal/clients/hub/mock"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
	apperr "github.com/KirkDiggler/farcaster-bot-discord/internal/errors"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/events"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/drafts"
	mockformatter "github.com/KirkDiggler/farcaster-bot-discord/internal/services/formatter/mock"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/testutils"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/uuid"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T, bus *events.Bus) *drafts.Store {
	t.Helper()
	ctrl := gomock.NewController(t)

	return drafts.NewStore(&drafts.StoreConfig{
		OwnerID:   "user-1",
		Formatter: mockformatter.NewMockService(ctrl),
		Hub:       mockhub.NewMockClient(ctrl),
		Bus:       bus,
		UUID:      uuid.NewSequential("draft"),
		Now:       func() time.Time { return fixedNow },
	})
}

func TestAddDraft_BlankDraftIsNotDuplicated(t *testing.T) {
	store := newStore(t, nil)

	id, added := store.AddDraft(nil)
	require.True(t, added)
	assert.Equal(t, "draft-1", id)

	again, added := store.AddDraft(&drafts.AddDraftInput{})
	assert.False(t, added)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, store.Len())

	d, ok := store.Get(0)
	require.True(t, ok)
	assert.Equal(t, entities.DraftStatusWriting, d.Status)
	assert.Equal(t, fixedNow, d.CreatedAt)
}

func TestAddDraft_TextAlwaysAdds(t *testing.T) {
	store := newStore(t, nil)

	store.AddDraft(nil)
	_, added := store.AddDraft(&drafts.AddDraftInput{Text: "gm"})
	assert.True(t, added)
	_, added = store.AddDraft(&drafts.AddDraftInput{Text: "gm"})
	assert.True(t, added)

	assert.Equal(t, 3, store.Len())
}

func TestAddDraft_BlankReplyBlocksNewBlankDraft(t *testing.T) {
	store := newStore(t, nil)

	first, _ := store.AddDraft(&drafts.AddDraftInput{ParentURL: "x"})
	again, added := store.AddDraft(nil)

	assert.False(t, added)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, store.Len())
}

func TestAddDraft_WhitespaceTextIsNotBlank(t *testing.T) {
	store := newStore(t, nil)

	store.AddDraft(&drafts.AddDraftInput{Text: "   "})
	_, added := store.AddDraft(nil)

	assert.True(t, added)
	assert.Equal(t, 2, store.Len())
}

func TestAddDraft_SameParentURL(t *testing.T) {
	store := newStore(t, nil)
	channel := "https://warpcast.com/~/channel/golang"

	first, added := store.AddDraft(&drafts.AddDraftInput{ParentURL: channel})
	require.True(t, added)

	second, added := store.AddDraft(&drafts.AddDraftInput{ParentURL: channel, Text: "different text"})
	assert.False(t, added)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.Len())
}

func TestAddDraft_SameParentCast(t *testing.T) {
	store := newStore(t, nil)
	parent := &entities.CastID{FID: 3, Hash: testutils.CastHash(0xab)}

	first, added := store.AddDraft(&drafts.AddDraftInput{ParentCastID: parent})
	require.True(t, added)

	second, added := store.AddDraft(&drafts.AddDraftInput{ParentCastID: &entities.CastID{FID: 3, Hash: testutils.CastHash(0xab)}})
	assert.False(t, added)
	assert.Equal(t, first, second)

	_, added = store.AddDraft(&drafts.AddDraftInput{ParentCastID: &entities.CastID{FID: 3, Hash: testutils.CastHash(0xcd)}})
	assert.True(t, added)
	assert.Equal(t, 2, store.Len())
}

func TestAddDraft_SameParentCastDifferentURL(t *testing.T) {
	store := newStore(t, nil)
	hash := testutils.CastHash(0xab)

	first, added := store.AddDraft(&drafts.AddDraftInput{ParentURL: "a", ParentCastID: &entities.CastID{FID: 1, Hash: hash}})
	require.True(t, added)

	second, added := store.AddDraft(&drafts.AddDraftInput{ParentURL: "b", ParentCastID: &entities.CastID{FID: 1, Hash: hash}})
	assert.False(t, added)
	assert.Equal(t, first, second)

	// Same URL with a different parent cast is still the same context
	third, added := store.AddDraft(&drafts.AddDraftInput{ParentURL: "a", ParentCastID: &entities.CastID{FID: 1, Hash: testutils.CastHash(0xcd)}})
	assert.False(t, added)
	assert.Equal(t, first, third)
	assert.Equal(t, 1, store.Len())
}

func TestAddDraft_DetachesCallerData(t *testing.T) {
	store := newStore(t, nil)
	mentions := map[string]uint64{"alice": 42}

	id, _ := store.AddDraft(&drafts.AddDraftInput{Text: "hi @alice", MentionsToFids: mentions})
	mentions["alice"] = 99

	d, ok := store.GetByID(id)
	require.True(t, ok)
	assert.Equal(t, uint64(42), d.MentionsToFids["alice"])

	// Returned drafts are copies too
	d.MentionsToFids["alice"] = 7
	again, _ := store.GetByID(id)
	assert.Equal(t, uint64(42), again.MentionsToFids["alice"])
}

func TestAddTemplateDraft_NoDedup(t *testing.T) {
	store := newStore(t, nil)

	first := store.AddTemplateDraft(drafts.WelcomeTemplate())
	second := store.AddTemplateDraft(drafts.WelcomeTemplate())

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, store.Len())

	d, _ := store.GetByID(first)
	assert.Equal(t, drafts.WelcomeChannelURL, d.ParentURL)
}

func TestFeedbackTemplate(t *testing.T) {
	tpl := drafts.FeedbackTemplate("@Maintainer", 3)

	assert.Equal(t, "feedback", tpl.Name)
	assert.Contains(t, tpl.Text, "@maintainer")
	assert.Equal(t, map[string]uint64{"maintainer": 3}, tpl.MentionsToFids)

	assert.Nil(t, drafts.FeedbackTemplate("maintainer", 0).MentionsToFids)
}

func TestUpdateDraft(t *testing.T) {
	store := newStore(t, nil)
	id, _ := store.AddDraft(nil)

	ok := store.UpdateDraft(0, &entities.Draft{
		ID:     "ignored",
		Text:   "edited",
		Status: entities.DraftStatusPublishing,
	})
	require.True(t, ok)

	d, _ := store.Get(0)
	assert.Equal(t, id, d.ID)
	assert.Equal(t, "edited", d.Text)
	assert.Equal(t, entities.DraftStatusWriting, d.Status)

	assert.False(t, store.UpdateDraft(5, &entities.Draft{Text: "nope"}))
	assert.False(t, store.UpdateDraft(-1, &entities.Draft{Text: "nope"}))
	assert.False(t, store.UpdateDraftByID("missing", &entities.Draft{Text: "nope"}))
	assert.True(t, apperr.IsNotFound(store.ReplaceDraftByID("missing", &entities.Draft{Text: "nope"})))
	assert.True(t, apperr.IsInvalidArgument(store.ReplaceDraftByID(id, nil)))
	assert.Equal(t, 1, store.Len())
}

func TestUpdateMentions(t *testing.T) {
	store := newStore(t, nil)
	store.AddDraft(&drafts.AddDraftInput{Text: "hi @alice"})

	require.True(t, store.UpdateMentions(0, map[string]uint64{"alice": 42}))
	assert.False(t, store.UpdateMentions(1, map[string]uint64{"bob": 1}))

	d, _ := store.Get(0)
	assert.Equal(t, map[string]uint64{"alice": 42}, d.MentionsToFids)
	assert.Equal(t, "hi @alice", d.Text)
}

func TestRemoveDraft(t *testing.T) {
	store := newStore(t, nil)
	store.AddDraft(&drafts.AddDraftInput{Text: "keep me"})
	second, _ := store.AddDraft(nil)

	assert.False(t, store.RemoveDraft(0, true), "non-empty draft kept with onlyIfEmpty")
	assert.True(t, store.RemoveDraft(1, true))
	assert.Equal(t, -1, store.IndexOf(second))
	assert.False(t, store.RemoveDraft(3, false))

	require.True(t, store.RemoveDraft(0, false))
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Drafts())
}

func TestRemoveDraft_WhitespaceTextIsKept(t *testing.T) {
	store := newStore(t, nil)
	store.AddDraft(&drafts.AddDraftInput{Text: "   "})

	assert.False(t, store.RemoveDraft(0, true))
	require.Equal(t, 1, store.Len())

	d, _ := store.Get(0)
	assert.Equal(t, "   ", d.Text)
}

func TestRemoveDraftByID_KeepsOrder(t *testing.T) {
	store := newStore(t, nil)
	a, _ := store.AddDraft(&drafts.AddDraftInput{Text: "a"})
	b, _ := store.AddDraft(&drafts.AddDraftInput{Text: "b"})
	c, _ := store.AddDraft(&drafts.AddDraftInput{Text: "c"})

	require.True(t, store.RemoveDraftByID(b))
	assert.False(t, store.RemoveDraftByID(b))

	assert.Equal(t, 0, store.IndexOf(a))
	assert.Equal(t, 1, store.IndexOf(c))
}

func TestRemoveAll(t *testing.T) {
	var removed []string
	bus := events.NewBus(nil)
	bus.Subscribe(&events.ListenerFunc{Name: "test", Fn: func(e events.Event) error {
		removed = append(removed, e.(*events.DraftEvent).DraftID)
		return nil
	}}, events.EventTypeDraftRemoved)

	store := newStore(t, bus)
	store.AddDraft(&drafts.AddDraftInput{Text: "a"})
	store.AddDraft(&drafts.AddDraftInput{Text: "b"})

	assert.Equal(t, 2, store.RemoveAll())
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, []string{"draft-1", "draft-2"}, removed)

	assert.Equal(t, 0, store.RemoveAll())
}

func TestAddDraft_ConcurrentWritersAllLand(t *testing.T) {
	store := newStore(t, nil)

	const writers = 50
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AddDraft(&drafts.AddDraftInput{Text: fmt.Sprintf("draft %d", i)})
		}()
	}
	wg.Wait()

	assert.Equal(t, writers, store.Len())

	seen := make(map[string]bool)
	for _, d := range store.Drafts() {
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
	}
}

func TestRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := drafts.NewRegistry(&drafts.StoreConfig{
		Formatter: mockformatter.NewMockService(ctrl),
		Hub:       mockhub.NewMockClient(ctrl),
	})

	_, ok := registry.Lookup("bob")
	assert.False(t, ok)

	alice := registry.ForOwner("alice")
	assert.Same(t, alice, registry.ForOwner("alice"))
	assert.Equal(t, "alice", alice.OwnerID())

	bob := registry.ForOwner("bob")
	alice.AddDraft(&drafts.AddDraftInput{Text: "only alice"})
	assert.Equal(t, 0, bob.Len())

	assert.Equal(t, []string{"alice", "bob"}, registry.Owners())
}
