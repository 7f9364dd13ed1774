package drafts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/clients/hub"
	mockhub "github.com/KirkDiggler/farcaster-bot-discord/internal/clients/hub/mock"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
	apperr "github.com/KirkDiggler/farcaster-bot-discord/internal/errors"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/events"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/drafts"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/formatter"
	mockformatter "github.com/KirkDiggler/farcaster-bot-discord/internal/services/formatter/mock"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/testutils"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/uuid"
)

type PublishSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	resolver *mockformatter.MockResolver
	hub      *mockhub.MockClient
	bus      *events.Bus
	emitted  []events.EventType
	store    *drafts.Store
	account  *entities.Account
}

func (s *PublishSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.resolver = mockformatter.NewMockResolver(s.ctrl)
	s.hub = mockhub.NewMockClient(s.ctrl)
	s.emitted = nil

	s.bus = events.NewBus(nil)
	s.bus.Subscribe(&events.ListenerFunc{Name: "recorder", Fn: func(e events.Event) error {
		s.emitted = append(s.emitted, e.GetType())
		return nil
	}},
		events.EventTypePublishStarted,
		events.EventTypeDraftPublished,
		events.EventTypePublishFailed,
		events.EventTypeReadOnlyAccountNotice,
	)

	s.store = drafts.NewStore(&drafts.StoreConfig{
		OwnerID:   "user-1",
		Formatter: formatter.NewService(&formatter.ServiceConfig{Resolver: s.resolver}),
		Hub:       s.hub,
		Bus:       s.bus,
		UUID:      uuid.NewSequential("draft"),
	})
	s.account = testutils.CreateTestAccount(s.T(), 1001)
}

func (s *PublishSuite) TestPublish_ResolvesMentionsAndRemovesDraft() {
	s.store.AddDraft(&drafts.AddDraftInput{Text: "hello @alice", ParentURL: "x"})

	s.resolver.EXPECT().Resolve(gomock.Any(), []string{"alice"}).Return(map[string]uint64{"alice": 42}, nil)
	s.hub.EXPECT().
		SubmitCast(gomock.Any(), gomock.Any(), s.account).
		DoAndReturn(func(_ context.Context, body *entities.CastBody, _ *entities.Account) (*hub.SubmitResult, error) {
			s.Equal("hello ", body.Text)
			s.Equal("x", body.ParentURL)
			s.Equal([]uint64{42}, body.Mentions)
			s.Equal([]uint32{6}, body.MentionsPositions)
			s.Equal(map[string]uint64{"alice": 42}, body.MentionsToFids)
			return &hub.SubmitResult{Hash: "0xfeed"}, nil
		}).
		Times(1)

	var published *entities.Draft
	var result *hub.SubmitResult
	calls := 0
	err := s.store.Publish(s.ctx, 0, s.account, drafts.WithOnPublished(func(d *entities.Draft, r *hub.SubmitResult) {
		calls++
		published, result = d, r
	}))
	s.Require().NoError(err)

	s.Equal(0, s.store.Len())
	s.Equal(1, calls)
	s.Equal("draft-1", published.ID)
	s.Equal(map[string]uint64{"alice": 42}, published.MentionsToFids)
	s.Equal("0xfeed", result.Hash)
	s.Equal([]events.EventType{events.EventTypePublishStarted, events.EventTypeDraftPublished}, s.emitted)
}

func (s *PublishSuite) TestPublish_KnownMentionsSkipResolver() {
	s.store.AddDraft(&drafts.AddDraftInput{Text: "gm @alice", MentionsToFids: map[string]uint64{"alice": 42}})

	s.hub.EXPECT().SubmitCast(gomock.Any(), gomock.Any(), gomock.Any()).Return(&hub.SubmitResult{}, nil)

	s.Require().NoError(s.store.Publish(s.ctx, 0, s.account))
	s.Equal(0, s.store.Len())
}

func (s *PublishSuite) TestPublish_SecondPublishConflicts() {
	id, _ := s.store.AddDraft(&drafts.AddDraftInput{Text: "gm"})

	started := make(chan struct{})
	release := make(chan struct{})
	s.hub.EXPECT().
		SubmitCast(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *entities.CastBody, *entities.Account) (*hub.SubmitResult, error) {
			close(started)
			<-release
			return &hub.SubmitResult{Hash: "0x1"}, nil
		}).
		Times(1)

	done := make(chan error, 1)
	go func() {
		done <- s.store.PublishByID(s.ctx, id, s.account)
	}()
	<-started

	d, ok := s.store.GetByID(id)
	s.Require().True(ok)
	s.Equal(entities.DraftStatusPublishing, d.Status)

	err := s.store.PublishByID(s.ctx, id, s.account)
	s.ErrorIs(err, drafts.ErrAlreadyPublishing)
	s.True(apperr.IsConflict(err))

	// Edits are refused while the publish is in flight
	s.ErrorIs(s.store.ReplaceDraftByID(id, &entities.Draft{Text: "edited"}), drafts.ErrAlreadyPublishing)
	s.False(s.store.UpdateDraftByID(id, &entities.Draft{Text: "edited"}))
	d, _ = s.store.GetByID(id)
	s.Equal("gm", d.Text)

	close(release)
	s.Require().NoError(<-done)
	s.Equal(0, s.store.Len())
}

func (s *PublishSuite) TestPublish_UnknownHandleRevertsToWriting() {
	s.store.AddDraft(&drafts.AddDraftInput{Text: "hi @alce"})

	s.resolver.EXPECT().Resolve(gomock.Any(), []string{"alce"}).Return(map[string]uint64{}, nil)

	err := s.store.Publish(s.ctx, 0, s.account)
	s.Require().Error(err)
	s.True(apperr.IsRefused(err))
	s.Contains(err.Error(), "@alce is not a Farcaster user")

	d, ok := s.store.Get(0)
	s.Require().True(ok)
	s.Equal(entities.DraftStatusWriting, d.Status)
	s.Equal(err.Error(), d.LastError)
	s.Equal([]events.EventType{events.EventTypePublishStarted, events.EventTypePublishFailed}, s.emitted)
}

func (s *PublishSuite) TestPublish_DeliveryFailureKeepsResolvedMentions() {
	s.store.AddDraft(&drafts.AddDraftInput{Text: "hello @alice"})

	s.resolver.EXPECT().Resolve(gomock.Any(), []string{"alice"}).Return(map[string]uint64{"alice": 42}, nil).Times(1)
	s.hub.EXPECT().
		SubmitCast(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &hub.DeliveryError{Message: "network unreachable"})

	err := s.store.Publish(s.ctx, 0, s.account)
	s.Require().Error(err)
	s.True(apperr.IsDeliveryFailed(err))
	s.Contains(err.Error(), "network unreachable")

	d, _ := s.store.Get(0)
	s.Equal(entities.DraftStatusWriting, d.Status)
	s.Contains(d.LastError, "network unreachable")
	s.Equal(map[string]uint64{"alice": 42}, d.MentionsToFids)

	// The retry uses the persisted mention and clears the old error
	s.hub.EXPECT().SubmitCast(gomock.Any(), gomock.Any(), gomock.Any()).Return(&hub.SubmitResult{Hash: "0x2"}, nil)
	s.Require().NoError(s.store.Publish(s.ctx, 0, s.account))
	s.Equal(0, s.store.Len())
}

func (s *PublishSuite) TestPublish_PanickingHubBecomesError() {
	s.store.AddDraft(&drafts.AddDraftInput{Text: "gm"})

	s.hub.EXPECT().
		SubmitCast(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *entities.CastBody, *entities.Account) (*hub.SubmitResult, error) {
			panic("connection pool exploded")
		})

	var err error
	s.NotPanics(func() {
		err = s.store.Publish(s.ctx, 0, s.account)
	})
	s.Require().Error(err)
	s.Contains(err.Error(), "connection pool exploded")

	d, _ := s.store.Get(0)
	s.Equal(entities.DraftStatusWriting, d.Status)
	s.NotEmpty(d.LastError)
}

func (s *PublishSuite) TestPublish_ReadOnlyAccountNotice() {
	s.store.AddDraft(&drafts.AddDraftInput{Text: "gm"})
	readOnly := testutils.CreateReadOnlyAccount(s.T(), 7)

	s.hub.EXPECT().
		SubmitCast(gomock.Any(), gomock.Any(), readOnly).
		Return(nil, &hub.DeliveryError{Message: "account watcher (fid 7) is read-only and cannot sign casts"})

	var notices []string
	err := s.store.Publish(s.ctx, 0, readOnly, drafts.WithNotice(func(msg string) {
		notices = append(notices, msg)
	}))
	s.Require().Error(err)

	s.Require().Len(notices, 1)
	s.Contains(notices[0], "watcher")
	s.Contains(s.emitted, events.EventTypeReadOnlyAccountNotice)
}

func (s *PublishSuite) TestPublish_CallbackPanicDoesNotFailPublish() {
	s.store.AddDraft(&drafts.AddDraftInput{Text: "gm"})
	s.hub.EXPECT().SubmitCast(gomock.Any(), gomock.Any(), gomock.Any()).Return(&hub.SubmitResult{}, nil)

	err := s.store.Publish(s.ctx, 0, s.account, drafts.WithOnPublished(func(*entities.Draft, *hub.SubmitResult) {
		panic("listener bug")
	}))
	s.NoError(err)
	s.Equal(0, s.store.Len())
}

func (s *PublishSuite) TestPublish_EmptyDraftRefused() {
	s.store.AddDraft(nil)

	err := s.store.Publish(s.ctx, 0, s.account)
	s.True(apperr.IsRefused(err))
	s.Equal(1, s.store.Len())
}

func (s *PublishSuite) TestPublish_BadArguments() {
	s.store.AddDraft(&drafts.AddDraftInput{Text: "gm"})

	s.True(apperr.IsNotFound(s.store.Publish(s.ctx, 3, s.account)))
	s.True(apperr.IsNotFound(s.store.PublishByID(s.ctx, "missing", s.account)))
	s.True(apperr.IsInvalidArgument(s.store.Publish(s.ctx, 0, nil)))
	s.Empty(s.emitted)
}

func (s *PublishSuite) TestPublish_DraftRemovedMidFlight() {
	id, _ := s.store.AddDraft(&drafts.AddDraftInput{Text: "gm"})

	s.hub.EXPECT().
		SubmitCast(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *entities.CastBody, *entities.Account) (*hub.SubmitResult, error) {
			s.store.RemoveDraftByID(id)
			return nil, errors.New("timeout")
		})

	err := s.store.PublishByID(s.ctx, id, s.account)
	s.Error(err)
	s.Equal(0, s.store.Len())
}

func TestPublishSuite(t *testing.T) {
	suite.Run(t, new(PublishSuite))
}

func TestPublish_ParentCastIsNormalized(t *testing.T) {
	ctrl := gomock.NewController(t)
	hubClient := mockhub.NewMockClient(ctrl)
	store := drafts.NewStore(&drafts.StoreConfig{
		Formatter: formatter.NewService(&formatter.ServiceConfig{Resolver: mockformatter.NewMockResolver(ctrl)}),
		Hub:       hubClient,
	})
	store.AddDraft(&drafts.AddDraftInput{
		Text:         "agreed",
		ParentCastID: &entities.CastID{FID: 3, Hash: testutils.CastHash(0xab)},
	})

	hubClient.EXPECT().
		SubmitCast(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, body *entities.CastBody, _ *entities.Account) (*hub.SubmitResult, error) {
			require.NotNil(t, body.ParentCastID)
			assert.Equal(t, uint64(3), body.ParentCastID.FID)
			assert.Equal(t, "0xabababababababababababababababababababab", body.ParentCastID.Hash)
			return &hub.SubmitResult{}, nil
		})

	require.NoError(t, store.Publish(context.Background(), 0, testutils.CreateTestAccount(t, 1)))
}
