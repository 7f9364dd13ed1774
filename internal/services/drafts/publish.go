package drafts

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/clients/hub"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
	apperr "github.com/KirkDiggler/farcaster-bot-discord/internal/errors"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/events"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/formatter"
)

// ErrAlreadyPublishing is returned when a draft is published while a previous
// publish of the same draft is still in flight
var ErrAlreadyPublishing = apperr.New(apperr.CodeConflict, "draft is already being published")

type publishOptions struct {
	onPublished func(draft *entities.Draft, result *hub.SubmitResult)
	onNotice    func(message string)
}

// PublishOption customizes a single publish
type PublishOption func(*publishOptions)

// WithOnPublished runs fn after the hub accepted the cast and the draft was removed
func WithOnPublished(fn func(draft *entities.Draft, result *hub.SubmitResult)) PublishOption {
	return func(o *publishOptions) {
		o.onPublished = fn
	}
}

// WithNotice receives informational messages such as the read-only account warning
func WithNotice(fn func(message string)) PublishOption {
	return func(o *publishOptions) {
		o.onNotice = fn
	}
}

// Publish publishes the draft at index under account
func (s *Store) Publish(ctx context.Context, index int, account *entities.Account, opts ...PublishOption) error {
	id, ok := s.state.Load().idAt(index)
	if !ok {
		return apperr.NotFoundf("there is no draft #%d", index+1)
	}
	return s.PublishByID(ctx, id, account, opts...)
}

// PublishByID formats the draft, submits it to the hub and removes it on
// success. On failure the draft goes back to writing with LastError set and
// the error is returned. Panics in collaborators come back as errors.
func (s *Store) PublishByID(ctx context.Context, id string, account *entities.Account, opts ...PublishOption) (err error) {
	if account == nil {
		return apperr.InvalidArgument("an account is required to publish")
	}

	o := &publishOptions{}
	for _, opt := range opts {
		opt(o)
	}

	draft, err := s.beginPublish(id)
	if err != nil {
		return err
	}

	start := s.now()
	logger := s.logger.With(zap.String("draft", id), zap.Uint64("fid", account.FID))
	logger.Info("publishing draft")
	s.emit(&events.DraftEvent{Type: events.EventTypePublishStarted, OwnerID: s.ownerID, DraftID: id, FID: account.FID})

	var resolved map[string]uint64
	defer func() {
		if r := recover(); r != nil {
			logger.Error("publish panicked", zap.Any("panic", r), zap.Stack("stack"))
			err = apperr.Internalf("publishing failed unexpectedly: %v", r)
		}
		if err == nil {
			return
		}

		s.failPublish(id, err, resolved)
		logger.Warn("publish failed", zap.Error(err))
		s.emit(&events.DraftEvent{
			Type:     events.EventTypePublishFailed,
			OwnerID:  s.ownerID,
			DraftID:  id,
			FID:      account.FID,
			Reason:   err.Error(),
			Duration: s.now().Sub(start),
		})
	}()

	input := &formatter.FormatInput{
		Text:           draft.Text,
		Embeds:         draft.Embeds,
		ParentURL:      draft.ParentURL,
		MentionsToFids: draft.MentionsToFids,
	}
	if draft.ParentCastID != nil {
		input.ParentFID = draft.ParentCastID.FID
		input.ParentHash = draft.ParentCastID.Hash
	}

	body, err := s.formatter.Format(ctx, input)
	if err != nil {
		return apperr.Wrap(err, "could not prepare cast")
	}
	resolved = body.MentionsToFids

	if account.IsReadOnly() {
		notice := fmt.Sprintf("account %s is read-only, connect a signer to publish casts from it", accountLabel(account))
		logger.Info("publishing from read-only account")
		s.emit(&events.DraftEvent{Type: events.EventTypeReadOnlyAccountNotice, OwnerID: s.ownerID, DraftID: id, FID: account.FID, Reason: notice})
		s.callback(logger, "notice", func() {
			if o.onNotice != nil {
				o.onNotice(notice)
			}
		})
	}

	result, err := s.hub.SubmitCast(ctx, body, account)
	if err != nil {
		return apperr.WrapWithCode(err, apperr.CodeDeliveryFailed, "failed to publish cast")
	}
	if result == nil {
		result = &hub.SubmitResult{}
	}

	s.update(func(cur *snapshot) *snapshot {
		return cur.withRemoved(id)
	})

	logger.Info("published draft", zap.String("hash", result.Hash))
	s.emit(&events.DraftEvent{
		Type:     events.EventTypeDraftPublished,
		OwnerID:  s.ownerID,
		DraftID:  id,
		FID:      account.FID,
		Duration: s.now().Sub(start),
	})

	draft.MentionsToFids = resolved
	s.callback(logger, "published", func() {
		if o.onPublished != nil {
			o.onPublished(draft, result)
		}
	})

	return nil
}

// beginPublish moves a writing draft to publishing and returns a copy of it
func (s *Store) beginPublish(id string) (*entities.Draft, error) {
	var (
		draft *entities.Draft
		err   error
	)
	s.update(func(cur *snapshot) *snapshot {
		draft, err = nil, nil

		d, ok := cur.drafts[id]
		if !ok {
			err = apperr.NotFoundf("draft %s not found", id)
			return nil
		}
		if d.Status == entities.DraftStatusPublishing {
			err = ErrAlreadyPublishing
			return nil
		}

		next := d.Clone()
		next.Status = entities.DraftStatusPublishing
		next.LastError = ""
		next.UpdatedAt = s.now()
		draft = next
		return cur.withReplaced(next)
	})
	if err != nil {
		return nil, err
	}

	return draft.Clone(), nil
}

// failPublish reverts a publishing draft to writing. Mentions resolved during
// the attempt are kept so the retry skips the registry.
func (s *Store) failPublish(id string, cause error, resolved map[string]uint64) {
	s.update(func(cur *snapshot) *snapshot {
		d, ok := cur.drafts[id]
		if !ok || d.Status != entities.DraftStatusPublishing {
			return nil
		}

		next := d.Clone()
		next.Status = entities.DraftStatusWriting
		next.LastError = cause.Error()
		if len(resolved) > 0 {
			if next.MentionsToFids == nil {
				next.MentionsToFids = make(map[string]uint64, len(resolved))
			}
			maps.Copy(next.MentionsToFids, resolved)
		}
		next.UpdatedAt = s.now()
		return cur.withReplaced(next)
	})
}

func (s *Store) callback(logger *zap.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("publish callback panicked", zap.String("callback", name), zap.Any("panic", r))
		}
	}()
	fn()
}

func accountLabel(a *entities.Account) string {
	if a.Name != "" {
		return a.Name
	}
	return fmt.Sprintf("fid %d", a.FID)
}
