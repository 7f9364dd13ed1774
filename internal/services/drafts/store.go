// Package drafts holds one user's unsent casts and publishes them.
//
// A Store keeps its drafts in an immutable snapshot behind an atomic pointer.
// Every mutation builds a new snapshot and swaps it in with compare-and-swap,
// so readers never see a half-applied change and callers never take a lock.
// Drafts carry stable IDs; index-based operations resolve against the current
// snapshot and exist for callers that present drafts as a numbered list.
package drafts

import (
	"maps"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/clients/hub"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
	apperr "github.com/KirkDiggler/farcaster-bot-discord/internal/errors"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/events"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/formatter"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/uuid"
)

// AddDraftInput seeds a new draft. All fields are optional.
type AddDraftInput struct {
	Text           string
	ParentURL      string
	ParentCastID   *entities.CastID
	Embeds         []entities.Embed
	MentionsToFids map[string]uint64
}

func (in *AddDraftInput) hasContent() bool {
	return in.Text != "" || in.ParentURL != "" || (in.ParentCastID != nil && len(in.ParentCastID.Hash) > 0)
}

// Store is a single owner's draft collection
type Store struct {
	ownerID   string
	state     atomic.Pointer[snapshot]
	formatter formatter.Service
	hub       hub.Client
	bus       *events.Bus
	uuid      uuid.Generator
	logger    *zap.Logger
	now       func() time.Time
}

// StoreConfig holds configuration for a Store
type StoreConfig struct {
	OwnerID   string
	Formatter formatter.Service // Required
	Hub       hub.Client        // Required
	Bus       *events.Bus       // Optional
	UUID      uuid.Generator    // Optional, random UUIDs by default
	Logger    *zap.Logger       // Optional
	Now       func() time.Time  // Optional
}

// NewStore creates an empty draft store
func NewStore(cfg *StoreConfig) *Store {
	if cfg.Formatter == nil {
		panic("formatter is required")
	}
	if cfg.Hub == nil {
		panic("hub client is required")
	}

	s := &Store{
		ownerID:   cfg.OwnerID,
		formatter: cfg.Formatter,
		hub:       cfg.Hub,
		bus:       cfg.Bus,
		uuid:      cfg.UUID,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if s.uuid == nil {
		s.uuid = uuid.NewRandom()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.logger = s.logger.With(zap.String("owner", cfg.OwnerID))
	s.state.Store(emptySnapshot)

	return s
}

// OwnerID returns the user this store belongs to
func (s *Store) OwnerID() string {
	return s.ownerID
}

// update applies fn to the current snapshot until the swap wins. fn may run
// more than once and must not have side effects beyond its return value.
// Returning nil or the same snapshot means no change.
func (s *Store) update(fn func(cur *snapshot) *snapshot) bool {
	for {
		cur := s.state.Load()
		next := fn(cur)
		if next == nil || next == cur {
			return false
		}
		if s.state.CompareAndSwap(cur, next) {
			return true
		}
	}
}

// AddDraft appends a writing draft and returns its ID. When an equivalent
// draft already exists nothing is added and that draft's ID is returned.
// A blank request matches any draft without text. A request with a parent
// matches a draft with the same parent URL or the same parent cast hash.
func (s *Store) AddDraft(in *AddDraftInput) (string, bool) {
	if in == nil {
		in = &AddDraftInput{}
	}

	var id string
	added := s.update(func(cur *snapshot) *snapshot {
		if existing := cur.find(duplicateOf(in)); existing != nil {
			id = existing.ID
			return nil
		}

		d := s.newDraft(in.Text, in.ParentURL, in.ParentCastID, in.Embeds, in.MentionsToFids)
		id = d.ID
		return cur.withAppended(d)
	})

	if added {
		s.logger.Debug("added draft", zap.String("draft", id))
		s.emit(&events.DraftEvent{Type: events.EventTypeDraftAdded, OwnerID: s.ownerID, DraftID: id})
	}
	return id, added
}

func duplicateOf(in *AddDraftInput) func(*entities.Draft) bool {
	hasHash := in.ParentCastID != nil && len(in.ParentCastID.Hash) > 0
	switch {
	case in.ParentURL != "" || hasHash:
		return func(d *entities.Draft) bool {
			return (in.ParentURL != "" && d.ParentURL == in.ParentURL) ||
				(hasHash && d.RepliesTo(in.ParentCastID.Hash))
		}
	case !in.hasContent():
		return func(d *entities.Draft) bool { return d.IsEmpty() }
	default:
		return func(*entities.Draft) bool { return false }
	}
}

// AddTemplateDraft appends a pre-populated draft without any dedup
func (s *Store) AddTemplateDraft(tpl *Template) string {
	d := s.newDraft(tpl.Text, tpl.ParentURL, tpl.ParentCastID, tpl.Embeds, tpl.MentionsToFids)
	s.update(func(cur *snapshot) *snapshot {
		return cur.withAppended(d)
	})

	s.logger.Debug("added template draft", zap.String("draft", d.ID), zap.String("template", tpl.Name))
	s.emit(&events.DraftEvent{Type: events.EventTypeDraftAdded, OwnerID: s.ownerID, DraftID: d.ID, Reason: tpl.Name})
	return d.ID
}

func (s *Store) newDraft(text, parentURL string, parent *entities.CastID, embeds []entities.Embed, mentions map[string]uint64) *entities.Draft {
	now := s.now()
	d := &entities.Draft{
		ID:             s.uuid.New(),
		Text:           text,
		ParentURL:      parentURL,
		ParentCastID:   parent,
		Status:         entities.DraftStatusWriting,
		MentionsToFids: mentions,
		Embeds:         embeds,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	// Detach from caller-owned maps and slices
	return d.Clone()
}

// UpdateDraft replaces the draft at index. The stored ID, status and
// creation time are kept; everything else comes from draft.
func (s *Store) UpdateDraft(index int, draft *entities.Draft) bool {
	id, ok := s.state.Load().idAt(index)
	if !ok {
		return false
	}
	return s.UpdateDraftByID(id, draft)
}

// UpdateDraftByID replaces the draft with the given ID. Drafts that are
// being published are left alone.
func (s *Store) UpdateDraftByID(id string, draft *entities.Draft) bool {
	return s.ReplaceDraftByID(id, draft) == nil
}

// ReplaceDraftByID is UpdateDraftByID that says why nothing changed:
// a NotFound error for an unknown ID, ErrAlreadyPublishing while a publish
// is in flight
func (s *Store) ReplaceDraftByID(id string, draft *entities.Draft) error {
	if draft == nil {
		return apperr.InvalidArgument("draft is required")
	}

	var err error
	s.update(func(cur *snapshot) *snapshot {
		err = nil

		existing, ok := cur.drafts[id]
		if !ok {
			err = apperr.NotFoundf("draft %s not found", id)
			return nil
		}
		if existing.Status == entities.DraftStatusPublishing {
			err = ErrAlreadyPublishing
			return nil
		}

		next := draft.Clone()
		next.ID = existing.ID
		next.Status = existing.Status
		next.CreatedAt = existing.CreatedAt
		next.UpdatedAt = s.now()
		return cur.withReplaced(next)
	})
	return err
}

// UpdateMentions replaces the cached handle to FID map of the draft at index
func (s *Store) UpdateMentions(index int, mentions map[string]uint64) bool {
	id, ok := s.state.Load().idAt(index)
	if !ok {
		return false
	}
	return s.UpdateMentionsByID(id, mentions)
}

// UpdateMentionsByID replaces the cached handle to FID map of a draft
func (s *Store) UpdateMentionsByID(id string, mentions map[string]uint64) bool {
	return s.update(func(cur *snapshot) *snapshot {
		existing, ok := cur.drafts[id]
		if !ok {
			return nil
		}

		next := existing.Clone()
		next.MentionsToFids = maps.Clone(mentions)
		next.UpdatedAt = s.now()
		return cur.withReplaced(next)
	})
}

// RemoveDraft removes the draft at index. With onlyIfEmpty the draft is
// kept when it has any text.
func (s *Store) RemoveDraft(index int, onlyIfEmpty bool) bool {
	cur := s.state.Load()
	id, ok := cur.idAt(index)
	if !ok {
		return false
	}
	if onlyIfEmpty && !cur.drafts[id].IsEmpty() {
		return false
	}
	return s.removeByID(id, onlyIfEmpty)
}

// RemoveDraftByID removes a draft regardless of its content or status
func (s *Store) RemoveDraftByID(id string) bool {
	return s.removeByID(id, false)
}

func (s *Store) removeByID(id string, onlyIfEmpty bool) bool {
	removed := s.update(func(cur *snapshot) *snapshot {
		d, ok := cur.drafts[id]
		if !ok || (onlyIfEmpty && !d.IsEmpty()) {
			return nil
		}
		return cur.withRemoved(id)
	})

	if removed {
		s.logger.Debug("removed draft", zap.String("draft", id))
		s.emit(&events.DraftEvent{Type: events.EventTypeDraftRemoved, OwnerID: s.ownerID, DraftID: id})
	}
	return removed
}

// RemoveAll empties the store and returns how many drafts were dropped
func (s *Store) RemoveAll() int {
	var dropped []string
	s.update(func(cur *snapshot) *snapshot {
		dropped = cur.order
		if cur.len() == 0 {
			return nil
		}
		return emptySnapshot
	})

	for _, id := range dropped {
		s.emit(&events.DraftEvent{Type: events.EventTypeDraftRemoved, OwnerID: s.ownerID, DraftID: id})
	}
	return len(dropped)
}

// Drafts returns copies of every draft in display order
func (s *Store) Drafts() []*entities.Draft {
	cur := s.state.Load()
	out := make([]*entities.Draft, 0, cur.len())
	for _, id := range cur.order {
		out = append(out, cur.drafts[id].Clone())
	}
	return out
}

// Get returns a copy of the draft at index
func (s *Store) Get(index int) (*entities.Draft, bool) {
	cur := s.state.Load()
	id, ok := cur.idAt(index)
	if !ok {
		return nil, false
	}
	return cur.drafts[id].Clone(), true
}

// GetByID returns a copy of the draft with the given ID
func (s *Store) GetByID(id string) (*entities.Draft, bool) {
	d, ok := s.state.Load().drafts[id]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// IndexOf returns the current position of a draft, or -1
func (s *Store) IndexOf(id string) int {
	return s.state.Load().indexOf(id)
}

// Len returns the number of drafts
func (s *Store) Len() int {
	return s.state.Load().len()
}

func (s *Store) emit(event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(event); err != nil {
		s.logger.Warn("event listener failed",
			zap.String("event", string(event.GetType())),
			zap.Error(err))
	}
}
