package formatter

//go:generate mockgen -destination=mock/mock_formatter.go -package=mockformatter -source=formatter.go

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
	apperr "github.com/KirkDiggler/farcaster-bot-discord/internal/errors"
)

// Hub limits a cast must satisfy
const (
	MaxTextBytes = 320
	MaxMentions  = 10
	MaxEmbeds    = 2
)

// Resolver maps handles to FIDs. Unknown handles are omitted from the result.
type Resolver interface {
	Resolve(ctx context.Context, handles []string) (map[string]uint64, error)
}

// HandleLister lists handles we have seen before, used for suggestions
type HandleLister interface {
	Handles(ctx context.Context) ([]string, error)
}

// Service turns draft text into a hub-ready cast body
type Service interface {
	// Format returns a refusal error (code refused) when the input cannot become a cast
	Format(ctx context.Context, input *FormatInput) (*entities.CastBody, error)
}

// FormatInput is the draft content to format
type FormatInput struct {
	Text       string
	Embeds     []entities.Embed
	ParentURL  string
	ParentFID  uint64
	ParentHash []byte

	// MentionsToFids are already known; only the rest are resolved
	MentionsToFids map[string]uint64
}

type service struct {
	resolver Resolver
	handles  HandleLister
	logger   *zap.Logger
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Resolver Resolver     // Required
	Handles  HandleLister // Optional, enables "did you mean" hints
	Logger   *zap.Logger  // Optional
}

// NewService creates a new formatter service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Resolver == nil {
		panic("resolver is required")
	}

	svc := &service{
		resolver: cfg.Resolver,
		handles:  cfg.Handles,
		logger:   cfg.Logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}

	return svc
}

func (s *service) Format(ctx context.Context, input *FormatInput) (*entities.CastBody, error) {
	if input == nil {
		return nil, apperr.Refused("nothing to format")
	}
	if len(input.Embeds) > MaxEmbeds {
		return nil, apperr.Refusedf("a cast can carry at most %d embeds, this one has %d", MaxEmbeds, len(input.Embeds))
	}

	parent, err := wireParent(input.ParentFID, input.ParentHash)
	if err != nil {
		return nil, err
	}

	mentions := findMentions(input.Text)
	if len(mentions) > MaxMentions {
		return nil, apperr.Refusedf("a cast can mention at most %d accounts, this one mentions %d", MaxMentions, len(mentions))
	}

	fids, err := s.resolve(ctx, distinctHandles(mentions), input.MentionsToFids)
	if err != nil {
		return nil, err
	}

	text, positions := stripMentions(input.Text, mentions)
	if len(text) > MaxTextBytes {
		return nil, apperr.Refusedf("cast text is %d bytes, the limit is %d", len(text), MaxTextBytes)
	}
	if strings.TrimSpace(text) == "" && len(mentions) == 0 && len(input.Embeds) == 0 {
		return nil, apperr.Refused("cast is empty")
	}

	body := &entities.CastBody{
		Text:              text,
		Mentions:          make([]uint64, len(mentions)),
		MentionsPositions: positions,
		Embeds:            input.Embeds,
		ParentURL:         input.ParentURL,
		ParentCastID:      parent,
		MentionsToFids:    fids,
	}
	for i, m := range mentions {
		body.Mentions[i] = fids[m.handle]
	}
	if body.Embeds == nil {
		body.Embeds = []entities.Embed{}
	}

	return body, nil
}

// resolve returns the FID for every handle, using known entries first
func (s *service) resolve(ctx context.Context, handles []string, known map[string]uint64) (map[string]uint64, error) {
	fids := make(map[string]uint64, len(handles))
	var missing []string
	for _, handle := range handles {
		if fid, ok := known[handle]; ok && fid != 0 {
			fids[handle] = fid
			continue
		}
		missing = append(missing, handle)
	}

	if len(missing) == 0 {
		return fids, nil
	}

	resolved, err := s.resolveSafely(ctx, missing)
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeRefused, "could not look up mentioned accounts").
			WithMeta("handles", missing)
	}

	for _, handle := range missing {
		fid, ok := resolved[handle]
		if !ok || fid == 0 {
			return nil, s.unknownHandle(ctx, handle, fids)
		}
		fids[handle] = fid
	}

	return fids, nil
}

// resolveSafely keeps a misbehaving resolver from panicking through the formatter
func (s *service) resolveSafely(ctx context.Context, handles []string) (resolved map[string]uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resolver panicked: %v", r)
		}
	}()
	return s.resolver.Resolve(ctx, handles)
}

func (s *service) unknownHandle(ctx context.Context, handle string, resolved map[string]uint64) error {
	refusal := apperr.Refusedf("@%s is not a Farcaster user", handle).WithMeta("handle", handle)

	candidates := make([]string, 0, len(resolved))
	for known := range resolved {
		candidates = append(candidates, known)
	}
	if s.handles != nil {
		seen, err := s.handles.Handles(ctx)
		if err != nil {
			s.logger.Warn("failed to list known handles", zap.Error(err))
		}
		candidates = append(candidates, seen...)
	}

	if suggestion := closestHandle(handle, candidates); suggestion != "" {
		refusal.Message = fmt.Sprintf("@%s is not a Farcaster user, did you mean @%s?", handle, suggestion)
		refusal.WithMeta("suggestion", suggestion)
	}

	return refusal
}

// closestHandle returns the candidate within edit distance 2, preferring the nearest
func closestHandle(handle string, candidates []string) string {
	best, bestDist := "", 3
	for _, candidate := range candidates {
		if candidate == handle {
			continue
		}
		dist := levenshtein.ComputeDistance(handle, candidate)
		if dist < bestDist || (dist == bestDist && candidate < best) {
			best, bestDist = candidate, dist
		}
	}
	return best
}
