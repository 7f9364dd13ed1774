package drafts

import (
	"maps"
	"slices"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
)

// snapshot is an immutable view of one owner's drafts. Drafts are keyed by
// stable ID; order is the display order and the only source of indexes.
// Mutations build a new snapshot and never touch the old one.
type snapshot struct {
	order  []string
	drafts map[string]*entities.Draft
}

var emptySnapshot = &snapshot{drafts: map[string]*entities.Draft{}}

func (s *snapshot) len() int {
	return len(s.order)
}

func (s *snapshot) idAt(index int) (string, bool) {
	if index < 0 || index >= len(s.order) {
		return "", false
	}
	return s.order[index], true
}

func (s *snapshot) indexOf(id string) int {
	return slices.Index(s.order, id)
}

func (s *snapshot) find(match func(*entities.Draft) bool) *entities.Draft {
	for _, id := range s.order {
		if d := s.drafts[id]; match(d) {
			return d
		}
	}
	return nil
}

func (s *snapshot) withAppended(d *entities.Draft) *snapshot {
	next := &snapshot{
		order:  append(slices.Clip(s.order), d.ID),
		drafts: maps.Clone(s.drafts),
	}
	next.drafts[d.ID] = d
	return next
}

func (s *snapshot) withReplaced(d *entities.Draft) *snapshot {
	next := &snapshot{
		order:  s.order,
		drafts: maps.Clone(s.drafts),
	}
	next.drafts[d.ID] = d
	return next
}

func (s *snapshot) withRemoved(id string) *snapshot {
	index := s.indexOf(id)
	if index < 0 {
		return s
	}
	if len(s.order) == 1 {
		return emptySnapshot
	}

	next := &snapshot{
		order:  slices.Delete(slices.Clone(s.order), index, index+1),
		drafts: maps.Clone(s.drafts),
	}
	delete(next.drafts, id)
	return next
}
