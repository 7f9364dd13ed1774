package entities

import (
	"bytes"
	"maps"
	"slices"
	"time"
)

// DraftStatus is where a draft sits in the publish lifecycle
type DraftStatus string

const (
	DraftStatusWriting    DraftStatus = "writing"
	DraftStatusPublishing DraftStatus = "publishing"
)

// CastID points at a specific cast on the network
type CastID struct {
	FID  uint64 `json:"fid"`
	Hash []byte `json:"hash"`
}

// Clone returns a deep copy
func (c *CastID) Clone() *CastID {
	if c == nil {
		return nil
	}
	return &CastID{FID: c.FID, Hash: bytes.Clone(c.Hash)}
}

// Embed is an opaque attachment reference. Exactly one of URL or CastID is set.
type Embed struct {
	URL    string  `json:"url,omitempty"`
	CastID *CastID `json:"cast_id,omitempty"`
}

// Draft is an unsent cast held by a user's draft store
type Draft struct {
	ID             string            `json:"id"`
	Text           string            `json:"text"`
	ParentURL      string            `json:"parent_url,omitempty"`
	ParentCastID   *CastID           `json:"parent_cast_id,omitempty"`
	Status         DraftStatus       `json:"status"`
	MentionsToFids map[string]uint64 `json:"mentions_to_fids,omitempty"`
	Embeds         []Embed           `json:"embeds,omitempty"`

	// LastError carries the description of the most recent failed publish
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty reports whether the draft has no text. Whitespace counts as text.
func (d *Draft) IsEmpty() bool {
	return d.Text == ""
}

// RepliesTo reports whether the draft's parent cast has the given hash
func (d *Draft) RepliesTo(hash []byte) bool {
	return d.ParentCastID != nil && len(hash) > 0 && bytes.Equal(d.ParentCastID.Hash, hash)
}

// Clone returns a deep copy so snapshots never share maps or slices
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}

	clone := *d
	clone.ParentCastID = d.ParentCastID.Clone()
	if d.MentionsToFids != nil {
		clone.MentionsToFids = maps.Clone(d.MentionsToFids)
	}
	if d.Embeds != nil {
		clone.Embeds = make([]Embed, len(d.Embeds))
		for i, e := range d.Embeds {
			clone.Embeds[i] = Embed{URL: e.URL, CastID: e.CastID.Clone()}
		}
	}
	return &clone
}

// Handles returns the cached mention handles in sorted order
func (d *Draft) Handles() []string {
	handles := slices.Collect(maps.Keys(d.MentionsToFids))
	slices.Sort(handles)
	return handles
}
