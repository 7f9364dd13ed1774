package entities

// WireCastID is the parent reference in the form the hub accepts
type WireCastID struct {
	FID  uint64 `json:"fid"`
	Hash string `json:"hash"`
}

// CastBody is a fully formatted cast ready to be signed and submitted
type CastBody struct {
	Text              string      `json:"text"`
	Mentions          []uint64    `json:"mentions"`
	MentionsPositions []uint32    `json:"mentions_positions"`
	Embeds            []Embed     `json:"embeds"`
	ParentURL         string      `json:"parent_url,omitempty"`
	ParentCastID      *WireCastID `json:"parent_cast_id,omitempty"`

	// MentionsToFids is every handle resolved while formatting, including cached ones
	MentionsToFids map[string]uint64 `json:"-"`
}
