package builders

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
)

// EmbedBuilder provides a fluent API for building Discord embeds
type EmbedBuilder struct {
	embed *discordgo.MessageEmbed
}

// NewEmbed creates a new embed builder
func NewEmbed() *EmbedBuilder {
	return &EmbedBuilder{
		embed: &discordgo.MessageEmbed{
			Type:   discordgo.EmbedTypeRich,
			Fields: make([]*discordgo.MessageEmbedField, 0),
		},
	}
}

// Title sets the embed title
func (b *EmbedBuilder) Title(title string) *EmbedBuilder {
	b.embed.Title = title
	return b
}

// Description sets the embed description
func (b *EmbedBuilder) Description(description string) *EmbedBuilder {
	b.embed.Description = description
	return b
}

// URL sets the embed URL
func (b *EmbedBuilder) URL(url string) *EmbedBuilder {
	b.embed.URL = url
	return b
}

// Color sets the embed color
func (b *EmbedBuilder) Color(color int) *EmbedBuilder {
	b.embed.Color = color
	return b
}

// Timestamp sets the embed timestamp
func (b *EmbedBuilder) Timestamp(timestamp time.Time) *EmbedBuilder {
	b.embed.Timestamp = timestamp.Format(time.RFC3339)
	return b
}

// Footer sets the embed footer
func (b *EmbedBuilder) Footer(text string) *EmbedBuilder {
	b.embed.Footer = &discordgo.MessageEmbedFooter{Text: text}
	return b
}

// Field adds a field to the embed. Empty values are skipped, Discord rejects them.
func (b *EmbedBuilder) Field(name, value string, inline bool) *EmbedBuilder {
	if value == "" {
		return b
	}
	b.embed.Fields = append(b.embed.Fields, &discordgo.MessageEmbedField{
		Name:   name,
		Value:  truncate(value, maxFieldValue),
		Inline: inline,
	})
	return b
}

// Build returns the constructed embed
func (b *EmbedBuilder) Build() *discordgo.MessageEmbed {
	return b.embed
}

// Common embed colors
const (
	ColorSuccess   = 0x00ff00
	ColorError     = 0xff0000
	ColorWarning   = 0xffaa00
	ColorInfo      = 0x0099ff
	ColorFarcaster = 0x8a63d2
)

const (
	maxDescription = 4096
	maxFieldValue  = 1024
	maxPreview     = 80
)

// SuccessEmbed creates a pre-styled success embed
func SuccessEmbed(title, description string) *EmbedBuilder {
	return NewEmbed().
		Title("✅ " + title).
		Description(description).
		Color(ColorSuccess)
}

// WarningEmbed creates a pre-styled warning embed
func WarningEmbed(title, description string) *EmbedBuilder {
	return NewEmbed().
		Title("⚠️ " + title).
		Description(description).
		Color(ColorWarning)
}

// DraftEmbed shows one draft with its number in the list
func DraftEmbed(number int, draft *entities.Draft) *EmbedBuilder {
	text := draft.Text
	if strings.TrimSpace(text) == "" {
		text = "*empty draft*"
	}

	b := NewEmbed().
		Title(fmt.Sprintf("Draft #%d", number)).
		Description(truncate(text, maxDescription)).
		Color(ColorFarcaster).
		Timestamp(draft.UpdatedAt)

	b.Field("Channel", draft.ParentURL, false)
	if draft.ParentCastID != nil {
		b.Field("Reply to", fmt.Sprintf("fid %d, 0x%x", draft.ParentCastID.FID, draft.ParentCastID.Hash), false)
	}
	b.Field("Embeds", embedList(draft.Embeds), false)
	b.Field("Mentions", mentionList(draft), false)
	if draft.Status == entities.DraftStatusPublishing {
		b.Field("Status", "⏳ publishing", true)
	}
	if draft.LastError != "" {
		b.Field("Last publish failed", draft.LastError, false)
		b.Color(ColorWarning)
	}

	return b.Footer(fmt.Sprintf("%d/320 bytes", len(draft.Text)))
}

// DraftListEmbed summarizes every draft, one line each
func DraftListEmbed(drafts []*entities.Draft) *EmbedBuilder {
	if len(drafts) == 0 {
		return NewEmbed().
			Title("Your drafts").
			Description("You have no drafts. Start one with `/cast new`.").
			Color(ColorInfo)
	}

	var sb strings.Builder
	for i, d := range drafts {
		line := strings.ReplaceAll(d.Text, "\n", " ")
		if strings.TrimSpace(line) == "" {
			line = "*empty*"
		}
		marker := ""
		switch {
		case d.Status == entities.DraftStatusPublishing:
			marker = " ⏳"
		case d.LastError != "":
			marker = " ⚠️"
		}
		fmt.Fprintf(&sb, "**%d.** %s%s\n", i+1, truncate(line, maxPreview), marker)
	}

	return NewEmbed().
		Title("Your drafts").
		Description(truncate(sb.String(), maxDescription)).
		Color(ColorFarcaster).
		Footer(fmt.Sprintf("%d draft(s) • /cast publish number:<n>", len(drafts)))
}

// PublishedEmbed confirms a cast went out
func PublishedEmbed(text, castURL string) *EmbedBuilder {
	return SuccessEmbed("Cast published", truncate(text, maxDescription)).
		URL(castURL).
		Color(ColorFarcaster)
}

func embedList(embeds []entities.Embed) string {
	lines := make([]string, 0, len(embeds))
	for _, e := range embeds {
		switch {
		case e.URL != "":
			lines = append(lines, e.URL)
		case e.CastID != nil:
			lines = append(lines, fmt.Sprintf("cast 0x%x by fid %d", e.CastID.Hash, e.CastID.FID))
		}
	}
	return strings.Join(lines, "\n")
}

func mentionList(draft *entities.Draft) string {
	handles := draft.Handles()
	parts := make([]string, 0, len(handles))
	for _, h := range handles {
		if fid := draft.MentionsToFids[h]; fid != 0 {
			parts = append(parts, fmt.Sprintf("@%s (%d)", h, fid))
		}
	}
	return strings.Join(parts, ", ")
}

// truncate cuts s to at most n runes, marking the cut
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// CastURL links to a cast on Warpcast by author and hash
func CastURL(author string, hash string) string {
	short := strings.TrimPrefix(hash, "0x")
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("https://warpcast.com/%s/0x%s", author, short)
}
