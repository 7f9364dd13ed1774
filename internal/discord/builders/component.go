package builders

import (
	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/core"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
)

const maxPerRow = 5

// ComponentBuilder builds Discord message components
type ComponentBuilder struct {
	rows            []discordgo.MessageComponent
	currentRow      []discordgo.MessageComponent
	customIDBuilder *core.CustomIDBuilder
}

// NewComponentBuilder creates a new component builder
func NewComponentBuilder(customIDBuilder *core.CustomIDBuilder) *ComponentBuilder {
	return &ComponentBuilder{
		rows:            make([]discordgo.MessageComponent, 0),
		currentRow:      make([]discordgo.MessageComponent, 0, maxPerRow),
		customIDBuilder: customIDBuilder,
	}
}

// Button adds a button whose custom ID is action:target
func (b *ComponentBuilder) Button(label string, style discordgo.ButtonStyle, action, target string, args ...string) *ComponentBuilder {
	b.addComponent(discordgo.Button{
		Label:    label,
		Style:    style,
		CustomID: b.customIDBuilder.Button(action, target, args...),
	})
	return b
}

// EmojiButton adds a button with emoji
func (b *ComponentBuilder) EmojiButton(label, emoji string, style discordgo.ButtonStyle, action, target string) *ComponentBuilder {
	b.addComponent(discordgo.Button{
		Label:    label,
		Style:    style,
		CustomID: b.customIDBuilder.Button(action, target),
		Emoji:    &discordgo.ComponentEmoji{Name: emoji},
	})
	return b
}

// LinkButton adds a URL button
func (b *ComponentBuilder) LinkButton(label, url string) *ComponentBuilder {
	b.addComponent(discordgo.Button{
		Label: label,
		Style: discordgo.LinkButton,
		URL:   url,
	})
	return b
}

// NewRow starts a new action row
func (b *ComponentBuilder) NewRow() *ComponentBuilder {
	if len(b.currentRow) > 0 {
		b.rows = append(b.rows, discordgo.ActionsRow{Components: b.currentRow})
		b.currentRow = make([]discordgo.MessageComponent, 0, maxPerRow)
	}
	return b
}

// Build returns the action rows
func (b *ComponentBuilder) Build() []discordgo.MessageComponent {
	b.NewRow()
	return b.rows
}

func (b *ComponentBuilder) addComponent(component discordgo.MessageComponent) {
	if len(b.currentRow) >= maxPerRow {
		b.NewRow()
	}
	b.currentRow = append(b.currentRow, component)
}

// DraftActions are the publish, edit and remove buttons under a draft.
// Publishing drafts get no buttons.
func DraftActions(ids *core.CustomIDBuilder, draft *entities.Draft) []discordgo.MessageComponent {
	if draft.Status == entities.DraftStatusPublishing {
		return []discordgo.MessageComponent{}
	}

	return NewComponentBuilder(ids).
		EmojiButton("Publish", "📣", discordgo.PrimaryButton, "publish", draft.ID).
		EmojiButton("Edit", "✏️", discordgo.SecondaryButton, "edit", draft.ID).
		EmojiButton("Remove", "🗑️", discordgo.DangerButton, "remove", draft.ID).
		Build()
}
