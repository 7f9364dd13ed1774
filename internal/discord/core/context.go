package core

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// InteractionContext wraps a Discord interaction with the fields handlers need
type InteractionContext struct {
	Interaction *discordgo.InteractionCreate

	// Responder talks back to Discord for this interaction
	Responder InteractionResponder

	UserID    string
	GuildID   string
	ChannelID string
	Member    *discordgo.Member

	Context context.Context

	params map[string]any
}

// NewInteractionContext extracts the common fields and options of i
func NewInteractionContext(ctx context.Context, i *discordgo.InteractionCreate, responder InteractionResponder) *InteractionContext {
	ic := &InteractionContext{
		Interaction: i,
		Responder:   responder,
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		Context:     ctx,
		params:      make(map[string]any),
	}

	if i.Member != nil && i.Member.User != nil {
		ic.Member = i.Member
		ic.UserID = i.Member.User.ID
	} else if i.User != nil {
		ic.UserID = i.User.ID
	}

	ic.parseParams()
	return ic
}

func (ic *InteractionContext) parseParams() {
	switch ic.Interaction.Type {
	case discordgo.InteractionApplicationCommand:
		ic.parseOptions(ic.Interaction.ApplicationCommandData().Options)
	case discordgo.InteractionModalSubmit:
		ic.parseModalParams()
	}
}

// parseOptions flattens slash command options; the innermost subcommand wins
func (ic *InteractionContext) parseOptions(options []*discordgo.ApplicationCommandInteractionDataOption) {
	for _, opt := range options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			ic.params["subcommand"] = opt.Name
			ic.parseOptions(opt.Options)
		default:
			ic.params[opt.Name] = opt.Value
		}
	}
}

func (ic *InteractionContext) parseModalParams() {
	for _, comp := range ic.Interaction.ModalSubmitData().Components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				ic.params[input.CustomID] = input.Value
			}
		}
	}
}

// HasParam reports whether an option or modal field was supplied
func (ic *InteractionContext) HasParam(name string) bool {
	_, ok := ic.params[name]
	return ok
}

// GetStringParam retrieves a string parameter or returns empty string
func (ic *InteractionContext) GetStringParam(name string) string {
	if s, ok := ic.params[name].(string); ok {
		return s
	}
	return ""
}

// GetIntParam retrieves an integer parameter or returns 0. Discord sends
// integers as JSON numbers.
func (ic *InteractionContext) GetIntParam(name string) int {
	switch v := ic.params[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

// GetBoolParam retrieves a bool parameter or returns false
func (ic *InteractionContext) GetBoolParam(name string) bool {
	b, _ := ic.params[name].(bool)
	return b
}

// IsCommand checks if this is a slash command interaction
func (ic *InteractionContext) IsCommand() bool {
	return ic.Interaction.Type == discordgo.InteractionApplicationCommand
}

// IsComponent checks if this is a message component interaction
func (ic *InteractionContext) IsComponent() bool {
	return ic.Interaction.Type == discordgo.InteractionMessageComponent
}

// IsModal checks if this is a modal submit interaction
func (ic *InteractionContext) IsModal() bool {
	return ic.Interaction.Type == discordgo.InteractionModalSubmit
}

// GetCustomID returns the custom ID for component and modal interactions
func (ic *InteractionContext) GetCustomID() string {
	switch {
	case ic.IsComponent():
		return ic.Interaction.MessageComponentData().CustomID
	case ic.IsModal():
		return ic.Interaction.ModalSubmitData().CustomID
	}
	return ""
}

// GetCommandName returns the command name for slash commands
func (ic *InteractionContext) GetCommandName() string {
	if ic.IsCommand() {
		return ic.Interaction.ApplicationCommandData().Name
	}
	return ""
}

// GetSubcommand returns the subcommand name if present
func (ic *InteractionContext) GetSubcommand() string {
	return ic.GetStringParam("subcommand")
}

// Target returns the target segment of a component or modal custom ID
func (ic *InteractionContext) Target() string {
	id, err := ParseCustomID(ic.GetCustomID())
	if err != nil {
		return ""
	}
	return id.Target
}

// Describe names the interaction for logs and metrics, e.g. "cast/publish"
// or "cast:publish"
func (ic *InteractionContext) Describe() string {
	if ic.IsCommand() {
		if sub := ic.GetSubcommand(); sub != "" {
			return ic.GetCommandName() + "/" + sub
		}
		return ic.GetCommandName()
	}
	if id, err := ParseCustomID(ic.GetCustomID()); err == nil {
		return id.Domain + ":" + id.Action
	}
	return "unknown"
}

// Kind is "command", "component", "modal" or "unknown"
func (ic *InteractionContext) Kind() string {
	switch {
	case ic.IsCommand():
		return "command"
	case ic.IsComponent():
		return "component"
	case ic.IsModal():
		return "modal"
	}
	return "unknown"
}
