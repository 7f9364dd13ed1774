package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/routers"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/formatter"
)

// CommandCreator is the slice of *discordgo.Session that registers commands
type CommandCreator interface {
	ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
}

func numberOption(description string) *discordgo.ApplicationCommandOption {
	minNumber := 1.0
	return &discordgo.ApplicationCommandOption{
		Name:        "number",
		Description: description,
		Type:        discordgo.ApplicationCommandOptionInteger,
		Required:    true,
		MinValue:    &minNumber,
	}
}

// Commands returns the slash commands the bot serves
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        routers.CastDomain,
			Description: "Compose and publish Farcaster casts",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "new",
					Description: "Start a draft",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "text",
							Description: "What to say, @handles become mentions",
							Type:        discordgo.ApplicationCommandOptionString,
							MaxLength:   1024,
						},
						{
							Name:        "channel",
							Description: "Channel URL to cast into",
							Type:        discordgo.ApplicationCommandOptionString,
						},
						{
							Name:        "reply_fid",
							Description: "FID of the author you reply to",
							Type:        discordgo.ApplicationCommandOptionInteger,
						},
						{
							Name:        "reply_hash",
							Description: "Hash of the cast you reply to",
							Type:        discordgo.ApplicationCommandOptionString,
							MaxLength:   2 + 2*formatter.CastHashSize,
						},
					},
				},
				{
					Name:        "list",
					Description: "List your drafts",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "show",
					Description: "Show a draft with its buttons",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options:     []*discordgo.ApplicationCommandOption{numberOption("Draft number from /cast list")},
				},
				{
					Name:        "edit",
					Description: "Replace the text of a draft",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						numberOption("Draft number from /cast list"),
						{
							Name:        "text",
							Description: "New text",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
							MaxLength:   1024,
						},
					},
				},
				{
					Name:        "remove",
					Description: "Remove a draft",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options:     []*discordgo.ApplicationCommandOption{numberOption("Draft number from /cast list")},
				},
				{
					Name:        "clear",
					Description: "Remove all your drafts",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "publish",
					Description: "Publish a draft to Farcaster",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options:     []*discordgo.ApplicationCommandOption{numberOption("Draft number from /cast list")},
				},
				{
					Name:        "resolve",
					Description: "Look up the mentions in a draft",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options:     []*discordgo.ApplicationCommandOption{numberOption("Draft number from /cast list")},
				},
				{
					Name:        "template",
					Description: "Start a draft from a template",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "name",
							Description: "Which template",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Welcome", Value: "welcome"},
								{Name: "Feedback", Value: "feedback"},
							},
						},
					},
				},
				{
					Name:        "account",
					Description: "Show or switch the account you publish under",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "fid",
							Description: "Switch to this FID (read-only)",
							Type:        discordgo.ApplicationCommandOptionInteger,
						},
						{
							Name:        "name",
							Description: "Handle of that FID",
							Type:        discordgo.ApplicationCommandOptionString,
						},
					},
				},
			},
		},
	}
}

// RegisterCommands registers every slash command. An empty guildID
// registers global commands.
func RegisterCommands(s CommandCreator, appID, guildID string, logger *zap.Logger) error {
	for _, cmd := range Commands() {
		if _, err := s.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
			return fmt.Errorf("failed to create command %s: %w", cmd.Name, err)
		}
		logger.Info("registered command", zap.String("command", cmd.Name), zap.String("guild", guildID))
	}
	return nil
}
