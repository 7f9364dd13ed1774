package core

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// ErrAlreadyResponded is returned when an interaction gets a second initial response
var ErrAlreadyResponded = errors.New("interaction already responded to")

// InteractionResponder provides an abstraction over Discord's interaction response API
type InteractionResponder interface {
	// Defer acknowledges the interaction so the handler can take longer than 3s
	Defer(ephemeral bool) error

	// Respond sends the initial response, or edits it after a defer
	Respond(response *Response) error

	// Edit updates a previous response
	Edit(response *Response) error

	// ShowModal answers the interaction with a modal dialog
	ShowModal(modal *Modal) error

	HasResponded() bool
	IsDeferred() bool
}

// Modal is a dialog with text inputs
type Modal struct {
	CustomID string
	Title    string
	Inputs   []discordgo.TextInput
}

// Session is the subset of *discordgo.Session the responder uses
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// noMentions keeps draft text like "@everyone" from pinging anyone
var noMentions = &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}

// DiscordResponder implements InteractionResponder using Discord's API
type DiscordResponder struct {
	session     Session
	interaction *discordgo.InteractionCreate
	responded   bool
	deferred    bool
}

// NewDiscordResponder creates a new Discord responder
func NewDiscordResponder(s Session, i *discordgo.InteractionCreate) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

// Defer sends a deferred response. Component interactions defer as an
// update of the clicked message.
func (r *DiscordResponder) Defer(ephemeral bool) error {
	if r.responded {
		return ErrAlreadyResponded
	}

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if r.interaction.Type == discordgo.InteractionMessageComponent {
		resp.Type = discordgo.InteractionResponseDeferredMessageUpdate
	} else if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}

	if err := r.session.InteractionRespond(r.interaction.Interaction, resp); err != nil {
		return err
	}
	r.deferred = true
	r.responded = true
	return nil
}

// Respond sends an immediate response
func (r *DiscordResponder) Respond(response *Response) error {
	if r.responded {
		return r.Edit(response)
	}

	respType := discordgo.InteractionResponseChannelMessageWithSource
	if response.Update && r.interaction.Type == discordgo.InteractionMessageComponent {
		respType = discordgo.InteractionResponseUpdateMessage
	}

	data := &discordgo.InteractionResponseData{
		Content:         response.Content,
		Embeds:          response.Embeds,
		Components:      response.Components,
		AllowedMentions: noMentions,
	}
	if response.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	if err := r.session.InteractionRespond(r.interaction.Interaction, &discordgo.InteractionResponse{
		Type: respType,
		Data: data,
	}); err != nil {
		return err
	}
	r.responded = true
	return nil
}

// Edit updates a previous response
func (r *DiscordResponder) Edit(response *Response) error {
	if !r.responded {
		return errors.New("cannot edit before responding")
	}

	embeds := response.Embeds
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	components := response.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}

	_, err := r.session.InteractionResponseEdit(r.interaction.Interaction, &discordgo.WebhookEdit{
		Content:         &response.Content,
		Embeds:          &embeds,
		Components:      &components,
		AllowedMentions: noMentions,
	})
	return err
}

// ShowModal answers with a modal; it must be the initial response
func (r *DiscordResponder) ShowModal(modal *Modal) error {
	if r.responded {
		return ErrAlreadyResponded
	}

	rows := make([]discordgo.MessageComponent, 0, len(modal.Inputs))
	for _, input := range modal.Inputs {
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{input}})
	}

	if err := r.session.InteractionRespond(r.interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   modal.CustomID,
			Title:      modal.Title,
			Components: rows,
		},
	}); err != nil {
		return err
	}
	r.responded = true
	return nil
}

// HasResponded returns whether this responder has already sent a response
func (r *DiscordResponder) HasResponded() bool {
	return r.responded
}

// IsDeferred returns whether this responder has sent a deferred response
func (r *DiscordResponder) IsDeferred() bool {
	return r.deferred
}
