package core

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	err       error
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	if f.err != nil {
		return f.err
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func interaction(t discordgo.InteractionType) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{Type: t}}
}

func TestDiscordResponder_RespondThenEdit(t *testing.T) {
	s := &fakeSession{}
	r := NewDiscordResponder(s, interaction(discordgo.InteractionApplicationCommand))

	require.NoError(t, r.Respond(NewEphemeralResponse("hello @everyone")))
	require.Len(t, s.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, s.responses[0].Type)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, s.responses[0].Data.Flags)
	assert.Empty(t, s.responses[0].Data.AllowedMentions.Parse)

	// A second Respond edits the original
	require.NoError(t, r.Respond(NewResponse("updated")))
	require.Len(t, s.edits, 1)
	assert.Equal(t, "updated", *s.edits[0].Content)
	assert.NotNil(t, s.edits[0].Components)
}

func TestDiscordResponder_DeferComponent(t *testing.T) {
	s := &fakeSession{}
	r := NewDiscordResponder(s, interaction(discordgo.InteractionMessageComponent))

	require.NoError(t, r.Defer(true))
	assert.True(t, r.IsDeferred())
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, s.responses[0].Type)

	assert.ErrorIs(t, r.Defer(true), ErrAlreadyResponded)
}

func TestDiscordResponder_UpdateMessage(t *testing.T) {
	s := &fakeSession{}
	r := NewDiscordResponder(s, interaction(discordgo.InteractionMessageComponent))

	require.NoError(t, r.Respond(NewResponse("removed").AsUpdate()))
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, s.responses[0].Type)
}

func TestDiscordResponder_ShowModal(t *testing.T) {
	s := &fakeSession{}
	r := NewDiscordResponder(s, interaction(discordgo.InteractionMessageComponent))

	require.NoError(t, r.ShowModal(&Modal{
		CustomID: "cast:save:d1",
		Title:    "Edit draft",
		Inputs:   []discordgo.TextInput{{CustomID: "text", Label: "Text", Style: discordgo.TextInputParagraph}},
	}))

	resp := s.responses[0]
	assert.Equal(t, discordgo.InteractionResponseModal, resp.Type)
	assert.Equal(t, "cast:save:d1", resp.Data.CustomID)
	assert.Len(t, resp.Data.Components, 1)
	assert.True(t, r.HasResponded())
}

func TestDiscordResponder_FailedRespondCanRetry(t *testing.T) {
	s := &fakeSession{err: errors.New("unknown interaction")}
	r := NewDiscordResponder(s, interaction(discordgo.InteractionApplicationCommand))

	assert.Error(t, r.Respond(NewResponse("hi")))
	assert.False(t, r.HasResponded())
	assert.Error(t, r.Edit(NewResponse("hi")))
}
