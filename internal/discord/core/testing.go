package core

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// TestInteraction builds InteractionContexts for handler tests
type TestInteraction struct {
	userID string
	params map[string]any
}

// NewTestInteraction starts a test interaction from the given user
func NewTestInteraction(userID string) *TestInteraction {
	return &TestInteraction{
		userID: userID,
		params: make(map[string]any),
	}
}

// WithParam sets a command option or modal field
func (t *TestInteraction) WithParam(key string, value any) *TestInteraction {
	t.params[key] = value
	return t
}

func (t *TestInteraction) build(i *discordgo.Interaction, responder InteractionResponder) *InteractionContext {
	i.Member = &discordgo.Member{User: &discordgo.User{ID: t.userID}}
	i.GuildID = "test-guild"
	i.ChannelID = "test-channel"

	ic := NewInteractionContext(context.Background(), &discordgo.InteractionCreate{Interaction: i}, responder)
	for k, v := range t.params {
		ic.params[k] = v
	}
	return ic
}

// Command simulates /name subcommand
func (t *TestInteraction) Command(name, subcommand string, responder InteractionResponder) *InteractionContext {
	t.params["subcommand"] = subcommand
	return t.build(&discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: name},
	}, responder)
}

// Component simulates a click on a component with customID
func (t *TestInteraction) Component(customID string, responder InteractionResponder) *InteractionContext {
	return t.build(&discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: customID},
	}, responder)
}

// Modal simulates submitting the modal customID with the params as fields
func (t *TestInteraction) Modal(customID string, responder InteractionResponder) *InteractionContext {
	return t.build(&discordgo.Interaction{
		Type: discordgo.InteractionModalSubmit,
		Data: discordgo.ModalSubmitInteractionData{CustomID: customID},
	}, responder)
}

// MockResponder records responses instead of calling Discord
type MockResponder struct {
	DeferCalls []bool
	Responses  []*Response
	Edits      []*Response
	Modals     []*Modal

	DeferError   error
	RespondError error
	EditError    error

	Deferred  bool
	Responded bool
}

// NewMockResponder creates a new mock responder
func NewMockResponder() *MockResponder {
	return &MockResponder{}
}

func (m *MockResponder) Defer(ephemeral bool) error {
	m.DeferCalls = append(m.DeferCalls, ephemeral)
	if m.DeferError != nil {
		return m.DeferError
	}
	m.Deferred = true
	m.Responded = true
	return nil
}

func (m *MockResponder) Respond(response *Response) error {
	if m.Responded {
		return m.Edit(response)
	}
	m.Responses = append(m.Responses, response)
	if m.RespondError != nil {
		return m.RespondError
	}
	m.Responded = true
	return nil
}

func (m *MockResponder) Edit(response *Response) error {
	m.Edits = append(m.Edits, response)
	return m.EditError
}

func (m *MockResponder) ShowModal(modal *Modal) error {
	if m.Responded {
		return ErrAlreadyResponded
	}
	m.Modals = append(m.Modals, modal)
	m.Responded = true
	return nil
}

func (m *MockResponder) HasResponded() bool {
	return m.Responded
}

func (m *MockResponder) IsDeferred() bool {
	return m.Deferred
}

// LastResponse returns the last response sent or edited in
func (m *MockResponder) LastResponse() *Response {
	if len(m.Edits) > 0 {
		return m.Edits[len(m.Edits)-1]
	}
	if len(m.Responses) > 0 {
		return m.Responses[len(m.Responses)-1]
	}
	return nil
}
