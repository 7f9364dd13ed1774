package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/KirkDiggler/farcaster-bot-discord/internal/errors"
)

func newCastRouter(p *Pipeline, calls *[]string) *Router {
	record := func(name string, resp *Response, err error) HandlerFunc {
		return func(*InteractionContext) (*HandlerResult, error) {
			*calls = append(*calls, name)
			if err != nil {
				return nil, err
			}
			return &HandlerResult{Response: resp}, nil
		}
	}

	r := NewRouter("cast", p)
	r.Subcommand("new", record("new", NewEphemeralResponse("created"), nil))
	r.Subcommand("publish", record("publish", nil, apperr.Refusedf("cast is empty")))
	r.Subcommand("boom", record("boom", nil, errors.New("redis: connection refused")))
	r.Component("remove", record("remove", NewResponse("removed").AsUpdate(), nil))
	r.Handle("modal:*", record("any-modal", NewEphemeralResponse("saved"), nil))
	return r
}

func TestPipeline_RoutesCommands(t *testing.T) {
	p := NewPipeline(nil)
	var calls []string
	newCastRouter(p, &calls).Register()
	require.Equal(t, 1, p.HandlerCount())

	responder := NewMockResponder()
	require.NoError(t, p.Dispatch(NewTestInteraction("u1").Command("cast", "new", responder)))

	assert.Equal(t, []string{"new"}, calls)
	require.Len(t, responder.Responses, 1)
	assert.Equal(t, "created", responder.Responses[0].Content)
}

func TestPipeline_RoutesComponentsAndWildcards(t *testing.T) {
	p := NewPipeline(nil)
	var calls []string
	newCastRouter(p, &calls).Register()

	responder := NewMockResponder()
	require.NoError(t, p.Dispatch(NewTestInteraction("u1").Component("cast:remove:d1", responder)))
	assert.True(t, responder.LastResponse().Update)

	require.NoError(t, p.Dispatch(NewTestInteraction("u1").Modal("cast:save:d1", NewMockResponder())))

	// Another domain's components are not ours
	other := NewMockResponder()
	require.NoError(t, p.Dispatch(NewTestInteraction("u1").Component("dnd:remove:d1", other)))
	assert.Contains(t, other.LastResponse().Content, "don't know how to handle")

	assert.Equal(t, []string{"remove", "any-modal"}, calls)
}

func TestPipeline_ErrorsBecomeResponses(t *testing.T) {
	p := NewPipeline(nil)
	var calls []string
	newCastRouter(p, &calls).Register()

	refused := NewMockResponder()
	require.NoError(t, p.Dispatch(NewTestInteraction("u1").Command("cast", "publish", refused)))
	assert.Equal(t, "❌ cast is empty", refused.LastResponse().Content)
	assert.True(t, refused.LastResponse().Ephemeral)

	internal := NewMockResponder()
	require.NoError(t, p.Dispatch(NewTestInteraction("u1").Command("cast", "boom", internal)))
	assert.Equal(t, "❌ "+DefaultUserMessage, internal.LastResponse().Content)
}

func TestPipeline_DeferredResultsEdit(t *testing.T) {
	p := NewPipeline(nil)
	r := NewRouter("cast", p)
	r.SubcommandFunc("publish", func(ctx *InteractionContext) (*HandlerResult, error) {
		require.NoError(t, ctx.Responder.Defer(true))
		return Respond(NewResponse("published"))
	})
	r.Register()

	responder := NewMockResponder()
	require.NoError(t, p.Dispatch(NewTestInteraction("u1").Command("cast", "publish", responder)))

	assert.Equal(t, []bool{true}, responder.DeferCalls)
	assert.Empty(t, responder.Responses)
	require.Len(t, responder.Edits, 1)
	assert.Equal(t, "published", responder.Edits[0].Content)
}

func TestPipeline_MiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next Handler) Handler {
			return HandlerFunc(func(ctx *InteractionContext) (*HandlerResult, error) {
				order = append(order, name)
				return next.Handle(ctx)
			})
		}
	}

	p := NewPipeline(nil)
	p.Use(tag("outer"), tag("inner"))
	r := NewRouter("cast", p).Use(tag("router"))
	r.SubcommandFunc("list", func(*InteractionContext) (*HandlerResult, error) {
		order = append(order, "handler")
		return nil, nil
	})
	r.Register()

	require.NoError(t, p.Dispatch(NewTestInteraction("u1").Command("cast", "list", NewMockResponder())))
	assert.Equal(t, []string{"outer", "inner", "router", "handler"}, order)
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"refusal", apperr.Refused("too long"), ErrorCodeBadRequest, "too long"},
		{"not found", apperr.NotFound("no draft"), ErrorCodeNotFound, "no draft"},
		{"conflict", apperr.Conflictf("busy"), ErrorCodeConflict, "busy"},
		{"delivery", apperr.DeliveryFailedf("hub down"), ErrorCodeUnavailable, "hub down"},
		{"plain", errors.New("secret internals"), ErrorCodeInternal, DefaultUserMessage},
		{"handler error", NewForbiddenError("nope"), ErrorCodeForbidden, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := FromError(tt.err)
			assert.Equal(t, tt.code, he.Code)
			assert.Equal(t, tt.message, he.UserMessage)
		})
	}
}

func TestPipeline_MiddlewareKeepsRouting(t *testing.T) {
	p := NewPipeline(nil)
	p.Use(func(next Handler) Handler {
		return HandlerFunc(next.Handle)
	})

	var calls []string
	other := NewRouter("feed", p)
	other.SubcommandFunc("list", func(*InteractionContext) (*HandlerResult, error) {
		calls = append(calls, "feed")
		return nil, nil
	})
	other.Register()
	newCastRouter(p, &calls).Register()

	require.NoError(t, p.Dispatch(NewTestInteraction("u1").Command("cast", "new", NewMockResponder())))
	assert.Equal(t, []string{"new"}, calls)
}
