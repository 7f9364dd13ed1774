package middleware

import (
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/core"
)

// DeferConfig configures the defer middleware
type DeferConfig struct {
	// AlwaysDefer forces a deferred response for every interaction
	AlwaysDefer bool

	// Ephemeral makes deferred responses ephemeral
	Ephemeral bool

	// DeferAfter defers if the handler has not returned within this duration.
	// Zero disables the timer.
	DeferAfter time.Duration

	// SkipDeferFor lists domains/actions that respond on their own, such as
	// buttons that open a modal
	SkipDeferFor []DeferSkipRule

	Logger *zap.Logger
}

// DeferSkipRule defines when to skip deferring. Action "*" matches any action.
type DeferSkipRule struct {
	Domain string
	Action string
}

// DefaultDeferConfig defers after 2s, Discord drops interactions unanswered after 3s
func DefaultDeferConfig() *DeferConfig {
	return &DeferConfig{
		DeferAfter: 2 * time.Second,
	}
}

// DeferMiddleware handles Discord's 3 second response requirement
func DeferMiddleware(config *DeferConfig) core.Middleware {
	if config == nil {
		config = DefaultDeferConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			responder := ctx.Responder
			if responder == nil || shouldSkipDefer(ctx, config) {
				return next.Handle(ctx)
			}

			if config.AlwaysDefer {
				if err := responder.Defer(config.Ephemeral); err != nil {
					logger.Warn("failed to defer interaction", zap.String("interaction", ctx.Describe()), zap.Error(err))
				}
				result, err := next.Handle(ctx)
				if result != nil {
					result.Deferred = true
				}
				return result, err
			}

			if config.DeferAfter <= 0 {
				return next.Handle(ctx)
			}

			type handlerResponse struct {
				result *core.HandlerResult
				err    error
			}
			responseChan := make(chan handlerResponse, 1)

			go func() {
				var resp handlerResponse
				defer func() {
					if r := recover(); r != nil {
						resp = handlerResponse{err: core.NewUserError(core.DefaultUserMessage, core.ErrorCodeInternal)}
						logger.Error("panic in deferred handler", zap.Any("panic", r), zap.Stack("stack"))
					}
					responseChan <- resp
				}()
				resp.result, resp.err = next.Handle(ctx)
			}()

			timer := time.NewTimer(config.DeferAfter)
			defer timer.Stop()

			select {
			case resp := <-responseChan:
				return resp.result, resp.err

			case <-timer.C:
				ephemeral := config.Ephemeral || ctx.IsComponent()
				if err := responder.Defer(ephemeral); err != nil {
					logger.Warn("failed to defer interaction after timeout", zap.String("interaction", ctx.Describe()), zap.Error(err))
				}

				resp := <-responseChan
				if resp.result != nil {
					resp.result.Deferred = true
				}
				return resp.result, resp.err
			}
		})
	}
}

// shouldSkipDefer checks if defer should be skipped for this interaction
func shouldSkipDefer(ctx *core.InteractionContext, config *DeferConfig) bool {
	if ctx.IsComponent() || ctx.IsModal() {
		customID, err := core.ParseCustomID(ctx.GetCustomID())
		if err == nil {
			for _, rule := range config.SkipDeferFor {
				if rule.Domain == customID.Domain &&
					(rule.Action == "*" || rule.Action == customID.Action) {
					return true
				}
			}
		}
	}

	if ctx.IsCommand() {
		name, sub := ctx.GetCommandName(), ctx.GetSubcommand()
		for _, rule := range config.SkipDeferFor {
			if rule.Domain == name && (rule.Action == "*" || rule.Action == sub) {
				return true
			}
		}
	}

	return false
}

// AlwaysDeferMiddleware is a simple middleware that always defers
func AlwaysDeferMiddleware(ephemeral bool) core.Middleware {
	return DeferMiddleware(&DeferConfig{
		AlwaysDefer: true,
		Ephemeral:   ephemeral,
	})
}

// SmartDeferMiddleware defers after 2 seconds if the handler hasn't returned
func SmartDeferMiddleware(logger *zap.Logger, skip ...DeferSkipRule) core.Middleware {
	cfg := DefaultDeferConfig()
	cfg.Logger = logger
	cfg.SkipDeferFor = skip
	return DeferMiddleware(cfg)
}
