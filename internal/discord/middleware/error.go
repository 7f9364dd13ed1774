package middleware

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/core"
)

// ErrorMiddleware turns handler errors into ephemeral responses so they never
// reach the pipeline. Errors without a user message are logged.
func ErrorMiddleware(logger *zap.Logger) core.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			result, err := next.Handle(ctx)
			if err == nil {
				return result, nil
			}

			he := core.FromError(err)
			if he.Code >= core.ErrorCodeInternal {
				logger.Error("handler failed",
					zap.String("interaction", ctx.Describe()),
					zap.String("user", ctx.UserID),
					zap.Error(err))
			}

			return &core.HandlerResult{
				Response: core.NewEphemeralResponse(core.UserMessage(err)),
			}, nil
		})
	}
}

// RecoveryMiddleware recovers from panics in handlers
func RecoveryMiddleware(logger *zap.Logger) core.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (result *core.HandlerResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic in handler",
						zap.String("interaction", ctx.Describe()),
						zap.Any("panic", r),
						zap.Stack("stack"))

					result = nil
					err = fmt.Errorf("panic: %v", r)
				}
			}()

			return next.Handle(ctx)
		})
	}
}
