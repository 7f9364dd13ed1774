package middleware

import (
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/core"
)

// LoggingMiddleware logs each interaction with its duration
func LoggingMiddleware(logger *zap.Logger) core.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("discord")

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			start := time.Now()
			result, err := next.Handle(ctx)

			fields := []zap.Field{
				zap.String("interaction", ctx.Describe()),
				zap.String("kind", ctx.Kind()),
				zap.String("user", ctx.UserID),
				zap.String("guild", ctx.GuildID),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("interaction failed", append(fields, zap.Error(err))...)
			} else {
				logger.Info("interaction handled", fields...)
			}

			return result, err
		})
	}
}

// MetricsCollector records interaction outcomes
type MetricsCollector interface {
	ObserveInteraction(kind, name string, duration time.Duration, failed bool)
}

// MetricsMiddleware tracks handler counts and latency. Place it inside
// ErrorMiddleware to see failures.
func MetricsMiddleware(collector MetricsCollector) core.Middleware {
	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			start := time.Now()
			result, err := next.Handle(ctx)
			collector.ObserveInteraction(ctx.Kind(), ctx.Describe(), time.Since(start), err != nil)
			return result, err
		})
	}
}
