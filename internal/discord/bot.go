// Package discord wires the interaction pipeline to a Discord session.
package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/core"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/middleware"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/routers"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services"
)

// Interactions get this long before their context is cancelled
const interactionTimeout = 30 * time.Second

// BotConfig holds what the Discord layer needs
type BotConfig struct {
	Provider *services.Provider // Required

	PublisherRoles []string
	PublisherUsers []string

	// UserRateLimit caps interactions per user per minute; zero disables it
	UserRateLimit int
	// RateLimitStore shares limits across replicas, in-memory when nil
	RateLimitStore middleware.RateLimitStore

	Logger *zap.Logger
}

// Bot routes Discord interactions through the pipeline
type Bot struct {
	pipeline *core.Pipeline
	logger   *zap.Logger
}

// NewBot builds the pipeline with global middleware and the /cast router
func NewBot(cfg *BotConfig) (*Bot, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := cfg.Provider

	pipeline := core.NewPipeline(logger)

	// Global middleware runs outermost first
	global := []core.Middleware{
		middleware.ErrorMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	}
	if provider.Metrics != nil {
		global = append(global, middleware.MetricsMiddleware(provider.Metrics))
	}
	if cfg.UserRateLimit > 0 {
		global = append(global, middleware.UserRateLimitMiddleware(cfg.UserRateLimit, time.Minute, cfg.RateLimitStore))
	}
	global = append(global, middleware.RecoveryMiddleware(logger))
	pipeline.Use(global...)

	if _, err := routers.NewCastRouter(pipeline, &routers.CastRouterConfig{
		Drafts:         provider.Drafts,
		Accounts:       provider.Accounts,
		Resolver:       provider.Resolver,
		FeedbackHandle: provider.FeedbackHandle,
		FeedbackFID:    provider.FeedbackFID,
		PublisherRoles: cfg.PublisherRoles,
		PublisherUsers: cfg.PublisherUsers,
		RateLimitStore: cfg.RateLimitStore,
		Logger:         logger,
	}); err != nil {
		return nil, err
	}

	return &Bot{pipeline: pipeline, logger: logger}, nil
}

// Pipeline returns the interaction pipeline
func (b *Bot) Pipeline() *core.Pipeline {
	return b.pipeline
}

// HandleInteraction is registered with discordgo.Session.AddHandler
func (b *Bot) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	if err := b.pipeline.Execute(ctx, s, i); err != nil {
		b.logger.Error("failed to handle interaction", zap.String("interaction", i.ID), zap.Error(err))
	}
}
