// Package routers binds handlers to commands, buttons and modals.
package routers

import (
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/core"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/handlers"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/middleware"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/repositories/accounts"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/drafts"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/formatter"
)

// CastDomain is the /cast command name and the custom ID domain of its buttons
const CastDomain = "cast"

// CastRouterConfig holds what the /cast router needs
type CastRouterConfig struct {
	Drafts   *drafts.Registry    // Required
	Accounts accounts.Repository // Required
	Resolver formatter.Resolver  // Required

	FeedbackHandle string
	FeedbackFID    uint64

	// PublisherRoles restricts publishing; empty lets everyone publish
	PublisherRoles []string
	PublisherUsers []string

	// RateLimitStore backs the publish limit, in-memory when nil
	RateLimitStore middleware.RateLimitStore

	Logger *zap.Logger
}

// CastRouter handles all /cast interactions
type CastRouter struct {
	router  *core.Router
	handler *handlers.CastHandler
}

// NewCastRouter builds the /cast routes and registers them with the pipeline
func NewCastRouter(pipeline *core.Pipeline, cfg *CastRouterConfig) (*CastRouter, error) {
	router := core.NewRouter(CastDomain, pipeline)

	handler, err := handlers.NewCastHandler(&handlers.CastHandlerConfig{
		Drafts:         cfg.Drafts,
		Accounts:       cfg.Accounts,
		Resolver:       cfg.Resolver,
		IDs:            router.CustomIDs(),
		FeedbackHandle: cfg.FeedbackHandle,
		FeedbackFID:    cfg.FeedbackFID,
		Logger:         cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	cr := &CastRouter{router: router, handler: handler}

	// Drafting routes
	router.SubcommandFunc("new", handler.HandleNew).
		SubcommandFunc("list", handler.HandleList).
		SubcommandFunc("show", handler.HandleShow).
		SubcommandFunc("edit", handler.HandleEdit).
		SubcommandFunc("remove", handler.HandleRemove).
		SubcommandFunc("clear", handler.HandleClear).
		SubcommandFunc("template", handler.HandleTemplate).
		SubcommandFunc("account", handler.HandleAccount).
		ComponentFunc("edit", handler.HandleEditButton).
		ComponentFunc("remove", handler.HandleRemoveButton).
		ModalFunc("save", handler.HandleSaveModal)

	// Routes that leave the process can be slow and get their own limits
	router.Use(
		middleware.SmartDeferMiddleware(cfg.Logger),
		middleware.ActionRateLimitMiddleware(5, time.Minute, cfg.RateLimitStore),
	)
	router.SubcommandFunc("resolve", handler.HandleResolve)

	router.Use(middleware.PublisherOnlyMiddleware(cfg.PublisherRoles, cfg.PublisherUsers))
	router.SubcommandFunc("publish", handler.HandlePublish).
		ComponentFunc("publish", handler.HandlePublishButton)

	router.Register()
	return cr, nil
}

// Handler exposes the underlying handler for tests
func (r *CastRouter) Handler() *handlers.CastHandler {
	return r.handler
}
