package middleware

import (
	"slices"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/core"
)

// AuthConfig configures authorization behavior
type AuthConfig struct {
	// RequireGuildMember rejects interactions from DMs
	RequireGuildMember bool

	// RequiredRoles lists role IDs the member needs (any of)
	RequiredRoles []string

	// UserAllowlist passes specific users regardless of roles
	UserAllowlist []string

	// UserBlocklist blocks specific users
	UserBlocklist []string

	// Applies limits the check to some interactions; nil checks everything
	Applies func(*core.InteractionContext) bool
}

// AuthorizationMiddleware checks if the user may run the interaction
func AuthorizationMiddleware(config *AuthConfig) core.Middleware {
	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			if config.Applies != nil && !config.Applies(ctx) {
				return next.Handle(ctx)
			}

			if slices.Contains(config.UserBlocklist, ctx.UserID) {
				return nil, core.NewForbiddenError("You are not allowed to do that.")
			}

			if slices.Contains(config.UserAllowlist, ctx.UserID) {
				return next.Handle(ctx)
			}

			if config.RequireGuildMember && ctx.GuildID == "" {
				return nil, core.NewForbiddenError("This only works inside a server.")
			}

			if len(config.RequiredRoles) > 0 && !hasRequiredRole(ctx, config.RequiredRoles) {
				return nil, core.NewForbiddenError("You don't have a role that can do that.")
			}

			return next.Handle(ctx)
		})
	}
}

// PublisherOnlyMiddleware restricts publishing to members holding one of roleIDs.
// With no roles configured anyone may publish.
func PublisherOnlyMiddleware(roleIDs []string, allowUsers []string) core.Middleware {
	if len(roleIDs) == 0 {
		return func(next core.Handler) core.Handler { return next }
	}

	return AuthorizationMiddleware(&AuthConfig{
		RequireGuildMember: true,
		RequiredRoles:      roleIDs,
		UserAllowlist:      allowUsers,
		Applies:            isPublishInteraction,
	})
}

func isPublishInteraction(ctx *core.InteractionContext) bool {
	if ctx.IsCommand() {
		return ctx.GetSubcommand() == "publish"
	}
	if ctx.IsComponent() {
		id, err := core.ParseCustomID(ctx.GetCustomID())
		return err == nil && id.Action == "publish"
	}
	return false
}

func hasRequiredRole(ctx *core.InteractionContext, roles []string) bool {
	if ctx.Member == nil {
		return false
	}
	for _, role := range ctx.Member.Roles {
		if slices.Contains(roles, role) {
			return true
		}
	}
	return false
}
