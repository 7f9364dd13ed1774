package core

import (
	"fmt"
	"strings"
)

// Router manages handlers for one slash command and its components
type Router struct {
	// domain is both the command name and the custom ID domain
	domain string

	handlers map[string]Handler

	middleware []Middleware

	customIDBuilder *CustomIDBuilder

	pipeline *Pipeline
}

// NewRouter creates a new domain router
func NewRouter(domain string, pipeline *Pipeline) *Router {
	return &Router{
		domain:          domain,
		handlers:        make(map[string]Handler),
		customIDBuilder: NewCustomIDBuilder(domain),
		pipeline:        pipeline,
	}
}

// Use adds middleware to handlers registered after this call
func (r *Router) Use(middleware ...Middleware) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Handle registers a handler for a pattern such as "cmd:cast:new"
func (r *Router) Handle(pattern string, handler Handler) *Router {
	r.handlers[pattern] = MiddlewareChain(r.middleware...)(handler)
	return r
}

// Subcommand registers a handler for /domain sub
func (r *Router) Subcommand(sub string, handler Handler) *Router {
	return r.Handle(fmt.Sprintf("cmd:%s:%s", r.domain, sub), handler)
}

// SubcommandFunc registers a subcommand handler function
func (r *Router) SubcommandFunc(sub string, fn func(*InteractionContext) (*HandlerResult, error)) *Router {
	return r.Subcommand(sub, HandlerFunc(fn))
}

// Component registers a component interaction handler
func (r *Router) Component(action string, handler Handler) *Router {
	return r.Handle(fmt.Sprintf("component:%s", action), handler)
}

// ComponentFunc registers a component interaction handler function
func (r *Router) ComponentFunc(action string, fn func(*InteractionContext) (*HandlerResult, error)) *Router {
	return r.Component(action, HandlerFunc(fn))
}

// Modal registers a modal submit handler
func (r *Router) Modal(action string, handler Handler) *Router {
	return r.Handle(fmt.Sprintf("modal:%s", action), handler)
}

// ModalFunc registers a modal submit handler function
func (r *Router) ModalFunc(action string, fn func(*InteractionContext) (*HandlerResult, error)) *Router {
	return r.Modal(action, HandlerFunc(fn))
}

// Build creates a single handler from all registered routes
func (r *Router) Build() Handler {
	return &routerHandler{
		domain:   r.domain,
		handlers: r.handlers,
	}
}

// Register registers this router with the pipeline
func (r *Router) Register() {
	if r.pipeline != nil {
		r.pipeline.Register(r.Build())
	}
}

// CustomIDs returns the custom ID builder for this router's domain
func (r *Router) CustomIDs() *CustomIDBuilder {
	return r.customIDBuilder
}

type routerHandler struct {
	domain   string
	handlers map[string]Handler
}

func (h *routerHandler) CanHandle(ctx *InteractionContext) bool {
	return h.lookup(ctx) != nil
}

func (h *routerHandler) Handle(ctx *InteractionContext) (*HandlerResult, error) {
	handler := h.lookup(ctx)
	if handler == nil {
		return nil, NewNotFoundError("handler")
	}
	return handler.Handle(ctx)
}

// lookup tries the exact pattern, then wildcards from most to least specific
func (h *routerHandler) lookup(ctx *InteractionContext) Handler {
	pattern := h.extractPattern(ctx)
	if pattern == "" {
		return nil
	}
	if handler, ok := h.handlers[pattern]; ok {
		return handler
	}

	parts := strings.Split(pattern, ":")
	for i := len(parts); i > 0; i-- {
		if handler, ok := h.handlers[strings.Join(parts[:i], ":")+":*"]; ok {
			return handler
		}
	}
	return nil
}

func (h *routerHandler) extractPattern(ctx *InteractionContext) string {
	if ctx.IsCommand() {
		if ctx.GetCommandName() != h.domain {
			return ""
		}
		if sub := ctx.GetSubcommand(); sub != "" {
			return fmt.Sprintf("cmd:%s:%s", h.domain, sub)
		}
		return fmt.Sprintf("cmd:%s", h.domain)
	}

	customID, err := ParseCustomID(ctx.GetCustomID())
	if err != nil || customID.Domain != h.domain {
		return ""
	}

	switch {
	case ctx.IsComponent():
		return fmt.Sprintf("component:%s", customID.Action)
	case ctx.IsModal():
		return fmt.Sprintf("modal:%s", customID.Action)
	}
	return ""
}
