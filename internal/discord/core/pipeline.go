package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Middleware is a function that wraps a handler
type Middleware func(Handler) Handler

// ErrorHandler turns an uncaught handler error into a response
type ErrorHandler func(ctx *InteractionContext, err error) *HandlerResult

// Pipeline manages handler registration and execution
type Pipeline struct {
	handlers     []Handler
	middleware   []Middleware
	errorHandler ErrorHandler
	logger       *zap.Logger

	mu sync.RWMutex
}

// NewPipeline creates a new handler pipeline. A nil logger disables logging.
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		errorHandler: defaultErrorHandler,
		logger:       logger.Named("pipeline"),
	}
}

// Register adds handlers wrapped in the pipeline middleware registered so far
func (p *Pipeline) Register(handlers ...Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	chain := MiddlewareChain(p.middleware...)
	for _, h := range handlers {
		p.handlers = append(p.handlers, &wrappedHandler{match: h, run: chain(h)})
	}
}

// wrappedHandler keeps the inner handler's CanHandle; middleware
// returns HandlerFuncs that accept everything
type wrappedHandler struct {
	match Handler
	run   Handler
}

func (w *wrappedHandler) CanHandle(ctx *InteractionContext) bool {
	return w.match.CanHandle(ctx)
}

func (w *wrappedHandler) Handle(ctx *InteractionContext) (*HandlerResult, error) {
	return w.run.Handle(ctx)
}

// Use adds middleware to the pipeline
func (p *Pipeline) Use(middleware ...Middleware) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.middleware = append(p.middleware, middleware...)
}

// SetErrorHandler sets a custom error handler
func (p *Pipeline) SetErrorHandler(handler ErrorHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errorHandler = handler
}

// Execute runs the pipeline for an interaction received on a Discord session
func (p *Pipeline) Execute(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	return p.Dispatch(NewInteractionContext(ctx, i, NewDiscordResponder(s, i)))
}

// Dispatch runs the first handler that can handle ic and sends its response
func (p *Pipeline) Dispatch(ic *InteractionContext) error {
	p.mu.RLock()
	handlers := make([]Handler, len(p.handlers))
	copy(handlers, p.handlers)
	errorHandler := p.errorHandler
	p.mu.RUnlock()

	for _, handler := range handlers {
		if !handler.CanHandle(ic) {
			continue
		}

		result, err := handler.Handle(ic)
		if err != nil {
			result = errorHandler(ic, err)
		}

		if result != nil && result.Response != nil {
			if err := sendResponse(ic.Responder, result); err != nil {
				return fmt.Errorf("failed to send response: %w", err)
			}
		}
		return nil
	}

	p.logger.Debug("no handler for interaction", zap.String("interaction", ic.Describe()))
	if ic.Responder.HasResponded() {
		return nil
	}
	return ic.Responder.Respond(NewEphemeralResponse("I don't know how to handle that command."))
}

func sendResponse(responder InteractionResponder, result *HandlerResult) error {
	if result.Deferred || responder.IsDeferred() {
		return responder.Edit(result.Response)
	}
	return responder.Respond(result.Response)
}

// HandlerCount returns the number of registered handlers
func (p *Pipeline) HandlerCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.handlers)
}

func defaultErrorHandler(_ *InteractionContext, err error) *HandlerResult {
	return &HandlerResult{
		Response: NewEphemeralResponse(UserMessage(err)),
	}
}

// MiddlewareChain creates a single middleware from multiple middleware; the
// first one listed runs outermost
func MiddlewareChain(middleware ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(middleware) - 1; i >= 0; i-- {
			next = middleware[i](next)
		}
		return next
	}
}
