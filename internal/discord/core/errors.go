package core

import (
	"errors"
	"fmt"

	apperr "github.com/KirkDiggler/farcaster-bot-discord/internal/errors"
)

// HandlerError represents an error that occurred during handler execution
type HandlerError struct {
	Err error

	// UserMessage is what the user sees
	UserMessage string

	// Code is an HTTP-like status for categorization
	Code int
}

// Error implements the error interface
func (e *HandlerError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMessage
}

// Unwrap returns the underlying error
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrorCodeBadRequest  = 400
	ErrorCodeForbidden   = 403
	ErrorCodeNotFound    = 404
	ErrorCodeConflict    = 409
	ErrorCodeInternal    = 500
	ErrorCodeUnavailable = 503
)

// DefaultUserMessage is shown for errors that carry nothing safe to display
const DefaultUserMessage = "An error occurred while processing your request."

// NewUserError creates an error with a user-friendly message
func NewUserError(message string, code int) *HandlerError {
	return &HandlerError{
		UserMessage: message,
		Code:        code,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *HandlerError {
	return NewUserError(fmt.Sprintf("%s not found", resource), ErrorCodeNotFound)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *HandlerError {
	return NewUserError(message, ErrorCodeBadRequest)
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *HandlerError {
	return NewUserError(message, ErrorCodeForbidden)
}

// FromError classifies err. Application errors whose message is meant for
// the user keep it; anything else gets the default message.
func FromError(err error) *HandlerError {
	var handlerErr *HandlerError
	if errors.As(err, &handlerErr) {
		return handlerErr
	}

	code := ErrorCodeInternal
	switch apperr.GetCode(err) {
	case apperr.CodeInvalidArgument, apperr.CodeRefused:
		code = ErrorCodeBadRequest
	case apperr.CodeNotFound:
		code = ErrorCodeNotFound
	case apperr.CodeConflict:
		code = ErrorCodeConflict
	case apperr.CodeUnavailable, apperr.CodeDeliveryFailed:
		code = ErrorCodeUnavailable
	default:
		return &HandlerError{Err: err, UserMessage: DefaultUserMessage, Code: code}
	}

	return &HandlerError{Err: err, UserMessage: err.Error(), Code: code}
}

// UserMessage returns the text to show the user for err
func UserMessage(err error) string {
	return "❌ " + FromError(err).UserMessage
}
