package nexus

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the orchestration core.
var (
	ErrEmptyPrompt        = errors.New("prompt cannot be empty")
	ErrPromptTooLong      = errors.New("prompt exceeds maximum length")
	ErrUnknownAgent       = errors.New("unknown agent")
	ErrAgentDisabled      = errors.New("agent is disabled")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrInvalidAction      = errors.New("invalid action")
	ErrActionBlocked      = errors.New("action type is blocked from direct execution")
	ErrTokenNotFound      = errors.New("confirmation token not found")
	ErrTokenConfirmed     = errors.New("confirmation token already confirmed")
	ErrTokenOwnerMismatch = errors.New("confirmation token owner mismatch")
)

// ValidationError carries field-level detail for malformed input.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a field-level validation error.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
