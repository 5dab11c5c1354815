package nexus

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Request limits applied when the caller does not configure its own.
const (
	MaxPromptLength    = 10000
	MaxHistoryMessages = 50
)

// Request is an immutable inbound call into the orchestration core.
// Built once per call and never mutated afterwards.
type Request struct {
	// ID uniquely identifies the request.
	ID string `json:"id"`

	// Prompt is the free-text user input.
	Prompt string `json:"prompt"`

	// TargetAgent optionally names a single agent, bypassing intent matching.
	TargetAgent string `json:"target_agent,omitempty"`

	// Context optionally carries partial caller-supplied context.
	Context *Context `json:"context,omitempty"`

	// ConversationHistory holds prior turns, newest last.
	ConversationHistory []Message `json:"conversation_history,omitempty"`

	// Metadata holds opaque caller data (caller id, source, timestamp).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Message is one prior conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// idPattern constrains request ids to log- and header-safe characters.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)

// Validate checks request well-formedness against the given prompt
// limit; zero or negative falls back to MaxPromptLength. History
// overflow is not an error: the excess is trimmed by TrimHistory and
// reported as a warning by the router.
func (r *Request) Validate(maxPrompt int) error {
	if maxPrompt <= 0 {
		maxPrompt = MaxPromptLength
	}
	if r.ID == "" {
		return NewValidationError("id", "request id is required")
	}
	if !idPattern.MatchString(r.ID) {
		return NewValidationError("id", "request id must be 1-128 alphanumeric, hyphen, or underscore characters")
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return NewValidationError("prompt", "%s", ErrEmptyPrompt.Error())
	}
	if utf8.RuneCountInString(r.Prompt) > maxPrompt {
		return NewValidationError("prompt", "%s: limit %d characters", ErrPromptTooLong.Error(), maxPrompt)
	}
	if !utf8.ValidString(r.Prompt) {
		return NewValidationError("prompt", "prompt contains invalid UTF-8")
	}
	return nil
}

// TrimHistory drops the oldest turns beyond the given limit; zero or
// negative falls back to MaxHistoryMessages. Returns a warning string
// when trimming occurred, empty otherwise.
func (r *Request) TrimHistory(max int) string {
	if max <= 0 {
		max = MaxHistoryMessages
	}
	if len(r.ConversationHistory) <= max {
		return ""
	}
	dropped := len(r.ConversationHistory) - max
	r.ConversationHistory = r.ConversationHistory[dropped:]
	return fmt.Sprintf("conversation history trimmed: dropped %d oldest messages (max %d)", dropped, max)
}
