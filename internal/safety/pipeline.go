package safety

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/nexusd/internal/config"
	"github.com/fyrsmithlabs/nexusd/internal/guard"
	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

// Handler performs the side effect of one confirmed (or auto-applicable)
// action and returns a result payload. Handlers are responsible for any
// durable writes; the pipeline itself never persists.
type Handler func(ctx context.Context, action *nexus.NexusAction) (map[string]any, error)

// ApplyResult is the outcome of submitting an action to the pipeline.
type ApplyResult struct {
	// NeedsConfirmation is true when a token was issued instead of executing.
	NeedsConfirmation bool `json:"needs_confirmation"`

	// Token is set when NeedsConfirmation is true.
	Token *nexus.ConfirmationToken `json:"token,omitempty"`

	// Action is the executed action when no confirmation was needed.
	Action *nexus.NexusAction `json:"action,omitempty"`
}

// Pipeline validates, classifies, confirms, and dispatches actions.
type Pipeline struct {
	validator *validator
	tokens    *TokenStore
	handlers  map[nexus.ActionType]Handler
	logger    *zap.Logger
	now       func() time.Time
}

// NewPipeline creates a pipeline. The dangerous action types get the
// built-in pending-review handler; callers register handlers for the
// remaining types and must call CheckHandlers before serving.
func NewPipeline(cfg config.SafetyConfig, scanner guard.Scanner, logger *zap.Logger) *Pipeline {
	if scanner == nil {
		scanner = &guard.NoopScanner{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pipeline{
		validator: &validator{scanner: scanner, maxPayloadBytes: cfg.MaxPayloadBytes},
		tokens:    NewTokenStore(cfg.ConfirmationTTL.Duration()),
		handlers:  make(map[nexus.ActionType]Handler),
		logger:    logger,
		now:       time.Now,
	}

	// Blocked types always resolve to a review artifact, even when a
	// caller registers something else later: RegisterHandler refuses
	// to overwrite them.
	for _, t := range ActionTypes() {
		if PolicyFor(t).Blocked {
			p.handlers[t] = pendingReviewHandler
		}
	}
	return p
}

// RegisterHandler binds a handler to an action type. Blocked types
// cannot be rebound.
func (p *Pipeline) RegisterHandler(t nexus.ActionType, h Handler) error {
	if h == nil {
		return fmt.Errorf("handler for %s cannot be nil", t)
	}
	if PolicyFor(t).Blocked {
		return fmt.Errorf("%w: %s handler is fixed to pending-review", nexus.ErrActionBlocked, t)
	}
	p.handlers[t] = h
	return nil
}

// CheckHandlers verifies every policy-table action type has a handler.
// Call at startup, before serving requests.
func (p *Pipeline) CheckHandlers() error {
	for _, t := range ActionTypes() {
		if _, ok := p.handlers[t]; !ok {
			return fmt.Errorf("no handler registered for action type %s", t)
		}
	}
	return nil
}

// Validate exposes draft validation for callers that need it standalone.
func (p *Pipeline) Validate(draft *nexus.ActionDraft) ValidationResult {
	return p.validator.Validate(draft)
}

// Apply is the first submission of the confirm boundary: validates and
// classifies the draft, then either executes it immediately (auto) or
// issues a confirmation token with a preview.
func (p *Pipeline) Apply(ctx context.Context, draft nexus.ActionDraft, userID string) (*ApplyResult, error) {
	if v := p.validator.Validate(&draft); !v.Valid {
		return nil, fmt.Errorf("%w: %v", nexus.ErrInvalidAction, v.Errors)
	}

	disposition := Normalize(&draft)

	if disposition == DispositionAuto {
		action := &nexus.NexusAction{
			Draft:       draft,
			ConfirmedBy: userID,
			ConfirmedAt: p.now(),
			Status:      nexus.ActionConfirmed,
		}
		p.execute(ctx, action)
		return &ApplyResult{Action: action}, nil
	}

	token := p.tokens.Issue(draft, userID, buildPreview(draft))
	p.logger.Debug("confirmation token issued",
		zap.String("token_id", token.ID),
		zap.String("action_type", string(draft.Type)),
		zap.String("disposition", string(disposition)),
	)
	return &ApplyResult{NeedsConfirmation: true, Token: token}, nil
}

// Confirm is the second call of the confirm boundary: resolves the
// token and executes the previewed action. Repeated confirms return
// the same outcome without a second execution.
func (p *Pipeline) Confirm(ctx context.Context, tokenID, userID string) (*nexus.NexusAction, error) {
	action, repeated, err := p.tokens.Confirm(tokenID, userID)
	if err != nil {
		return nil, err
	}
	if repeated {
		return action, nil
	}

	p.execute(ctx, action)
	p.tokens.RecordOutcome(tokenID, action)
	return action, nil
}

// Reject is the declining arm of the confirm boundary: the token is
// discarded and its action never executes. A subsequent confirm on the
// same token reports not found.
func (p *Pipeline) Reject(tokenID, userID string) error {
	if err := p.tokens.Reject(tokenID, userID); err != nil {
		return err
	}
	p.logger.Debug("confirmation token rejected", zap.String("token_id", tokenID))
	return nil
}

// execute dispatches by type. Handler failure is caught and reported on
// the action, never propagated.
func (p *Pipeline) execute(ctx context.Context, action *nexus.NexusAction) {
	h, ok := p.handlers[action.Draft.Type]
	if !ok {
		action.Status = nexus.ActionFailed
		action.Error = fmt.Sprintf("no handler for action type %s", action.Draft.Type)
		return
	}

	result, err := h(ctx, action)
	if err != nil {
		action.Status = nexus.ActionFailed
		action.Error = err.Error()
		p.logger.Warn("action handler failed",
			zap.String("action_type", string(action.Draft.Type)),
			zap.Error(err),
		)
		return
	}
	action.Status = nexus.ActionCompleted
	action.Result = result
}

// FilterUnsafeActions splits drafts for response synthesis: valid safe
// and needs-confirmation drafts are returned normalized; blocked and
// invalid drafts are excluded with one warning each. Blocked drafts
// never reach the response directly.
func (p *Pipeline) FilterUnsafeActions(drafts []nexus.ActionDraft) ([]nexus.ActionDraft, []string) {
	var kept []nexus.ActionDraft
	var warnings []string

	for _, draft := range drafts {
		v := p.validator.Validate(&draft)
		if !v.Valid {
			warnings = append(warnings, fmt.Sprintf("action %q rejected: %s", draft.Title, v.Errors[0]))
			continue
		}
		warnings = append(warnings, v.Warnings...)

		switch Normalize(&draft) {
		case DispositionBlocked:
			warnings = append(warnings, fmt.Sprintf("action %q held for review: %s actions are never applied directly", draft.Title, draft.Type))
		default:
			kept = append(kept, draft)
		}
	}
	return kept, warnings
}

// Tokens exposes the token store for lifecycle management (cleanup).
func (p *Pipeline) Tokens() *TokenStore {
	return p.tokens
}

// pendingReviewHandler is the fixed handler for blocked action types:
// regardless of confirmation state it only produces a review artifact.
func pendingReviewHandler(ctx context.Context, action *nexus.NexusAction) (map[string]any, error) {
	return map[string]any{
		"artifact":  "pending_review",
		"type":      string(action.Draft.Type),
		"title":     action.Draft.Title,
		"payload":   action.Draft.Payload,
		"applied":   false,
		"next_step": "review and apply manually",
	}, nil
}
