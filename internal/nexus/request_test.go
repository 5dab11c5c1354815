package nexus

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{"valid", Request{ID: "r1", Prompt: "go to settings"}, ""},
		{"missing id", Request{Prompt: "hi"}, "id"},
		{"empty prompt", Request{ID: "r1", Prompt: "   "}, "prompt"},
		{"prompt too long", Request{ID: "r1", Prompt: strings.Repeat("a", MaxPromptLength+1)}, "prompt"},
		{"prompt at limit", Request{ID: "r1", Prompt: strings.Repeat("a", MaxPromptLength)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(0)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Field)
		})
	}
}

func TestRequestValidateCustomLimit(t *testing.T) {
	req := Request{ID: "r1", Prompt: strings.Repeat("a", 150)}

	assert.NoError(t, req.Validate(150))

	err := req.Validate(100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrPromptTooLong.Error())
	assert.Contains(t, err.Error(), "100")
}

func TestTrimHistory(t *testing.T) {
	history := make([]Message, MaxHistoryMessages+10)
	for i := range history {
		history[i] = Message{Role: "user", Content: "turn", Timestamp: time.Now()}
	}
	// Mark the newest turn so we can verify the oldest were dropped
	history[len(history)-1].Content = "newest"

	req := Request{ID: "r1", Prompt: "hi", ConversationHistory: history}
	warning := req.TrimHistory(0)

	require.NotEmpty(t, warning)
	assert.Len(t, req.ConversationHistory, MaxHistoryMessages)
	assert.Equal(t, "newest", req.ConversationHistory[len(req.ConversationHistory)-1].Content)

	assert.Empty(t, req.TrimHistory(0))

	warning = req.TrimHistory(2)
	require.NotEmpty(t, warning)
	assert.Len(t, req.ConversationHistory, 2)
	assert.Equal(t, "newest", req.ConversationHistory[1].Content)
}

func TestContextMerge(t *testing.T) {
	built := &Context{
		UserID:     "user-1",
		SafetyTier: TierDefault,
		Memories:   []MemoryItem{{ID: "m1"}},
	}
	built.Merge(&Context{
		UILocation:   "/settings",
		FeatureFlags: map[string]bool{"beta": true},
	})

	assert.Equal(t, "user-1", built.UserID)
	assert.Equal(t, "/settings", built.UILocation)
	assert.True(t, built.FeatureFlags["beta"])
	assert.Len(t, built.Memories, 1)
	assert.Equal(t, TierDefault, built.SafetyTier)

	built.Merge(nil)
	assert.Equal(t, "user-1", built.UserID)
}

func TestSafetyTierValid(t *testing.T) {
	assert.True(t, TierLow.Valid())
	assert.True(t, TierDefault.Valid())
	assert.True(t, TierHigh.Valid())
	assert.False(t, SafetyTier(0).Valid())
	assert.False(t, SafetyTier(4).Valid())
}

func TestAgentConfigValidate(t *testing.T) {
	valid := AgentConfig{ID: "ui", Name: "UI Agent", Capabilities: []string{"navigation"}}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*AgentConfig)
	}{
		{"missing id", func(c *AgentConfig) { c.ID = "" }},
		{"missing name", func(c *AgentConfig) { c.Name = "" }},
		{"no capabilities", func(c *AgentConfig) { c.Capabilities = nil }},
		{"negative rate limit", func(c *AgentConfig) { c.RateLimit = -1 }},
		{"invalid tier", func(c *AgentConfig) { c.SafetyTier = 7 }},
		{"negative timeout", func(c *AgentConfig) { c.Timeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Now()
	tok := ConfirmationToken{ExpiresAt: now.Add(5 * time.Minute)}

	assert.False(t, tok.Expired(now))
	assert.False(t, tok.Expired(now.Add(5*time.Minute)))
	assert.True(t, tok.Expired(now.Add(5*time.Minute+time.Millisecond)))
}

func TestFailedResult(t *testing.T) {
	res := FailedResult("tracker", assert.AnError, 25*time.Millisecond)
	assert.Equal(t, "tracker", res.AgentID)
	assert.False(t, res.Success)
	assert.Equal(t, assert.AnError.Error(), res.Error)
	assert.Equal(t, 25*time.Millisecond, res.Duration)

	res = FailedResult("tracker", nil, 0)
	assert.Equal(t, "unknown error", res.Error)
}
