package router

import (
	"regexp"
	"sort"

	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

// DefaultAgentID handles prompts no intent pattern claims.
const DefaultAgentID = "orchestrator"

// intentPattern maps a prompt pattern to one or more agents with a
// priority. Higher priority agents answer first in the synthesized
// response.
type intentPattern struct {
	name     string
	pattern  *regexp.Regexp
	agentIDs []string
	priority int
}

// intentPatterns is the ordered pattern list the router matches prompts
// against. Pattern/keyword intent detection is deliberate: the list can
// be swapped for a real classifier without changing the surrounding
// contracts.
var intentPatterns = []intentPattern{
	{
		name:     "navigation",
		pattern:  regexp.MustCompile(`(?i)\b(go to|open|navigate to|take me to|show me the)\b`),
		agentIDs: []string{"ui"},
		priority: 90,
	},
	{
		name:     "tracker-write",
		pattern:  regexp.MustCompile(`(?i)\b(create|add|track|log|record|update|rename|delete|remove)\b.*\b(tracker|list|habit|entry|task|item)\b`),
		agentIDs: []string{"tracker"},
		priority: 80,
	},
	{
		name:     "memory-remember",
		pattern:  regexp.MustCompile(`(?i)\b(remember|don't forget|note that|keep in mind)\b`),
		agentIDs: []string{"memory"},
		priority: 70,
	},
	{
		name:     "memory-recall",
		pattern:  regexp.MustCompile(`(?i)\b(recall|what did i|did i mention|you remember)\b`),
		agentIDs: []string{"memory"},
		priority: 70,
	},
	{
		name:     "insight",
		pattern:  regexp.MustCompile(`(?i)\b(trend|trends|analy[sz]e|insight|anomal|predict|forecast|pattern|summar)\w*\b`),
		agentIDs: []string{"insight"},
		priority: 60,
	},
	{
		name:     "tracker-read",
		pattern:  regexp.MustCompile(`(?i)\b(show|list|view|check)\b.*\b(tracker|trackers|progress|streak|stats)\b`),
		agentIDs: []string{"tracker"},
		priority: 50,
	},
}

// matchIntents returns agent ids for the prompt: all pattern matches
// collected, sorted by priority descending, deduplicated, falling back
// to the default agent when nothing matches.
func matchIntents(prompt string) []string {
	type scored struct {
		id       string
		priority int
	}

	var matches []scored
	for _, ip := range intentPatterns {
		if !ip.pattern.MatchString(prompt) {
			continue
		}
		for _, id := range ip.agentIDs {
			matches = append(matches, scored{id: id, priority: ip.priority})
		}
	}

	if len(matches) == 0 {
		return []string{DefaultAgentID}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].priority > matches[j].priority
	})

	seen := make(map[string]bool, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m.id] {
			continue
		}
		seen[m.id] = true
		ids = append(ids, m.id)
	}
	return ids
}

// Destructive and read-only verb patterns for safety-tier inference.
// This is a heuristic over raw prompt text and may misclassify phrasing
// outside the pattern list.
var (
	destructivePattern = regexp.MustCompile(`(?i)\b(delete|remove|drop|erase|wipe|destroy|purge|clear all|forget)\b`)
	readOnlyPattern    = regexp.MustCompile(`(?i)^\s*(go to|open|show|list|view|what|when|where|who|how|check|navigate)\b`)
)

// inferSafetyTier computes the request's tier from the prompt, unless
// caller metadata carries an explicit valid tier.
func inferSafetyTier(req *nexus.Request) nexus.SafetyTier {
	if req.Metadata != nil {
		if raw, ok := req.Metadata["safety_tier"]; ok {
			switch v := raw.(type) {
			case int:
				if t := nexus.SafetyTier(v); t.Valid() {
					return t
				}
			case float64:
				if t := nexus.SafetyTier(int(v)); t.Valid() {
					return t
				}
			}
		}
	}

	if destructivePattern.MatchString(req.Prompt) {
		return nexus.TierHigh
	}
	if readOnlyPattern.MatchString(req.Prompt) {
		return nexus.TierLow
	}
	return nexus.TierDefault
}
