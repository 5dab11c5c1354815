package guard

import (
	"strings"
	"sync"
	"time"
)

// Scanner detects blocked content in payloads and prompts.
type Scanner interface {
	// Scan checks the content against all rules.
	Scan(content string) *Result

	// ScanBytes checks byte content against all rules.
	ScanBytes(content []byte) *Result

	// Redact replaces every rule match with the redaction string.
	Redact(content string) string

	// IsEnabled returns whether scanning is enabled.
	IsEnabled() bool
}

// scanner is the default implementation using regexp patterns.
type scanner struct {
	config *Config
	mu     sync.RWMutex
}

// New creates a new Scanner with the given configuration.
// If config is nil, DefaultConfig() is used.
func New(cfg *Config) (Scanner, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &scanner{config: cfg}, nil
}

// MustNew creates a new Scanner, panicking on error.
func MustNew(cfg *Config) Scanner {
	s, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

// Scan checks the content against all rules.
func (s *scanner) Scan(content string) *Result {
	start := time.Now()
	result := &Result{
		Findings: make([]Finding, 0),
		ByRule:   make(map[string]int),
	}

	if !s.config.Enabled {
		result.Duration = time.Since(start)
		return result
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rule := range s.config.compiledRules {
		// If rule has keywords, check if any are present
		if len(rule.keywords) > 0 {
			hasKeyword := false
			for _, kw := range rule.keywords {
				if kw.MatchString(content) {
					hasKeyword = true
					break
				}
			}
			if !hasKeyword {
				continue
			}
		}

		matches := rule.pattern.FindAllStringIndex(content, -1)
		for _, match := range matches {
			matchStr := content[match[0]:match[1]]

			if s.isAllowed(matchStr) {
				continue
			}

			line := strings.Count(content[:match[0]], "\n") + 1

			result.Findings = append(result.Findings, Finding{
				RuleID:      rule.ID,
				Description: rule.Description,
				Category:    rule.Category,
				Severity:    rule.Severity,
				Blocking:    rule.Blocking,
				StartIndex:  match[0],
				EndIndex:    match[1],
				Line:        line,
			})
			result.ByRule[rule.ID]++
		}
	}

	result.TotalFindings = len(result.Findings)
	result.Duration = time.Since(start)
	return result
}

// ScanBytes checks byte content against all rules.
func (s *scanner) ScanBytes(content []byte) *Result {
	return s.Scan(string(content))
}

// IsEnabled returns whether scanning is enabled.
func (s *scanner) IsEnabled() bool {
	return s.config.Enabled
}

// isAllowed checks if the match is in the allow list.
func (s *scanner) isAllowed(match string) bool {
	for _, pattern := range s.config.compiledAllowList {
		if pattern.MatchString(match) {
			return true
		}
	}
	return false
}

// NoopScanner is a scanner that does nothing (for testing or disabled mode).
type NoopScanner struct{}

// Scan returns an empty result.
func (n *NoopScanner) Scan(content string) *Result {
	return &Result{
		Findings: make([]Finding, 0),
		ByRule:   make(map[string]int),
	}
}

// ScanBytes returns an empty result.
func (n *NoopScanner) ScanBytes(content []byte) *Result {
	return n.Scan(string(content))
}

// IsEnabled returns false.
func (n *NoopScanner) IsEnabled() bool {
	return false
}

// Compile-time check that scanner implements Scanner.
var _ Scanner = (*scanner)(nil)
var _ Scanner = (*NoopScanner)(nil)
