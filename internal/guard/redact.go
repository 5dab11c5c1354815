package guard

import "sort"

// RedactionString replaces matched spans in redacted output.
const RedactionString = "[REDACTED]"

// redaction tracks one span to redact.
type redaction struct {
	start, end int
}

// Redact replaces every rule match in the content with the redaction
// string. Overlapping and adjacent matches are merged before
// replacement. Used by the provenance tracker to sanitize input/output
// summaries with the same pattern list the safety layer blocks on.
func (s *scanner) Redact(content string) string {
	if !s.config.Enabled {
		return content
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var spans []redaction
	for _, rule := range s.config.compiledRules {
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

		for _, match := range rule.pattern.FindAllStringIndex(content, -1) {
			if s.isAllowed(content[match[0]:match[1]]) {
				continue
			}
			spans = append(spans, redaction{start: match[0], end: match[1]})
		}
	}

	if len(spans) == 0 {
		return content
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})
	merged := mergeRedactions(spans)

	// Apply back to front so earlier indices stay valid
	out := content
	for i := len(merged) - 1; i >= 0; i-- {
		r := merged[i]
		if r.start >= 0 && r.end <= len(out) && r.start < r.end {
			out = out[:r.start] + RedactionString + out[r.end:]
		}
	}
	return out
}

// Redact returns content unchanged.
func (n *NoopScanner) Redact(content string) string {
	return content
}

// mergeRedactions merges overlapping or adjacent spans. Input must be
// sorted by start ascending.
func mergeRedactions(spans []redaction) []redaction {
	if len(spans) == 0 {
		return spans
	}

	merged := []redaction{spans[0]}
	for i := 1; i < len(spans); i++ {
		last := &merged[len(merged)-1]
		curr := spans[i]
		if curr.start <= last.end {
			if curr.end > last.end {
				last.end = curr.end
			}
		} else {
			merged = append(merged, curr)
		}
	}
	return merged
}
