// Package memory scores and selects the most relevant prior memory
// items for a request, and holds the user-scoped in-memory store the
// built-in memory agent writes to.
package memory

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fyrsmithlabs/nexusd/internal/config"
	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

// RankedItem pairs a memory item with its computed relevance score.
type RankedItem struct {
	Item  nexus.MemoryItem `json:"item"`
	Score float64          `json:"score"`
}

// Ranker computes weighted relevance scores over candidate memories.
type Ranker struct {
	cfg config.MemoryConfig
	now func() time.Time
}

// NewRanker creates a ranker from config.
func NewRanker(cfg config.MemoryConfig) *Ranker {
	return &Ranker{cfg: cfg, now: time.Now}
}

// Rank scores each candidate as a weighted sum of similarity, recency
// decay, importance, and log-scaled access frequency. Similarity is
// cosine similarity against the query embedding when available, else a
// normalized keyword-overlap fraction. Items below the minimum score
// are dropped entirely; survivors are sorted descending and truncated
// to the result cap. The result is never padded with low-relevance
// filler.
func (r *Ranker) Rank(memories []nexus.MemoryItem, query string, queryEmbedding []float32) []RankedItem {
	if len(memories) == 0 {
		return nil
	}

	now := r.now()
	queryTokens := tokenize(query)

	ranked := make([]RankedItem, 0, len(memories))
	for _, m := range memories {
		similarity := r.similarity(m, queryTokens, queryEmbedding)
		recency := r.recencyDecay(m, now)
		frequency := logFrequency(m.AccessCount)

		score := r.cfg.VectorWeight*similarity +
			r.cfg.RecencyWeight*recency +
			r.cfg.ImportanceWeight*m.Importance +
			r.cfg.FrequencyWeight*frequency

		if score < r.cfg.MinScore {
			continue
		}
		ranked = append(ranked, RankedItem{Item: m, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if r.cfg.MaxResults > 0 && len(ranked) > r.cfg.MaxResults {
		ranked = ranked[:r.cfg.MaxResults]
	}
	return ranked
}

// similarity prefers cosine similarity over embeddings, falling back to
// keyword overlap when either side lacks an embedding.
func (r *Ranker) similarity(m nexus.MemoryItem, queryTokens []string, queryEmbedding []float32) float64 {
	if len(queryEmbedding) > 0 && len(m.Embedding) == len(queryEmbedding) {
		return cosineSimilarity(queryEmbedding, m.Embedding)
	}
	return termOverlap(queryTokens, tokenize(m.Content))
}

// recencyDecay = max(0, 1 - age/maxAge), measured from last access
// (falling back to creation time).
func (r *Ranker) recencyDecay(m nexus.MemoryItem, now time.Time) float64 {
	ref := m.LastAccessedAt
	if ref.IsZero() {
		ref = m.CreatedAt
	}
	if ref.IsZero() {
		return 0
	}

	maxAge := r.cfg.MaxAge.Duration()
	if maxAge <= 0 {
		return 0
	}

	age := now.Sub(ref)
	if age < 0 {
		age = 0
	}
	decay := 1 - float64(age)/float64(maxAge)
	if decay < 0 {
		return 0
	}
	return decay
}

// logFrequency log-scales the access count into [0,1), saturating
// around a few hundred accesses.
func logFrequency(accessCount int) float64 {
	if accessCount <= 0 {
		return 0
	}
	f := math.Log1p(float64(accessCount)) / math.Log1p(256)
	if f > 1 {
		return 1
	}
	return f
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// clamped to [0,1]. Zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return cos
}

// termOverlap returns the fraction of unique query tokens present in
// the document tokens.
func termOverlap(queryTokens, docTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	docSet := make(map[string]bool, len(docTokens))
	for _, t := range docTokens {
		docSet[t] = true
	}

	matched := 0
	counted := make(map[string]bool, len(queryTokens))
	for _, t := range queryTokens {
		if docSet[t] && !counted[t] {
			matched++
			counted[t] = true
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

// tokenize splits text into lowercase terms, filtering out common
// stopwords and short tokens.
func tokenize(text string) []string {
	text = strings.ToLower(text)
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !isAlphanumeric(r)
	})

	filtered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !isStopword(token) && len(token) > 2 {
			filtered = append(filtered, token)
		}
	}
	return filtered
}

// isAlphanumeric returns true if the rune is alphanumeric or underscore.
func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') || r == '_'
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "was": true,
	"are": true, "be": true, "been": true, "being": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "can": true, "this": true,
	"that": true, "these": true, "those": true, "i": true, "you": true, "he": true,
	"she": true, "it": true, "we": true, "they": true, "what": true, "which": true,
	"who": true, "when": true, "where": true, "why": true, "how": true,
}

// isStopword returns true if the token is a common English stopword.
func isStopword(token string) bool {
	return stopwords[token]
}
