package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/nexusd/internal/config"
	"github.com/fyrsmithlabs/nexusd/internal/nexus"
)

func defaultRanker() (*Ranker, time.Time) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	r := NewRanker(config.MemoryConfig{
		VectorWeight:     0.4,
		RecencyWeight:    0.3,
		ImportanceWeight: 0.2,
		FrequencyWeight:  0.1,
		MaxAge:           config.Duration(7 * 24 * time.Hour),
		MinScore:         0.3,
		MaxResults:       5,
	})
	r.now = func() time.Time { return now }
	return r, now
}

func TestRankRecencyBreaksTies(t *testing.T) {
	r, now := defaultRanker()

	recent := nexus.MemoryItem{
		ID: "recent", Content: "grocery shopping list",
		Importance:     0.8,
		CreatedAt:      now.Add(-60 * 24 * time.Hour),
		LastAccessedAt: now.Add(-24 * time.Hour),
	}
	stale := recent
	stale.ID = "stale"
	stale.LastAccessedAt = now.Add(-30 * 24 * time.Hour)

	ranked := r.Rank([]nexus.MemoryItem{stale, recent}, "grocery shopping", nil)
	require.Len(t, ranked, 2)
	assert.Equal(t, "recent", ranked[0].Item.ID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRankDropsBelowMinScore(t *testing.T) {
	r, now := defaultRanker()

	irrelevant := nexus.MemoryItem{
		ID: "old-unrelated", Content: "random fact about penguins",
		Importance:     0.1,
		CreatedAt:      now.Add(-60 * 24 * time.Hour),
		LastAccessedAt: now.Add(-60 * 24 * time.Hour),
	}

	ranked := r.Rank([]nexus.MemoryItem{irrelevant}, "quarterly budget report", nil)
	assert.Empty(t, ranked, "low-relevance items are dropped, never padded")
}

func TestRankCapsResults(t *testing.T) {
	r, now := defaultRanker()

	items := make([]nexus.MemoryItem, 10)
	for i := range items {
		items[i] = nexus.MemoryItem{
			ID: string(rune('a' + i)), Content: "project deadline reminder",
			Importance:     0.9,
			LastAccessedAt: now.Add(-time.Hour),
		}
	}

	ranked := r.Rank(items, "project deadline", nil)
	assert.Len(t, ranked, 5)
}

func TestRankUsesEmbeddingWhenAvailable(t *testing.T) {
	r, now := defaultRanker()

	aligned := nexus.MemoryItem{
		ID: "aligned", Content: "zzz",
		Embedding:      []float32{1, 0, 0},
		Importance:     0.5,
		LastAccessedAt: now.Add(-time.Hour),
	}
	orthogonal := aligned
	orthogonal.ID = "orthogonal"
	orthogonal.Embedding = []float32{0, 1, 0}

	ranked := r.Rank([]nexus.MemoryItem{orthogonal, aligned}, "unrelated words", []float32{1, 0, 0})
	require.NotEmpty(t, ranked)
	assert.Equal(t, "aligned", ranked[0].Item.ID)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	// Opposite vectors clamp to 0 rather than going negative
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestTermOverlap(t *testing.T) {
	q := tokenize("grocery shopping list")
	assert.InDelta(t, 1.0, termOverlap(q, tokenize("my grocery shopping list for today")), 1e-9)
	assert.InDelta(t, 0.0, termOverlap(q, tokenize("unrelated penguin facts")), 1e-9)
	assert.Equal(t, 0.0, termOverlap(nil, tokenize("anything")))
}

func TestTokenizeFiltersStopwords(t *testing.T) {
	tokens := tokenize("What is the weather in Paris?")
	assert.Equal(t, []string{"weather", "paris"}, tokens)
}

func TestLogFrequency(t *testing.T) {
	assert.Equal(t, 0.0, logFrequency(0))
	assert.Greater(t, logFrequency(10), logFrequency(1))
	assert.LessOrEqual(t, logFrequency(100000), 1.0)
}
