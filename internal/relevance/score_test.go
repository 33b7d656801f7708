// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

var now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func profileWith(keywords ...string) types.InterestProfile {
	return types.InterestProfile{Keywords: keywords}
}

func TestScore_KeywordMatching(t *testing.T) {
	cfg := types.DefaultRelevanceConfig()
	doc := types.Document{
		ID:       "2301.00001",
		Title:    "quantum error correction with surface codes",
		Abstract: "We improve quantum error correction thresholds.",
		// No publication date: no recency bonus.
	}

	tests := []struct {
		name      string
		keywords  []string
		wantScore int
	}{
		{"title and abstract are additive", []string{"quantum error correction"}, 30},
		{"case-insensitive", []string{"Quantum"}, 30},
		{"title only", []string{"surface codes"}, 20},
		{"abstract only", []string{"thresholds"}, 10},
		{"no match", []string{"topological"}, 0},
		{"two keywords accumulate", []string{"surface codes", "thresholds"}, 30},
		{"blank keyword ignored", []string{"  "}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := Score(doc, profileWith(tt.keywords...), cfg, now)
			assert.Equal(t, tt.wantScore, score)
		})
	}
}

func TestScore_RecencyTiers(t *testing.T) {
	cfg := types.DefaultRelevanceConfig()
	tests := []struct {
		name      string
		published time.Time
		want      int
	}{
		{"3 days old", now.Add(-3 * 24 * time.Hour), 15},
		{"10 days old", now.Add(-10 * 24 * time.Hour), 10},
		{"40 days old", now.Add(-40 * 24 * time.Hour), 0},
		{"no date", time.Time{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := types.Document{ID: "x", Title: "unrelated", Published: tt.published}
			score, _ := Score(doc, profileWith("nothing"), cfg, now)
			assert.Equal(t, tt.want, score)
		})
	}
}

func TestScore_ClampedToMax(t *testing.T) {
	cfg := types.DefaultRelevanceConfig()
	doc := types.Document{
		ID:        "x",
		Title:     "entanglement entanglement",
		Abstract:  "entanglement everywhere",
		Published: now.Add(-24 * time.Hour),
	}
	// Four keywords matching title+abstract (30 each) plus fresh bonus
	// would exceed 100 unclamped.
	p := profileWith("entanglement", "entangle", "tangle", "glement")

	score, _ := Score(doc, p, cfg, now)
	assert.Equal(t, 100, score)
}

func TestScore_NeverOutOfBounds(t *testing.T) {
	cfg := types.DefaultRelevanceConfig()
	docs := []types.Document{
		{},
		{Title: "a", Abstract: "b"},
		{Title: strings.Repeat("quantum ", 50), Abstract: strings.Repeat("quantum ", 50), Published: now},
	}
	profiles := []types.InterestProfile{
		{},
		profileWith("quantum"),
		profileWith("quantum", "quant", "antum", "uantu", "ntu", "tum"),
	}
	for _, d := range docs {
		for _, p := range profiles {
			score, _ := Score(d, p, cfg, now)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
	}
}

func TestScore_ReasonsInApplicationOrder(t *testing.T) {
	cfg := types.DefaultRelevanceConfig()
	doc := types.Document{
		ID:        "x",
		Title:     "quantum error correction",
		Abstract:  "surface codes for quantum error correction",
		Published: now.Add(-2 * 24 * time.Hour),
	}
	p := profileWith("quantum", "surface codes")

	score, reasons := Score(doc, p, cfg, now)
	assert.Equal(t, 20+10+10+15, score)
	require.Len(t, reasons, 4)
	assert.Equal(t, `keyword "quantum" in title (+20)`, reasons[0])
	assert.Equal(t, `keyword "quantum" in abstract (+10)`, reasons[1])
	assert.Equal(t, `keyword "surface codes" in abstract (+10)`, reasons[2])
	assert.Equal(t, "published within 7 days (+15)", reasons[3])
}

func TestRank_DescendingWithStableTies(t *testing.T) {
	cfg := types.DefaultRelevanceConfig()
	docs := []types.Document{
		{ID: "a", Title: "nothing relevant"},
		{ID: "b", Title: "quantum computing"},
		{ID: "c", Title: "also nothing"},
		{ID: "d", Title: "quantum computing again"},
	}
	p := profileWith("quantum computing")

	ranked := Rank(docs, p, cfg, now)
	require.Len(t, ranked, 4)

	// b and d tie at 20, a and c tie at 0; ties keep retrieval order.
	assert.Equal(t, []string{"b", "d", "a", "c"}, []string{
		ranked[0].PaperID, ranked[1].PaperID, ranked[2].PaperID, ranked[3].PaperID,
	})
	assert.Equal(t, []int{1, 2, 3, 4}, []int{
		ranked[0].Rank, ranked[1].Rank, ranked[2].Rank, ranked[3].Rank,
	})
}

func TestRank_EmptyInput(t *testing.T) {
	ranked := Rank(nil, profileWith("x"), types.DefaultRelevanceConfig(), now)
	assert.Empty(t, ranked)
}
