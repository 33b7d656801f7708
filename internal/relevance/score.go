// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relevance scores papers against an interest profile using
// keyword overlap and publication recency.
package relevance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

// Score computes the relevance of one paper to a profile. It returns an
// integer in [0, cfg.MaxScore] and the ordered list of human-readable
// reasons behind each contribution.
//
// Per keyword: title and abstract matches are case-insensitive substring
// checks and fire independently, so both bonuses can apply to the same
// keyword. The recency bonus is computed once per paper; the tiers are
// mutually exclusive, freshest first.
func Score(doc types.Document, profile types.InterestProfile, cfg types.RelevanceConfig, now time.Time) (int, []string) {
	title := strings.ToLower(doc.Title)
	abstract := strings.ToLower(doc.Abstract)

	score := 0
	var reasons []string

	for _, kw := range profile.Keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if strings.Contains(title, k) {
			score += cfg.TitleBonus
			reasons = append(reasons, fmt.Sprintf("keyword %q in title (+%d)", kw, cfg.TitleBonus))
		}
		if strings.Contains(abstract, k) {
			score += cfg.AbstractBonus
			reasons = append(reasons, fmt.Sprintf("keyword %q in abstract (+%d)", kw, cfg.AbstractBonus))
		}
	}

	if !doc.Published.IsZero() {
		age := now.Sub(doc.Published)
		switch {
		case age < cfg.FreshWindow:
			score += cfg.FreshBonus
			reasons = append(reasons, fmt.Sprintf("published within %s (+%d)", windowLabel(cfg.FreshWindow), cfg.FreshBonus))
		case age < cfg.RecentWindow:
			score += cfg.RecentBonus
			reasons = append(reasons, fmt.Sprintf("published within %s (+%d)", windowLabel(cfg.RecentWindow), cfg.RecentBonus))
		}
	}

	if score > cfg.MaxScore {
		score = cfg.MaxScore
	}
	return score, reasons
}

// Rank scores each paper independently and returns them sorted by
// descending score. The sort is stable: papers with equal scores keep
// their original retrieval order. Ranks are 1-based.
func Rank(docs []types.Document, profile types.InterestProfile, cfg types.RelevanceConfig, now time.Time) []types.ScoredDocument {
	scored := make([]types.ScoredDocument, len(docs))
	for i, d := range docs {
		s, reasons := Score(d, profile, cfg, now)
		scored[i] = types.ScoredDocument{
			PaperID: d.ID,
			Score:   s,
			Reasons: reasons,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}

// windowLabel renders a recency window as whole days, e.g. "7 days".
func windowLabel(w time.Duration) string {
	days := int(w / (24 * time.Hour))
	if days <= 0 {
		return w.String()
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
