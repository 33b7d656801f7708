// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notation extracts LaTeX mathematical expressions from free text.
package notation

import (
	"regexp"
	"strings"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

// patterns are the delimiter forms recognized, applied in this fixed
// order: display mode, inline mode, then the two block environments.
// Matching is non-greedy; the first closing delimiter ends a match, so
// nested delimiters of the same kind are not resolved. That limitation
// is part of the extraction contract and must not be "fixed".
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)\$\$(.*?)\$\$`),
	regexp.MustCompile(`(?s)\$(.*?)\$`),
	regexp.MustCompile(`(?s)\\begin\{equation\}(.*?)\\end\{equation\}`),
	regexp.MustCompile(`(?s)\\begin\{align\}(.*?)\\end\{align\}`),
}

// Extract returns the mathematical expressions found in text,
// deduplicated by exact string after trimming, in first-seen order.
// Each pattern scans the full text independently; a span already matched
// by an earlier pattern stays eligible for later ones, with the result
// set collapsing exact duplicates. No input ever produces an error; text
// without notation yields an empty slice.
func Extract(text string) []string {
	seen := make(map[string]bool)
	var out []string

	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			expr := strings.TrimSpace(m[1])
			if expr == "" || seen[expr] {
				continue
			}
			seen[expr] = true
			out = append(out, expr)
		}
	}

	return out
}

// Items wraps the expressions extracted from text as NotationItems,
// unclassified and without explanations.
func Items(text string) []types.NotationItem {
	exprs := Extract(text)
	items := make([]types.NotationItem, 0, len(exprs))
	for _, e := range exprs {
		items = append(items, types.NotationItem{
			Raw:   e,
			Label: types.LabelUnclassified,
		})
	}
	return items
}
