// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"strings"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

// RetrievalCoverage reports what percentage of the retrieved papers
// mention at least one of the given keywords in their title or
// abstract. A rough quality signal for a retrieval result, 0-100.
func RetrievalCoverage(docs []types.Document, keywords []string) float64 {
	if len(docs) == 0 {
		return 0
	}

	relevant := 0
	for _, d := range docs {
		text := strings.ToLower(d.Title + " " + d.Abstract)
		for _, kw := range keywords {
			k := strings.ToLower(strings.TrimSpace(kw))
			if k != "" && strings.Contains(text, k) {
				relevant++
				break
			}
		}
	}
	return float64(relevant) / float64(len(docs)) * 100
}

// SectionFlags reports which of the four required digest sections are
// populated.
type SectionFlags struct {
	ExecutiveSummary bool `json:"executive_summary" yaml:"executive_summary"`
	Highlights       bool `json:"highlights" yaml:"highlights"`
	Trends           bool `json:"trends" yaml:"trends"`
	Recommendations  bool `json:"recommendations" yaml:"recommendations"`
}

// AllPresent reports whether every section is populated.
func (f SectionFlags) AllPresent() bool {
	return f.ExecutiveSummary && f.Highlights && f.Trends && f.Recommendations
}

// DigestCompleteness inspects a digest section by section.
func DigestCompleteness(d types.Digest) SectionFlags {
	return SectionFlags{
		ExecutiveSummary: d.ExecutiveSummary != "",
		Highlights:       len(d.Highlights) > 0,
		Trends:           len(d.Trends) > 0,
		Recommendations:  len(d.Recommendations) > 0,
	}
}
