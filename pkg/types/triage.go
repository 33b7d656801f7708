// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Finding holds the structured analysis of one paper's abstract, as
// returned by the reasoning service. Produced once per pipeline run and
// never mutated afterward.
type Finding struct {
	// PaperID references the Document this finding was derived from.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Contribution is the paper's main contribution in one or two sentences.
	Contribution string `json:"contribution" yaml:"contribution"`

	// Methodology names the key technique or approach used.
	Methodology string `json:"methodology" yaml:"methodology"`

	// Significance describes why the result matters to the field.
	Significance string `json:"significance" yaml:"significance"`
}

// NotationLabel classifies an extracted mathematical expression.
type NotationLabel string

const (
	// LabelUnclassified marks an expression that has not been annotated.
	LabelUnclassified NotationLabel = "unclassified"
)

// NotationItem is one mathematical expression extracted from a paper's
// text. Items are unique by exact expression within one Document.
type NotationItem struct {
	// Raw is the extracted expression with surrounding whitespace trimmed.
	Raw string `json:"raw" yaml:"raw"`

	// Label classifies the expression; unclassified until annotated.
	Label NotationLabel `json:"label" yaml:"label"`

	// Explanation is a short physics explanation, empty unless annotated.
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// ScoredDocument carries the relevance score and rank of one Document.
type ScoredDocument struct {
	// PaperID references the scored Document.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Score is the relevance score in [0, 100].
	Score int `json:"score" yaml:"score"`

	// Rank is the ordinal rank, 1 = most relevant. Ties keep the
	// original retrieval order.
	Rank int `json:"rank" yaml:"rank"`

	// Reasons lists, in the order the contributions were applied, a
	// human-readable string per scoring rule that fired.
	Reasons []string `json:"reasons" yaml:"reasons"`
}

// DigestHighlight is one ranked entry in the digest's highlights section.
type DigestHighlight struct {
	PaperID    string `json:"paper_id" yaml:"paper_id"`
	Title      string `json:"title" yaml:"title"`
	Score      int    `json:"score" yaml:"score"`
	KeyFinding string `json:"key_finding" yaml:"key_finding"`
}

// Digest is the structured synthesis produced at the end of a pipeline
// run. All four sections must be present for the run to count as complete.
type Digest struct {
	// ExecutiveSummary is a two-to-three sentence overview.
	ExecutiveSummary string `json:"executive_summary" yaml:"executive_summary"`

	// Highlights lists the top papers in rank order.
	Highlights []DigestHighlight `json:"highlights" yaml:"highlights"`

	// Trends lists research themes observed across the papers.
	Trends []string `json:"trends" yaml:"trends"`

	// Recommendations lists suggested follow-up reading or directions.
	Recommendations []string `json:"recommendations" yaml:"recommendations"`
}

// Validate checks that all four digest sections are populated.
func (d Digest) Validate() error {
	if d.ExecutiveSummary == "" {
		return fmt.Errorf("digest missing executive summary")
	}
	if len(d.Highlights) == 0 {
		return fmt.Errorf("digest missing highlights")
	}
	if len(d.Trends) == 0 {
		return fmt.Errorf("digest missing trends")
	}
	if len(d.Recommendations) == 0 {
		return fmt.Errorf("digest missing recommendations")
	}
	return nil
}
