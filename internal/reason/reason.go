// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reason defines the boundary to the external reasoning service
// used by the Analyze and Synthesize stages: send a structured request,
// receive a structured response, fail with a named condition. The core
// never retries at this boundary; a single bounded-timeout call either
// yields a shape-valid response or a stage failure.
package reason

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

// Named failure conditions for the reasoning boundary.
var (
	// ErrUnavailable indicates the service could not be reached or did
	// not answer within the call timeout.
	ErrUnavailable = errors.New("reason: service unavailable")

	// ErrBadShape indicates the service answered but the response failed
	// shape validation.
	ErrBadShape = errors.New("reason: response failed shape validation")
)

// AnalyzeRequest carries one paper's title and abstract, the only
// fields the Analyze stage sends across the boundary.
type AnalyzeRequest struct {
	PaperID  string `json:"paper_id"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// SynthesizeRequest carries everything the pipeline produced before the
// final stage: the documents, per-paper findings, extracted notation,
// and relevance scores.
type SynthesizeRequest struct {
	Query     string                          `json:"query"`
	Documents []types.Document                `json:"documents"`
	Findings  []types.Finding                 `json:"findings"`
	Notation  map[string][]types.NotationItem `json:"notation"`
	Scores    []types.ScoredDocument          `json:"scores"`
}

// Service is the reasoning-service capability used by the pipeline.
// Implementations must validate response shape and surface failures as
// ErrUnavailable or ErrBadShape so tests can run against a stand-in
// instead of a live model.
type Service interface {
	// Analyze derives one Finding from one paper's title and abstract.
	Analyze(ctx context.Context, req AnalyzeRequest) (types.Finding, error)

	// Synthesize produces the final digest from the full set of stage
	// outputs. The digest must contain all four sections.
	Synthesize(ctx context.Context, req SynthesizeRequest) (types.Digest, error)
}

// ValidateFinding checks that a finding carries the three analysis
// fields. A missing field is a shape violation.
func ValidateFinding(f types.Finding) error {
	switch {
	case f.Contribution == "":
		return fmt.Errorf("%w: finding missing contribution", ErrBadShape)
	case f.Methodology == "":
		return fmt.Errorf("%w: finding missing methodology", ErrBadShape)
	case f.Significance == "":
		return fmt.Errorf("%w: finding missing significance", ErrBadShape)
	}
	return nil
}

// ValidateDigest checks that a digest carries all four required sections.
func ValidateDigest(d types.Digest) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadShape, err)
	}
	return nil
}
