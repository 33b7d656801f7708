// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"time"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

// Stage names, in execution order.
const (
	StageRetrieve        = "Retrieve"
	StageAnalyze         = "Analyze"
	StageExtractNotation = "ExtractNotation"
	StageScore           = "Score"
	StageSynthesize      = "Synthesize"
)

// Stages lists the pipeline stages in execution order.
var Stages = []string{StageRetrieve, StageAnalyze, StageExtractNotation, StageScore, StageSynthesize}

// Status tags the outcome of a pipeline run.
type Status string

const (
	// StatusComplete means all stages succeeded (an empty retrieval
	// result still counts as complete).
	StatusComplete Status = "complete"

	// StatusPartial means the run terminated early; the envelope holds
	// everything produced before the failing stage.
	StatusPartial Status = "partial"
)

// Envelope is the accumulating result carried through the pipeline.
// Each stage writes its output into the envelope; on failure the
// envelope keeps every prior stage's output.
type Envelope struct {
	// Query is the query text as entered.
	Query string `json:"query" yaml:"query"`

	// SessionID identifies the session the run belongs to.
	SessionID string `json:"session_id" yaml:"session_id"`

	// Status is complete or partial.
	Status Status `json:"status" yaml:"status"`

	// FailedStage names the stage that terminated a partial run.
	FailedStage string `json:"failed_stage,omitempty" yaml:"failed_stage,omitempty"`

	// FailureReason describes why the stage failed.
	FailureReason string `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`

	// Message carries a caller-facing note, e.g. when retrieval matched
	// nothing.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// Documents is the Retrieve stage output, feed order.
	Documents []types.Document `json:"documents" yaml:"documents"`

	// Findings is the Analyze stage output, one per document.
	Findings []types.Finding `json:"findings,omitempty" yaml:"findings,omitempty"`

	// Notation maps paper ID to the expressions extracted from it.
	Notation map[string][]types.NotationItem `json:"notation,omitempty" yaml:"notation,omitempty"`

	// Scores is the Score stage output, rank order.
	Scores []types.ScoredDocument `json:"scores,omitempty" yaml:"scores,omitempty"`

	// Digest is the Synthesize stage output; nil until that stage
	// succeeds.
	Digest *types.Digest `json:"digest,omitempty" yaml:"digest,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}
