// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// StageMetrics holds the counters for one pipeline stage.
type StageMetrics struct {
	// Invocations is the number of times the stage ran.
	Invocations int `json:"invocations" yaml:"invocations"`

	// Successes counts invocations that completed without error.
	Successes int `json:"successes" yaml:"successes"`

	// Failures counts invocations that reported an error, regardless of
	// error kind.
	Failures int `json:"failures" yaml:"failures"`

	// TotalDuration is the cumulative wall-clock time across invocations.
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`

	// MeanDuration is TotalDuration divided by Invocations.
	MeanDuration time.Duration `json:"mean_duration" yaml:"mean_duration"`
}

// MetricsSnapshot is an immutable copy of all stage counters at one
// point in time. Mutating a snapshot never affects the recorder.
type MetricsSnapshot struct {
	// Stages maps stage name to its counters.
	Stages map[string]StageMetrics `json:"stages" yaml:"stages"`

	// TakenAt is when the snapshot was captured.
	TakenAt time.Time `json:"taken_at" yaml:"taken_at"`
}

// TotalInvocations sums invocation counts across all stages.
func (s MetricsSnapshot) TotalInvocations() int {
	n := 0
	for _, m := range s.Stages {
		n += m.Invocations
	}
	return n
}

// SuccessRatePercent returns the overall success rate across all stages,
// or 0 when nothing has been recorded.
func (s MetricsSnapshot) SuccessRatePercent() float64 {
	var ok, total int
	for _, m := range s.Stages {
		ok += m.Successes
		total += m.Successes + m.Failures
	}
	if total == 0 {
		return 0
	}
	return float64(ok) / float64(total) * 100
}

// TotalDuration sums cumulative stage durations.
func (s MetricsSnapshot) TotalDuration() time.Duration {
	var d time.Duration
	for _, m := range s.Stages {
		d += m.TotalDuration
	}
	return d
}
