// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records per-stage invocation counters for pipeline
// observability.
package metrics

import (
	"sync"
	"time"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

// Recorder accumulates per-stage timing and success/failure counters.
// Safe for concurrent use. The zero value is not usable; construct with
// NewRecorder.
type Recorder struct {
	mu     sync.Mutex
	stages map[string]*counters
	now    func() time.Time
}

type counters struct {
	invocations int
	successes   int
	failures    int
	total       time.Duration
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		stages: make(map[string]*counters),
		now:    time.Now,
	}
}

// Record updates the named stage's counters with one invocation. The
// failure count increments whenever succeeded is false, regardless of
// error kind; kind-level detail belongs in logs, not metrics.
func (r *Recorder) Record(stage string, duration time.Duration, succeeded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.stages[stage]
	if !ok {
		c = &counters{}
		r.stages[stage] = c
	}
	c.invocations++
	c.total += duration
	if succeeded {
		c.successes++
	} else {
		c.failures++
	}
}

// Time runs fn, records its duration and outcome under the named stage,
// and returns fn's error unchanged.
func (r *Recorder) Time(stage string, fn func() error) error {
	start := r.now()
	err := fn()
	r.Record(stage, r.now().Sub(start), err == nil)
	return err
}

// Snapshot returns an immutable copy of all counters at call time.
// Mutating the returned snapshot never affects the recorder, and later
// recordings never alter a snapshot already taken.
func (r *Recorder) Snapshot() types.MetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := types.MetricsSnapshot{
		Stages:  make(map[string]types.StageMetrics, len(r.stages)),
		TakenAt: r.now(),
	}
	for name, c := range r.stages {
		m := types.StageMetrics{
			Invocations:   c.invocations,
			Successes:     c.successes,
			Failures:      c.failures,
			TotalDuration: c.total,
		}
		if c.invocations > 0 {
			m.MeanDuration = c.total / time.Duration(c.invocations)
		}
		snap.Stages[name] = m
	}
	return snap
}
