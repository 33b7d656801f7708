// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RecencyPreference labels how strongly a user favors fresh papers.
type RecencyPreference string

const (
	RecencyAny    RecencyPreference = "any"
	RecencyRecent RecencyPreference = "recent"
)

// InterestProfile is a caller's standing research-interest snapshot used
// for scoring. Read-only during a pipeline run.
type InterestProfile struct {
	// Keywords lists interest keywords in priority order.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Categories lists accepted arXiv category tags.
	Categories []string `json:"categories" yaml:"categories"`

	// MaxResults is the desired number of papers per query.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Recency is the recency preference label.
	Recency RecencyPreference `json:"recency" yaml:"recency"`
}

// DefaultProfile returns the profile used for sessions that have not set
// their own preferences.
func DefaultProfile() InterestProfile {
	return InterestProfile{
		Keywords:   []string{"quantum entanglement", "quantum computing"},
		Categories: []string{"quant-ph"},
		MaxResults: 20,
		Recency:    RecencyRecent,
	}
}

// QueryHistoryEntry records one completed query against a session.
type QueryHistoryEntry struct {
	// Query is the query text as entered.
	Query string `json:"query" yaml:"query"`

	// Timestamp is when the query completed. Entries within a session
	// are ordered by non-decreasing timestamp.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// DocumentCount is the number of papers the query retrieved.
	DocumentCount int `json:"document_count" yaml:"document_count"`

	// Elapsed is the wall-clock duration of the pipeline run.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// SessionRecord is the per-session state held by the session store:
// a preference snapshot plus an append-only query history.
type SessionRecord struct {
	// ID is the session identifier, caller- or system-generated.
	ID string `json:"id" yaml:"id"`

	// CreatedAt is when the session was first used.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Profile is the current interest-profile snapshot.
	Profile InterestProfile `json:"profile" yaml:"profile"`

	// History is the append-only query history, oldest first.
	History []QueryHistoryEntry `json:"history" yaml:"history"`
}
