// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "arxiv-triage/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetrievalConfig holds settings for the arXiv retrieval tool.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults bounds the number of papers per request (1-50, default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Cooldown is the minimum interval between consecutive outbound
	// requests to the arXiv API (default 3s). The timer is shared across
	// all callers of one client.
	Cooldown time.Duration `json:"cooldown" yaml:"cooldown"`

	// MaxRetries is the number of retry attempts after a failed request
	// (default 3). Retries observe the same cooldown.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// RelevanceConfig holds the scoring constants. The defaults are tuned
// values carried over from the original triage rules; they are
// configuration, not law.
type RelevanceConfig struct {
	// TitleBonus is added per keyword found in the title (default 20).
	TitleBonus int `json:"title_bonus" yaml:"title_bonus"`

	// AbstractBonus is added per keyword found in the abstract (default 10).
	AbstractBonus int `json:"abstract_bonus" yaml:"abstract_bonus"`

	// FreshBonus is added when the paper is younger than FreshWindow
	// (default 15).
	FreshBonus int `json:"fresh_bonus" yaml:"fresh_bonus"`

	// FreshWindow is the age below which FreshBonus applies (default 7 days).
	FreshWindow time.Duration `json:"fresh_window" yaml:"fresh_window"`

	// RecentBonus is added when the paper is older than FreshWindow but
	// younger than RecentWindow (default 10).
	RecentBonus int `json:"recent_bonus" yaml:"recent_bonus"`

	// RecentWindow is the age below which RecentBonus applies (default 30 days).
	RecentWindow time.Duration `json:"recent_window" yaml:"recent_window"`

	// MaxScore caps the final score (default 100).
	MaxScore int `json:"max_score" yaml:"max_score"`
}

// AIConfig holds settings for the reasoning-service boundary.
type AIConfig struct {
	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the reasoning service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds each reasoning-service call. There is no retry at
	// this boundary; failure surfaces immediately.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// PipelineConfig groups all stage configurations for the triage pipeline.
type PipelineConfig struct {
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Relevance RelevanceConfig `json:"relevance" yaml:"relevance"`
	AI        AIConfig        `json:"ai" yaml:"ai"`
}

// DefaultPipelineConfig returns the pipeline defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Retrieval: RetrievalConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "arxiv-triage/0.1",
			},
			MaxResults: 20,
			Cooldown:   3 * time.Second,
			MaxRetries: 3,
		},
		Relevance: DefaultRelevanceConfig(),
		AI: AIConfig{
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
	}
}

// DefaultRelevanceConfig returns the default scoring constants.
func DefaultRelevanceConfig() RelevanceConfig {
	return RelevanceConfig{
		TitleBonus:    20,
		AbstractBonus: 10,
		FreshBonus:    15,
		FreshWindow:   7 * 24 * time.Hour,
		RecentBonus:   10,
		RecentWindow:  30 * 24 * time.Hour,
		MaxScore:      100,
	}
}
