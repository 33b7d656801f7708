// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reason

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/arxiv-triage/pkg/types"
)

// abstractLimit bounds the abstract text included in the synthesis
// payload so the call stays within a bounded size.
const abstractLimit = 500

// OpenAIService implements Service against an OpenAI-compatible chat
// API. One call per stage invocation, bounded by the configured
// timeout, no retries.
type OpenAIService struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIService builds a service from the AI configuration.
func NewOpenAIService(cfg types.AIConfig) *OpenAIService {
	return NewOpenAIServiceWithClient(openai.NewClient(cfg.APIKey), cfg.Model, cfg.Timeout)
}

// NewOpenAIServiceWithClient wires an existing client; tests use this
// to point at an httptest server.
func NewOpenAIServiceWithClient(client *openai.Client, model string, timeout time.Duration) *OpenAIService {
	if model == "" {
		model = types.DefaultPipelineConfig().AI.Model
	}
	if timeout <= 0 {
		timeout = types.DefaultPipelineConfig().AI.Timeout
	}
	return &OpenAIService{client: client, model: model, timeout: timeout}
}

// Analyze sends one title+abstract payload and expects a finding.
func (s *OpenAIService) Analyze(ctx context.Context, req AnalyzeRequest) (types.Finding, error) {
	content, err := s.complete(ctx, fmt.Sprintf(analyzePrompt, req.Title, req.Abstract))
	if err != nil {
		return types.Finding{}, err
	}

	var payload struct {
		Contribution string `json:"contribution"`
		Methodology  string `json:"methodology"`
		Significance string `json:"significance"`
	}
	if err := decodeJSON(content, &payload); err != nil {
		return types.Finding{}, err
	}

	f := types.Finding{
		PaperID:      req.PaperID,
		Contribution: strings.TrimSpace(payload.Contribution),
		Methodology:  strings.TrimSpace(payload.Methodology),
		Significance: strings.TrimSpace(payload.Significance),
	}
	if err := ValidateFinding(f); err != nil {
		return types.Finding{}, err
	}
	return f, nil
}

// Synthesize sends the accumulated stage outputs and expects a digest
// with all four sections.
func (s *OpenAIService) Synthesize(ctx context.Context, req SynthesizeRequest) (types.Digest, error) {
	payload, err := json.MarshalIndent(synthesisView(req), "", "  ")
	if err != nil {
		return types.Digest{}, fmt.Errorf("marshaling synthesis payload: %w", err)
	}

	content, err := s.complete(ctx, fmt.Sprintf(synthesizePrompt, req.Query, payload))
	if err != nil {
		return types.Digest{}, err
	}

	var digest types.Digest
	if err := decodeJSON(content, &digest); err != nil {
		return types.Digest{}, err
	}
	if err := ValidateDigest(digest); err != nil {
		return types.Digest{}, err
	}
	return digest, nil
}

// complete makes the single bounded chat-completion call.
func (s *OpenAIService) complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion has no choices", ErrBadShape)
	}
	return resp.Choices[0].Message.Content, nil
}

// decodeJSON unmarshals a model response, tolerating a Markdown code
// fence around the object. Anything that still fails to parse is a
// shape violation.
func decodeJSON(content string, v any) error {
	trimmed := stripFence(content)
	if err := json.Unmarshal([]byte(trimmed), v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadShape, err)
	}
	return nil
}

// stripFence removes a surrounding ```json ... ``` fence if present.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// synthesisView is the bounded payload sent to the synthesis call:
// abstracts are truncated and locator URLs dropped.
func synthesisView(req SynthesizeRequest) map[string]any {
	docs := make([]map[string]any, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, map[string]any{
			"id":        d.ID,
			"title":     d.Title,
			"authors":   d.Authors,
			"abstract":  truncate(d.Abstract, abstractLimit),
			"published": d.Published,
		})
	}
	return map[string]any{
		"documents": docs,
		"findings":  req.Findings,
		"notation":  req.Notation,
		"scores":    req.Scores,
	}
}

// truncate shortens s to at most max bytes plus an ellipsis, backing
// up to a rune boundary so the result stays valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
