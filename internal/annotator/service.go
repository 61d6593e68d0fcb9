// Package annotator suggests call dispositions from transcripts using
// Gemini. The suggestion is advisory input for the caller; it never
// triggers a state transition on its own.
package annotator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dialer_portal_backend/internal/dialer/domain"
	"dialer_portal_backend/platform/apperr"
	"dialer_portal_backend/platform/config"
	"dialer_portal_backend/platform/logger"

	"google.golang.org/genai"
)

// Suggestion is the advisory annotation for one call transcript.
type Suggestion struct {
	Outcome    string  `json:"outcome"`
	Notes      string  `json:"notes"`
	Confidence float64 `json:"confidence"`
}

const suggestPrompt = `You are reviewing the transcript of one outbound cold call.
Classify the call into exactly one outcome from this list:
no_answer, voicemail, gatekeeper, conversation, demo_booked, not_interested, wrong_number, callback.

Respond with JSON only, no markdown fences:
{"outcome": "<one outcome>", "notes": "<one factual sentence summarizing the call>", "confidence": <0.0-1.0>}

Transcript:
%s`

// Service wraps the Gemini client for transcript annotation.
type Service struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// New creates the annotator service. Returns a disabled service (nil
// client) when no API key is configured; Suggest then reports
// Unavailable and callers fall back to manual outcomes.
func New(ctx context.Context, cfg config.AnnotatorConfig, log *logger.Logger) (*Service, error) {
	if !cfg.IsAnnotatorEnabled() {
		return &Service{model: cfg.GetAnnotatorModel(), log: log}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Service{client: client, model: cfg.GetAnnotatorModel(), log: log}, nil
}

// Enabled reports whether the annotator can produce suggestions.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Suggest annotates one transcript. Failures are reported as Unavailable
// so the HTTP layer maps them to 503 and the caller records the outcome
// manually.
func (s *Service) Suggest(ctx context.Context, transcript string) (*Suggestion, error) {
	if transcript == "" {
		return nil, apperr.Validation("transcript is required")
	}
	if s.client == nil {
		return nil, apperr.Unavailable("annotator is not configured")
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model,
		genai.Text(fmt.Sprintf(suggestPrompt, transcript)),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		s.log.Error("annotator request failed", "error", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "annotation failed", err)
	}

	suggestion, err := parseSuggestion(resp.Text())
	if err != nil {
		s.log.Error("annotator returned unparseable output", "error", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "annotation failed", err)
	}

	return suggestion, nil
}

// parseSuggestion decodes the model output, tolerating stray markdown
// fences, and validates the outcome against the closed vocabulary.
func parseSuggestion(raw string) (*Suggestion, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(raw), &suggestion); err != nil {
		return nil, fmt.Errorf("decode suggestion: %w", err)
	}

	if !domain.Outcome(suggestion.Outcome).IsValid() {
		return nil, fmt.Errorf("suggested outcome %q is not in the vocabulary", suggestion.Outcome)
	}
	if suggestion.Confidence < 0 {
		suggestion.Confidence = 0
	}
	if suggestion.Confidence > 1 {
		suggestion.Confidence = 1
	}

	return &suggestion, nil
}
