package annotator

import (
	"context"
	"testing"

	"dialer_portal_backend/platform/apperr"
	"dialer_portal_backend/platform/logger"
)

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "plain json",
			raw:  `{"outcome": "conversation", "notes": "Spoke with the owner.", "confidence": 0.9}`,
			want: "conversation",
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"outcome\": \"voicemail\", \"notes\": \"Left a message.\", \"confidence\": 0.8}\n```",
			want: "voicemail",
		},
		{
			name:    "outcome outside vocabulary",
			raw:     `{"outcome": "busy", "notes": "", "confidence": 0.5}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "the call went fine",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestion, err := parseSuggestion(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSuggestion: %v", err)
			}
			if suggestion.Outcome != tt.want {
				t.Errorf("outcome = %q, want %q", suggestion.Outcome, tt.want)
			}
		})
	}
}

func TestParseSuggestionClampsConfidence(t *testing.T) {
	suggestion, err := parseSuggestion(`{"outcome": "callback", "notes": "", "confidence": 1.7}`)
	if err != nil {
		t.Fatal(err)
	}
	if suggestion.Confidence != 1 {
		t.Errorf("confidence = %f, want clamped to 1", suggestion.Confidence)
	}
}

func TestSuggestDisabled(t *testing.T) {
	svc := &Service{model: "gemini-2.0-flash", log: logger.New("test")}
	if svc.Enabled() {
		t.Fatal("service with nil client must report disabled")
	}
	_, err := svc.Suggest(context.Background(), "hello")
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Errorf("got %v, want unavailable", err)
	}
}
