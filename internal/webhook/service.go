package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dialer_portal_backend/internal/events"
	"dialer_portal_backend/platform/apperr"
	"dialer_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// LeadResolver finds the lead a provider call belongs to, by the dialed
// phone number. Implemented by an adapter over the dialer repository.
type LeadResolver interface {
	ResolveLeadByPhone(ctx context.Context, phone string) (uuid.UUID, bool, error)
}

// NumberResolver finds the pool entry a call originated from.
type NumberResolver interface {
	ResolveNumberByPhone(ctx context.Context, phone string) (uuid.UUID, bool, error)
}

// RecordingPresigner mints a short-lived download URL for an archived
// recording object. Implemented by an adapter over object storage.
type RecordingPresigner interface {
	PresignRecording(ctx context.Context, key string) (string, time.Time, error)
}

// Service normalizes provider webhooks into call logs and bus events.
type Service struct {
	repo      *Repository
	leads     LeadResolver
	numbers   NumberResolver
	presigner RecordingPresigner
	bus       events.Bus
	log       *logger.Logger
}

// NewService creates the webhook service. The resolvers are optional; a
// nil resolver just leaves the corresponding call-log column null.
func NewService(repo *Repository, leads LeadResolver, numbers NumberResolver, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, leads: leads, numbers: numbers, bus: bus, log: log}
}

// SetRecordingPresigner enables presigned download URLs for archived
// recordings. Without it, RecordingDownloadURL falls back to the provider
// URL.
func (s *Service) SetRecordingPresigner(presigner RecordingPresigner) {
	s.presigner = presigner
}

// ProcessStatusEvent persists one normalized lifecycle event and publishes
// it on the bus. Resolver failures are non-fatal; the event is stored
// without the association.
func (s *Service) ProcessStatusEvent(ctx context.Context, event StatusEvent) (CallLog, error) {
	if event.CallSID == "" {
		return CallLog{}, apperr.Validation("CallSid is required")
	}

	var leadID, numberID *uuid.UUID
	if s.leads != nil && event.To != "" {
		if id, ok, err := s.leads.ResolveLeadByPhone(ctx, event.To); err != nil {
			s.log.DatabaseError("webhook.resolve_lead", err)
		} else if ok {
			leadID = &id
		}
	}
	if s.numbers != nil && event.From != "" {
		if id, ok, err := s.numbers.ResolveNumberByPhone(ctx, event.From); err != nil {
			s.log.DatabaseError("webhook.resolve_number", err)
		} else if ok {
			numberID = &id
		}
	}

	callLog, err := s.repo.UpsertCallEvent(ctx, event, leadID, numberID)
	if err != nil {
		return CallLog{}, fmt.Errorf("upsert call event: %w", err)
	}

	s.log.WebhookEvent("telephony", "call.status", event.CallSID)
	s.bus.Publish(ctx, events.CallEventReceived{
		BaseEvent: events.NewBaseEvent(),
		CallSID:   event.CallSID,
		EventType: "status",
		Status:    string(event.Status),
	})

	if event.RecordingURL != "" {
		s.bus.Publish(ctx, events.RecordingAvailable{
			BaseEvent:    events.NewBaseEvent(),
			CallSID:      event.CallSID,
			RecordingURL: event.RecordingURL,
			RecordingSID: event.RecordingSID,
		})
	}

	return callLog, nil
}

// CallLogsForLead returns a lead's normalized call logs, newest first.
func (s *Service) CallLogsForLead(ctx context.Context, leadID uuid.UUID, limit int) ([]CallLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	logs, err := s.repo.ListCallLogsByLead(ctx, leadID, limit)
	if err != nil {
		return nil, fmt.Errorf("list call logs: %w", err)
	}
	return logs, nil
}

// RecordingDownload is a resolved download location for a call recording.
type RecordingDownload struct {
	URL       string
	ExpiresAt *time.Time
}

// RecordingDownloadURL resolves where a call's recording can be fetched.
// Archived recordings get a presigned object-storage URL; recordings not
// yet archived fall back to the provider URL.
func (s *Service) RecordingDownloadURL(ctx context.Context, callSID string) (RecordingDownload, error) {
	callLog, err := s.repo.GetCallLog(ctx, callSID)
	if errors.Is(err, ErrCallLogNotFound) {
		return RecordingDownload{}, apperr.NotFound("call log not found")
	}
	if err != nil {
		return RecordingDownload{}, fmt.Errorf("get call log: %w", err)
	}

	if callLog.RecordingKey != nil && s.presigner != nil {
		url, expiresAt, err := s.presigner.PresignRecording(ctx, *callLog.RecordingKey)
		if err != nil {
			return RecordingDownload{}, apperr.Wrap(apperr.KindUnavailable, "presign recording", err)
		}
		return RecordingDownload{URL: url, ExpiresAt: &expiresAt}, nil
	}

	if callLog.RecordingURL != nil {
		return RecordingDownload{URL: *callLog.RecordingURL}, nil
	}

	return RecordingDownload{}, apperr.NotFound("call has no recording")
}

// CreateAPIKey mints a new webhook key and returns the plaintext once.
func (s *Service) CreateAPIKey(ctx context.Context, name string) (APIKey, string, error) {
	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		return APIKey{}, "", fmt.Errorf("generate API key: %w", err)
	}
	key, err := s.repo.CreateAPIKey(ctx, name, hash, prefix)
	if err != nil {
		return APIKey{}, "", fmt.Errorf("store API key: %w", err)
	}
	return key, plaintext, nil
}

// ListAPIKeys returns all webhook keys.
func (s *Service) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	return s.repo.ListAPIKeys(ctx)
}

// RevokeAPIKey deactivates a key.
func (s *Service) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.RevokeAPIKey(ctx, id); err != nil {
		if errors.Is(err, ErrAPIKeyNotFound) {
			return apperr.NotFound("API key not found")
		}
		return fmt.Errorf("revoke API key: %w", err)
	}
	return nil
}
