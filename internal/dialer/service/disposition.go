package service

import (
	"context"
	"errors"
	"fmt"

	"dialer_portal_backend/internal/dialer/domain"
	"dialer_portal_backend/internal/dialer/repository"
	"dialer_portal_backend/internal/dialer/transport"
	"dialer_portal_backend/internal/events"
	"dialer_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

// RecordDisposition applies a call outcome to a lead: state transition,
// attempt bump, note line, history entry, daily stats and the caller-ID
// usage counters, then publishes a DispositionRecorded event.
func (s *Service) RecordDisposition(ctx context.Context, leadID uuid.UUID, req transport.RecordDispositionRequest) (*transport.DispositionResponse, error) {
	outcome := domain.Outcome(req.Outcome)
	if !outcome.IsValid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown outcome %q", req.Outcome))
	}
	lead, err := s.dispositions.GetLeadByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, fmt.Errorf("load lead: %w", err)
	}

	now := s.now()
	decision := domain.Decide(
		domain.LeadState{AttemptCount: lead.AttemptCount, MaxAttempts: lead.MaxAttempts},
		domain.DispositionInput{
			Outcome:    outcome,
			Notes:      req.Notes,
			DemoDate:   req.DemoDate,
			CallbackAt: req.CallbackAt,
		},
		now, s.randFloat,
	)

	updated, err := s.dispositions.ApplyDisposition(ctx, leadID, repository.ApplyDispositionParams{
		Status:         decision.NewStatus,
		Outcome:        outcome,
		UpdateNextCall: decision.UpdateNextCall,
		NextCallAt:     decision.NextCallAt,
		DemoBooked:     decision.DemoBooked,
		DemoDate:       decision.DemoDate,
		NotInterested:  decision.NotInterested,
		WrongNumber:    decision.WrongNumber,
		NoteLine:       decision.NoteLine,
		Now:            now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, fmt.Errorf("apply disposition: %w", err)
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}
	if _, err := s.history.AppendHistory(ctx, repository.AppendHistoryParams{
		LeadID:         leadID,
		AttemptNumber:  updated.AttemptCount,
		Outcome:        outcome,
		Notes:          notes,
		DemoDate:       req.DemoDate,
		CallbackAt:     req.CallbackAt,
		CallerNumberID: req.CallerNumberID,
	}); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	inc := repository.StatIncrements{TotalDials: 1}
	if decision.ContactMade {
		inc.Contacts = 1
	}
	if decision.IsConversation {
		inc.Conversations = 1
	}
	if outcome == domain.OutcomeDemoBooked {
		inc.DemosBooked = 1
	}
	if _, err := s.stats.IncrementDaily(ctx, now, inc); err != nil {
		return nil, fmt.Errorf("increment daily stats: %w", err)
	}

	// Best effort: a failed counter bump must not lose the disposition.
	if req.CallerNumberID != nil {
		if _, err := s.pool.RecordUsage(ctx, *req.CallerNumberID, now); err != nil {
			s.log.PoolDegraded(req.CallerNumberID.String(), err)
		}
	}

	s.log.DispositionRecorded(leadID.String(), string(outcome), string(decision.NewStatus), updated.AttemptCount)
	s.bus.Publish(ctx, events.DispositionRecorded{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       leadID,
		Outcome:      string(outcome),
		NewStatus:    string(decision.NewStatus),
		AttemptCount: updated.AttemptCount,
	})

	return &transport.DispositionResponse{
		Lead:           transport.ToLeadResponse(updated),
		NewStatus:      string(decision.NewStatus),
		AttemptCount:   updated.AttemptCount,
		ContactMade:    decision.ContactMade,
		IsConversation: decision.IsConversation,
	}, nil
}

// History returns a lead's disposition history, newest first.
func (s *Service) History(ctx context.Context, leadID uuid.UUID, limit int) ([]transport.HistoryEntryResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if _, err := s.leads.GetLeadByID(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, fmt.Errorf("load lead: %w", err)
	}
	entries, err := s.history.ListHistory(ctx, leadID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	responses := make([]transport.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, transport.ToHistoryEntryResponse(entry))
	}
	return responses, nil
}
