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
	"dialer_portal_backend/platform/phone"

	"github.com/google/uuid"
)

// AddNumber registers a new outbound caller ID in the rotation pool.
func (s *Service) AddNumber(ctx context.Context, req transport.AddNumberRequest) (*transport.PoolEntryResponse, error) {
	if !phone.IsValid(req.PhoneNumber) {
		return nil, apperr.Validation("phoneNumber is not a valid phone number")
	}
	normalized := phone.NormalizeE164(req.PhoneNumber)

	maxPerHour := s.cfg.GetPoolMaxCallsPerHour()
	if req.MaxCallsPerHour != nil {
		maxPerHour = *req.MaxCallsPerHour
	}
	cooldown := s.cfg.GetPoolCooldownMinutes()
	if req.CooldownMinutes != nil {
		cooldown = *req.CooldownMinutes
	}

	entry, err := s.pool.AddNumber(ctx, repository.AddNumberParams{
		PhoneNumber:     normalized,
		FriendlyName:    req.FriendlyName,
		AreaCode:        phone.AreaCode(normalized),
		State:           req.State,
		ProviderSID:     req.ProviderSID,
		MaxCallsPerHour: maxPerHour,
		CooldownMinutes: cooldown,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return nil, apperr.Conflict("phone number already in pool")
		}
		return nil, fmt.Errorf("add number: %w", err)
	}

	out := transport.ToPoolEntryResponse(entry)
	return &out, nil
}

// ListNumbers returns every pool entry, including retired ones.
func (s *Service) ListNumbers(ctx context.Context) ([]transport.PoolEntryResponse, error) {
	entries, err := s.pool.ListNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list numbers: %w", err)
	}
	responses := make([]transport.PoolEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, transport.ToPoolEntryResponse(entry))
	}
	return responses, nil
}

// RetireNumber takes a caller ID out of rotation. Idempotent.
func (s *Service) RetireNumber(ctx context.Context, id uuid.UUID) (*transport.PoolEntryResponse, error) {
	entry, err := s.pool.RetireNumber(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNumberNotFound) {
			return nil, apperr.NotFound("number not found")
		}
		return nil, fmt.Errorf("retire number: %w", err)
	}

	s.bus.Publish(ctx, events.NumberRetired{
		BaseEvent:   events.NewBaseEvent(),
		NumberID:    entry.ID,
		PhoneNumber: entry.PhoneNumber,
		Reason:      "manual",
	})

	out := transport.ToPoolEntryResponse(entry)
	return &out, nil
}

// ReactivateNumber puts a caller ID back in rotation and zeroes its hourly
// counter, an explicit administrative override of the cooldown.
func (s *Service) ReactivateNumber(ctx context.Context, id uuid.UUID) (*transport.PoolEntryResponse, error) {
	entry, err := s.pool.ReactivateNumber(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNumberNotFound) {
			return nil, apperr.NotFound("number not found")
		}
		return nil, fmt.Errorf("reactivate number: %w", err)
	}
	out := transport.ToPoolEntryResponse(entry)
	return &out, nil
}

// ReportSpam bumps a number's spam-report counter; past the threshold the
// number retires immediately.
func (s *Service) ReportSpam(ctx context.Context, id uuid.UUID) (*transport.PoolEntryResponse, error) {
	entry, err := s.pool.ReportSpam(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNumberNotFound) {
			return nil, apperr.NotFound("number not found")
		}
		return nil, fmt.Errorf("report spam: %w", err)
	}

	if entry.Status == domain.PoolStatusRetired {
		s.bus.Publish(ctx, events.NumberRetired{
			BaseEvent:   events.NewBaseEvent(),
			NumberID:    entry.ID,
			PhoneNumber: entry.PhoneNumber,
			Reason:      "spam_reports",
		})
	}

	out := transport.ToPoolEntryResponse(entry)
	return &out, nil
}

// ResetHourlyCounters zeroes calls_this_hour for every non-retired entry
// and un-cools cooling entries. Invoked hourly by the scheduler and
// exposed as a manual administrative action.
func (s *Service) ResetHourlyCounters(ctx context.Context) (*transport.ResetCountersResponse, error) {
	count, err := s.pool.ResetHourlyCounters(ctx)
	if err != nil {
		return nil, fmt.Errorf("reset hourly counters: %w", err)
	}
	return &transport.ResetCountersResponse{NumbersReset: count}, nil
}

// ResetDailyCounters zeroes calls_today for every entry. Invoked daily by
// the scheduler.
func (s *Service) ResetDailyCounters(ctx context.Context) (*transport.ResetCountersResponse, error) {
	count, err := s.pool.ResetDailyCounters(ctx)
	if err != nil {
		return nil, fmt.Errorf("reset daily counters: %w", err)
	}
	return &transport.ResetCountersResponse{NumbersReset: count}, nil
}
