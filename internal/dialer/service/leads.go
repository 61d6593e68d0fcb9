package service

import (
	"context"
	"errors"
	"fmt"

	"dialer_portal_backend/internal/dialer/domain"
	"dialer_portal_backend/internal/dialer/repository"
	"dialer_portal_backend/internal/dialer/transport"
	"dialer_portal_backend/platform/apperr"
	"dialer_portal_backend/platform/phone"

	"github.com/google/uuid"
)

// CreateLead registers a new dialable contact. The phone number is
// normalized to E.164 before storage.
func (s *Service) CreateLead(ctx context.Context, req transport.CreateLeadRequest) (*transport.LeadResponse, error) {
	if !phone.IsValid(req.Phone) {
		return nil, apperr.Validation("phone is not a valid phone number")
	}
	normalized := phone.NormalizeE164(req.Phone)

	maxAttempts := s.cfg.GetDefaultMaxAttempts()
	if req.MaxAttempts != nil {
		maxAttempts = *req.MaxAttempts
	}

	lead, err := s.leads.CreateLead(ctx, repository.CreateLeadParams{
		BusinessName: req.BusinessName,
		Phone:        normalized,
		Website:      req.Website,
		ContactName:  req.ContactName,
		State:        req.State,
		MaxAttempts:  maxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	out := transport.ToLeadResponse(lead)
	return &out, nil
}

// GetLead returns a single lead by id.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (*transport.LeadResponse, error) {
	lead, err := s.leads.GetLeadByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, fmt.Errorf("load lead: %w", err)
	}
	out := transport.ToLeadResponse(lead)
	return &out, nil
}

// ListLeads pages through leads, optionally filtered by status.
func (s *Service) ListLeads(ctx context.Context, status string, limit, offset int) (*transport.LeadListResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	params := repository.ListLeadsParams{Limit: limit, Offset: offset}
	if status != "" {
		leadStatus := domain.LeadStatus(status)
		if !leadStatus.IsValid() {
			return nil, apperr.Validation(fmt.Sprintf("unknown status %q", status))
		}
		params.Status = &leadStatus
	}

	leads, total, err := s.leads.ListLeads(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	return &transport.LeadListResponse{
		Leads: transport.ToLeadResponses(leads),
		Total: total,
	}, nil
}

// UpdateLead edits a lead's contact fields. Scheduling state is owned by
// the disposition path and cannot be edited here.
func (s *Service) UpdateLead(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (*transport.LeadResponse, error) {
	params := repository.UpdateLeadParams{
		BusinessName: req.BusinessName,
		Website:      req.Website,
		ContactName:  req.ContactName,
		State:        req.State,
		MaxAttempts:  req.MaxAttempts,
	}
	if req.Phone != nil {
		if !phone.IsValid(*req.Phone) {
			return nil, apperr.Validation("phone is not a valid phone number")
		}
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}

	lead, err := s.leads.UpdateLead(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, fmt.Errorf("update lead: %w", err)
	}
	out := transport.ToLeadResponse(lead)
	return &out, nil
}

// ArchiveLead pulls a lead out of every queue without deleting it.
func (s *Service) ArchiveLead(ctx context.Context, id uuid.UUID) (*transport.LeadResponse, error) {
	lead, err := s.leads.ArchiveLead(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, fmt.Errorf("archive lead: %w", err)
	}
	out := transport.ToLeadResponse(lead)
	return &out, nil
}
