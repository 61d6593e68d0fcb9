package adapters

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"dialer_portal_backend/internal/dialer/repository"
	"dialer_portal_backend/internal/webhook"
	"dialer_portal_backend/platform/phone"
)

// DialerLeadResolver adapts the dialer repository for webhook call-log
// association. Phone numbers arriving from the provider are normalized
// before lookup since the leads table stores E.164.
type DialerLeadResolver struct {
	repo *repository.Repository
}

func NewDialerLeadResolver(repo *repository.Repository) *DialerLeadResolver {
	return &DialerLeadResolver{repo: repo}
}

func (a *DialerLeadResolver) ResolveLeadByPhone(ctx context.Context, raw string) (uuid.UUID, bool, error) {
	normalized := phone.NormalizeE164(raw)
	if normalized == "" {
		return uuid.Nil, false, nil
	}

	lead, err := a.repo.GetLeadByPhone(ctx, normalized)
	if errors.Is(err, repository.ErrNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return lead.ID, true, nil
}

// DialerNumberResolver maps a provider "from" number back to the pool
// entry that placed the call.
type DialerNumberResolver struct {
	repo *repository.Repository
}

func NewDialerNumberResolver(repo *repository.Repository) *DialerNumberResolver {
	return &DialerNumberResolver{repo: repo}
}

func (a *DialerNumberResolver) ResolveNumberByPhone(ctx context.Context, raw string) (uuid.UUID, bool, error) {
	normalized := phone.NormalizeE164(raw)
	if normalized == "" {
		return uuid.Nil, false, nil
	}

	entry, err := a.repo.GetNumberByPhone(ctx, normalized)
	if errors.Is(err, repository.ErrNumberNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return entry.ID, true, nil
}

var _ webhook.LeadResolver = (*DialerLeadResolver)(nil)
var _ webhook.NumberResolver = (*DialerNumberResolver)(nil)
