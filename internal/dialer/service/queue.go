package service

import (
	"context"
	"fmt"
	"sync"

	"dialer_portal_backend/internal/dialer/domain"
	"dialer_portal_backend/internal/dialer/repository"
	"dialer_portal_backend/internal/dialer/transport"
	"dialer_portal_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

// GetQueue builds the call queue for right now: due callbacks first, then
// region-targeted queued leads, plus progress counters and a suggested
// caller ID. Read only, and it degrades to an empty queue on sub-query
// failure so the UI can still render.
func (s *Service) GetQueue(ctx context.Context, limit int, regionOverride string) (*transport.QueueResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = s.cfg.GetDefaultQueueLimit()
	}

	now := s.now()
	region := domain.CurrentRegion(now)
	if regionOverride != "" {
		override := domain.Region(regionOverride)
		if !override.IsValid() {
			return nil, apperr.Validation(fmt.Sprintf("unknown region %q", regionOverride))
		}
		region = override
	}

	resp := &transport.QueueResponse{
		Leads:             []transport.LeadResponse{},
		CallbacksDue:      []transport.LeadResponse{},
		CurrentRegion:     string(region),
		BreakdownByRegion: map[string]int{},
	}

	callbacks, err := s.queue.CallbacksDue(ctx, now, s.cfg.GetCallbackBatchSize())
	if err != nil {
		s.log.DatabaseError("queue.callbacks_due", err)
		return resp, nil
	}

	var states []string
	if region != "" {
		states = domain.StatesForRegion(region)
	}
	queued, err := s.queue.QueuedLeads(ctx, states, limit)
	if err != nil {
		s.log.DatabaseError("queue.queued_leads", err)
		return resp, nil
	}

	merged := mergeQueue(callbacks, queued, limit)
	resp.CallbacksDue = transport.ToLeadResponses(callbacks)
	resp.Leads = transport.ToLeadResponses(merged)

	if completed, err := s.history.CountHistorySince(ctx, startOfDay(now)); err != nil {
		s.log.DatabaseError("queue.completed_today", err)
	} else {
		resp.CompletedToday = completed
	}

	if total, err := s.queue.CountCallable(ctx, nil); err != nil {
		s.log.DatabaseError("queue.count_callable", err)
	} else {
		resp.TotalToday = total
	}

	resp.BreakdownByRegion = s.regionBreakdown(ctx)

	if len(merged) > 0 {
		resp.SelectedNumber = s.suggestNumber(ctx, merged[0].State)
	} else {
		resp.SelectedNumber = s.suggestNumber(ctx, "")
	}

	return resp, nil
}

// regionBreakdown counts remaining callable leads per region. The counts
// are always over all four regions, independent of the queue's target
// region. The four count queries run concurrently.
func (s *Service) regionBreakdown(ctx context.Context) map[string]int {
	breakdown := make(map[string]int, len(domain.Regions))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, region := range domain.Regions {
		g.Go(func() error {
			count, err := s.queue.CountCallable(gctx, domain.StatesForRegion(region))
			if err != nil {
				return fmt.Errorf("count region %s: %w", region, err)
			}
			mu.Lock()
			breakdown[string(region)] = count
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.DatabaseError("queue.region_breakdown", err)
		return map[string]int{}
	}
	return breakdown
}

// suggestNumber runs the rotation heuristic over the active pool. A nil
// result means no eligible caller ID; the dial falls back to an unmanaged
// path.
func (s *Service) suggestNumber(ctx context.Context, leadState string) *transport.PoolEntryResponse {
	entries, err := s.pool.ActiveNumbers(ctx)
	if err != nil {
		s.log.DatabaseError("queue.active_numbers", err)
		return nil
	}

	snapshots := make([]domain.PoolSnapshot, 0, len(entries))
	byID := make(map[string]repository.PoolEntry, len(entries))
	for _, entry := range entries {
		byID[entry.ID.String()] = entry
		snapshots = append(snapshots, domain.PoolSnapshot{
			ID:              entry.ID.String(),
			PhoneNumber:     entry.PhoneNumber,
			State:           entry.State,
			Status:          entry.Status,
			CallsThisHour:   entry.CallsThisHour,
			CallsToday:      entry.CallsToday,
			TotalCalls:      entry.TotalCalls,
			MaxCallsPerHour: entry.MaxCallsPerHour,
			SpamReports:     entry.SpamReports,
		})
	}

	selected, ok := domain.SelectNumber(snapshots, leadState)
	if !ok {
		return nil
	}
	entry := byID[selected.ID]
	out := transport.ToPoolEntryResponse(entry)
	return &out
}

// mergeQueue concatenates due callbacks ahead of the regular queue,
// de-duplicating by lead id.
func mergeQueue(callbacks, queued []repository.Lead, limit int) []repository.Lead {
	seen := make(map[string]struct{}, len(callbacks)+len(queued))
	merged := make([]repository.Lead, 0, len(callbacks)+len(queued))
	for _, lead := range callbacks {
		if _, dup := seen[lead.ID.String()]; dup {
			continue
		}
		seen[lead.ID.String()] = struct{}{}
		merged = append(merged, lead)
	}
	for _, lead := range queued {
		if len(merged) >= limit+len(callbacks) {
			break
		}
		if _, dup := seen[lead.ID.String()]; dup {
			continue
		}
		seen[lead.ID.String()] = struct{}{}
		merged = append(merged, lead)
	}
	return merged
}
