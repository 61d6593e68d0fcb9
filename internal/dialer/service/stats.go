package service

import (
	"context"
	"fmt"
	"time"

	"dialer_portal_backend/internal/dialer/repository"
	"dialer_portal_backend/internal/dialer/transport"
	"dialer_portal_backend/platform/apperr"
)

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// TodayStats returns today's counter row, zero-valued when no dispositions
// landed yet.
func (s *Service) TodayStats(ctx context.Context) (*transport.DailyStatsResponse, error) {
	stats, err := s.stats.GetStatsByDate(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("load daily stats: %w", err)
	}
	out := transport.ToDailyStatsResponse(stats)
	return &out, nil
}

// RollingStats sums the last N calendar days that actually have rows and
// derives the funnel rates from those sums. Missing dates are not padded
// with zero rows.
func (s *Service) RollingStats(ctx context.Context, days int) (*transport.RollingStatsResponse, error) {
	if days <= 0 || days > 365 {
		return nil, apperr.Validation("days must be between 1 and 365")
	}

	now := s.now()
	since := startOfDay(now).AddDate(0, 0, -(days - 1))
	rows, err := s.stats.StatsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load rolling stats: %w", err)
	}

	totals := repository.DailyStats{StatDate: since}
	for _, row := range rows {
		totals.TotalDials += row.TotalDials
		totals.Contacts += row.Contacts
		totals.Conversations += row.Conversations
		totals.DemosBooked += row.DemosBooked
		totals.DemosHeld += row.DemosHeld
		totals.DealsClosed += row.DealsClosed
		totals.HoursDialed += row.HoursDialed
	}

	return &transport.RollingStatsResponse{
		Days:         days,
		DaysWithData: len(rows),
		Totals:       transport.ToDailyStatsResponse(totals),
		Rates: transport.StatsRates{
			ContactRate:      safeRate(totals.Contacts, totals.TotalDials),
			ConversationRate: safeRate(totals.Conversations, totals.Contacts),
			DemoRate:         safeRate(totals.DemosBooked, totals.Conversations),
			CloseRate:        safeRate(totals.DealsClosed, totals.DemosBooked),
		},
	}, nil
}

// RecordDailyProgress upserts the administratively tracked counters
// (demos held, deals closed, hours dialed) for a date.
func (s *Service) RecordDailyProgress(ctx context.Context, req transport.RecordDailyProgressRequest) (*transport.DailyStatsResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperr.Validation("date must be YYYY-MM-DD")
	}

	stats, err := s.stats.IncrementDailyManual(ctx, date, repository.ManualStatIncrements{
		DemosHeld:   req.DemosHeld,
		DealsClosed: req.DealsClosed,
		HoursDialed: req.HoursDialed,
	})
	if err != nil {
		return nil, fmt.Errorf("record daily progress: %w", err)
	}
	out := transport.ToDailyStatsResponse(stats)
	return &out, nil
}

// HourlyBreakdown buckets today's history entries by hour of day with a
// per-hour contact rate.
func (s *Service) HourlyBreakdown(ctx context.Context) (*transport.HourlyBreakdownResponse, error) {
	buckets, err := s.history.HourlyBreakdown(ctx, startOfDay(s.now()))
	if err != nil {
		return nil, fmt.Errorf("hourly breakdown: %w", err)
	}

	out := make([]transport.HourlyBucketResponse, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, transport.HourlyBucketResponse{
			Hour:        bucket.Hour,
			Dials:       bucket.Dials,
			Contacts:    bucket.Contacts,
			ContactRate: safeRate(bucket.Contacts, bucket.Dials),
		})
	}
	return &transport.HourlyBreakdownResponse{Buckets: out}, nil
}

// safeRate divides numerator by denominator, returning 0 on a zero
// denominator instead of NaN.
func safeRate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}
