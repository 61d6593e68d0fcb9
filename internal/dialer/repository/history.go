package repository

import (
	"context"
	"time"

	"dialer_portal_backend/internal/dialer/domain"

	"github.com/google/uuid"
)

// HistoryEntry is one immutable record per disposition event, the audit
// trail of record. Entries are never mutated or deleted.
type HistoryEntry struct {
	ID             uuid.UUID
	LeadID         uuid.UUID
	AttemptNumber  int
	Outcome        domain.Outcome
	Notes          *string
	DemoDate       *time.Time
	CallbackAt     *time.Time
	CallerNumberID *uuid.UUID
	CreatedAt      time.Time
}

type AppendHistoryParams struct {
	LeadID         uuid.UUID
	AttemptNumber  int
	Outcome        domain.Outcome
	Notes          *string
	DemoDate       *time.Time
	CallbackAt     *time.Time
	CallerNumberID *uuid.UUID
}

func (r *Repository) AppendHistory(ctx context.Context, params AppendHistoryParams) (HistoryEntry, error) {
	var entry HistoryEntry
	err := r.pool.QueryRow(ctx, `
		INSERT INTO call_history (lead_id, attempt_number, outcome, notes, demo_date, callback_at, caller_number_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, lead_id, attempt_number, outcome, notes, demo_date, callback_at, caller_number_id, created_at`,
		params.LeadID, params.AttemptNumber, string(params.Outcome), params.Notes,
		params.DemoDate, params.CallbackAt, params.CallerNumberID,
	).Scan(
		&entry.ID, &entry.LeadID, &entry.AttemptNumber, &entry.Outcome, &entry.Notes,
		&entry.DemoDate, &entry.CallbackAt, &entry.CallerNumberID, &entry.CreatedAt,
	)
	return entry, err
}

// ListHistory returns a lead's disposition history, newest first.
func (r *Repository) ListHistory(ctx context.Context, leadID uuid.UUID, limit int) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, attempt_number, outcome, notes, demo_date, callback_at, caller_number_id, created_at
		FROM call_history
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(
			&entry.ID, &entry.LeadID, &entry.AttemptNumber, &entry.Outcome, &entry.Notes,
			&entry.DemoDate, &entry.CallbackAt, &entry.CallerNumberID, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}

// CountHistorySince counts disposition events recorded at or after the
// given instant (used for "calls completed today").
func (r *Repository) CountHistorySince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM call_history WHERE created_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// HourlyBucket aggregates dials and contacts for one hour of the day.
type HourlyBucket struct {
	Hour     int
	Dials    int
	Contacts int
}

// HourlyBreakdown buckets history entries since the given instant by their
// recorded hour of day, with contact counts for a per-hour contact rate.
func (r *Repository) HourlyBreakdown(ctx context.Context, since time.Time) ([]HourlyBucket, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			EXTRACT(HOUR FROM created_at)::int AS hour,
			COUNT(*) AS dials,
			COUNT(*) FILTER (WHERE outcome IN ('conversation', 'demo_booked', 'callback', 'not_interested')) AS contacts
		FROM call_history
		WHERE created_at >= $1
		GROUP BY hour
		ORDER BY hour ASC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]HourlyBucket, 0)
	for rows.Next() {
		var b HourlyBucket
		if err := rows.Scan(&b.Hour, &b.Dials, &b.Contacts); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return buckets, nil
}
