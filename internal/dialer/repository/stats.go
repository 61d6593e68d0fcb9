package repository

import (
	"context"
	"time"
)

// DailyStats is the denormalized per-calendar-date counter row.
type DailyStats struct {
	StatDate      time.Time
	TotalDials    int
	Contacts      int
	Conversations int
	DemosBooked   int
	DemosHeld     int
	DealsClosed   int
	HoursDialed   float64
}

const statsColumns = `stat_date, total_dials, contacts, conversations, demos_booked, demos_held, deals_closed, hours_dialed`

// StatIncrements are the per-disposition counter deltas.
type StatIncrements struct {
	TotalDials    int
	Contacts      int
	Conversations int
	DemosBooked   int
}

// IncrementDaily bumps today's row in one atomic upsert. Concurrent
// disposition events on the same date land as serialized increments, never
// a read-then-write overwrite.
func (r *Repository) IncrementDaily(ctx context.Context, date time.Time, inc StatIncrements) (DailyStats, error) {
	var stats DailyStats
	err := r.pool.QueryRow(ctx, `
		INSERT INTO daily_call_stats (stat_date, total_dials, contacts, conversations, demos_booked)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (stat_date) DO UPDATE SET
			total_dials = daily_call_stats.total_dials + EXCLUDED.total_dials,
			contacts = daily_call_stats.contacts + EXCLUDED.contacts,
			conversations = daily_call_stats.conversations + EXCLUDED.conversations,
			demos_booked = daily_call_stats.demos_booked + EXCLUDED.demos_booked,
			updated_at = NOW()
		RETURNING `+statsColumns,
		date, inc.TotalDials, inc.Contacts, inc.Conversations, inc.DemosBooked,
	).Scan(
		&stats.StatDate, &stats.TotalDials, &stats.Contacts, &stats.Conversations,
		&stats.DemosBooked, &stats.DemosHeld, &stats.DealsClosed, &stats.HoursDialed,
	)
	return stats, err
}

// ManualStatIncrements are the counters maintained by administrative
// check-ins rather than disposition events.
type ManualStatIncrements struct {
	DemosHeld   int
	DealsClosed int
	HoursDialed float64
}

// IncrementDailyManual upserts the administratively tracked counters for a
// date with the same atomic contract as IncrementDaily.
func (r *Repository) IncrementDailyManual(ctx context.Context, date time.Time, inc ManualStatIncrements) (DailyStats, error) {
	var stats DailyStats
	err := r.pool.QueryRow(ctx, `
		INSERT INTO daily_call_stats (stat_date, demos_held, deals_closed, hours_dialed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (stat_date) DO UPDATE SET
			demos_held = daily_call_stats.demos_held + EXCLUDED.demos_held,
			deals_closed = daily_call_stats.deals_closed + EXCLUDED.deals_closed,
			hours_dialed = daily_call_stats.hours_dialed + EXCLUDED.hours_dialed,
			updated_at = NOW()
		RETURNING `+statsColumns,
		date, inc.DemosHeld, inc.DealsClosed, inc.HoursDialed,
	).Scan(
		&stats.StatDate, &stats.TotalDials, &stats.Contacts, &stats.Conversations,
		&stats.DemosBooked, &stats.DemosHeld, &stats.DealsClosed, &stats.HoursDialed,
	)
	return stats, err
}

// GetStatsByDate returns the row for a date, or an all-zero row when none
// exists yet.
func (r *Repository) GetStatsByDate(ctx context.Context, date time.Time) (DailyStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+statsColumns+` FROM daily_call_stats WHERE stat_date = $1`, date)
	if err != nil {
		return DailyStats{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Err() != nil {
			return DailyStats{}, rows.Err()
		}
		return DailyStats{StatDate: date}, nil
	}

	var stats DailyStats
	err = rows.Scan(
		&stats.StatDate, &stats.TotalDials, &stats.Contacts, &stats.Conversations,
		&stats.DemosBooked, &stats.DemosHeld, &stats.DealsClosed, &stats.HoursDialed,
	)
	return stats, err
}

// StatsSince returns the daily rows in [since, now], oldest first. Dates
// with no activity simply have no row; callers aggregate over what exists.
func (r *Repository) StatsSince(ctx context.Context, since time.Time) ([]DailyStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+statsColumns+`
		FROM daily_call_stats
		WHERE stat_date >= $1
		ORDER BY stat_date ASC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]DailyStats, 0)
	for rows.Next() {
		var stats DailyStats
		if err := rows.Scan(
			&stats.StatDate, &stats.TotalDials, &stats.Contacts, &stats.Conversations,
			&stats.DemosBooked, &stats.DemosHeld, &stats.DealsClosed, &stats.HoursDialed,
		); err != nil {
			return nil, err
		}
		results = append(results, stats)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return results, nil
}
