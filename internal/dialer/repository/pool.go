package repository

import (
	"context"
	"errors"
	"time"

	"dialer_portal_backend/internal/dialer/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PoolEntry is one outbound caller-ID number with its rate state.
type PoolEntry struct {
	ID              uuid.UUID
	PhoneNumber     string
	FriendlyName    string
	AreaCode        string
	State           string
	ProviderSID     *string
	Status          domain.PoolStatus
	CallsThisHour   int
	CallsToday      int
	TotalCalls      int
	MaxCallsPerHour int
	CooldownMinutes int
	SpamReports     int
	LastUsedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const poolColumns = `id, phone_number, friendly_name, area_code, state, provider_sid, status,
	calls_this_hour, calls_today, total_calls, max_calls_per_hour, cooldown_minutes,
	spam_reports, last_used_at, created_at, updated_at`

func scanPoolEntry(row pgx.Row) (PoolEntry, error) {
	var entry PoolEntry
	err := row.Scan(
		&entry.ID, &entry.PhoneNumber, &entry.FriendlyName, &entry.AreaCode, &entry.State,
		&entry.ProviderSID, &entry.Status, &entry.CallsThisHour, &entry.CallsToday,
		&entry.TotalCalls, &entry.MaxCallsPerHour, &entry.CooldownMinutes,
		&entry.SpamReports, &entry.LastUsedAt, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return PoolEntry{}, ErrNumberNotFound
	}
	return entry, err
}

type AddNumberParams struct {
	PhoneNumber     string
	FriendlyName    string
	AreaCode        string
	State           string
	ProviderSID     *string
	MaxCallsPerHour int
	CooldownMinutes int
}

func (r *Repository) AddNumber(ctx context.Context, params AddNumberParams) (PoolEntry, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO number_pool (phone_number, friendly_name, area_code, state, provider_sid, max_calls_per_hour, cooldown_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+poolColumns,
		params.PhoneNumber, params.FriendlyName, params.AreaCode, params.State,
		params.ProviderSID, params.MaxCallsPerHour, params.CooldownMinutes,
	)
	entry, err := scanPoolEntry(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return PoolEntry{}, ErrDuplicateNumber
		}
		return PoolEntry{}, err
	}
	return entry, nil
}

func (r *Repository) GetNumber(ctx context.Context, id uuid.UUID) (PoolEntry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+poolColumns+` FROM number_pool WHERE id = $1`, id)
	return scanPoolEntry(row)
}

func (r *Repository) GetNumberByPhone(ctx context.Context, phone string) (PoolEntry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+poolColumns+` FROM number_pool WHERE phone_number = $1`, phone)
	return scanPoolEntry(row)
}

func (r *Repository) ListNumbers(ctx context.Context) ([]PoolEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+poolColumns+` FROM number_pool ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPoolEntries(rows)
}

// ActiveNumbers returns the entries eligible for selection consideration.
func (r *Repository) ActiveNumbers(ctx context.Context) ([]PoolEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+poolColumns+`
		FROM number_pool
		WHERE status = 'active'
		ORDER BY calls_this_hour ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPoolEntries(rows)
}

// RecordUsage bumps a number's counters after a call in a single atomic
// statement. The status CASE mirrors domain.ApplyCallUsage: the spam
// ceiling wins, the hourly cap cools, retired never downgrades.
func (r *Repository) RecordUsage(ctx context.Context, id uuid.UUID, now time.Time) (PoolEntry, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE number_pool SET
			calls_this_hour = calls_this_hour + 1,
			calls_today = calls_today + 1,
			total_calls = total_calls + 1,
			last_used_at = $2,
			status = CASE
				WHEN spam_reports > 2 AND status <> 'retired' THEN 'retired'
				WHEN calls_this_hour + 1 >= max_calls_per_hour AND status <> 'retired' THEN 'cooling'
				ELSE status
			END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+poolColumns, id, now)
	return scanPoolEntry(row)
}

// RetireNumber soft-retires a caller ID. Idempotent.
func (r *Repository) RetireNumber(ctx context.Context, id uuid.UUID) (PoolEntry, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE number_pool SET status = 'retired', updated_at = NOW()
		WHERE id = $1
		RETURNING `+poolColumns, id)
	return scanPoolEntry(row)
}

// ReactivateNumber puts a number back in rotation and clears its hourly
// counter, an explicit administrative override of the cooldown.
func (r *Repository) ReactivateNumber(ctx context.Context, id uuid.UUID) (PoolEntry, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE number_pool SET status = 'active', calls_this_hour = 0, updated_at = NOW()
		WHERE id = $1
		RETURNING `+poolColumns, id)
	return scanPoolEntry(row)
}

// ReportSpam bumps the spam counter and retires the number once past the
// threshold, atomically.
func (r *Repository) ReportSpam(ctx context.Context, id uuid.UUID) (PoolEntry, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE number_pool SET
			spam_reports = spam_reports + 1,
			status = CASE WHEN spam_reports + 1 > 2 THEN 'retired' ELSE status END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+poolColumns, id)
	return scanPoolEntry(row)
}

// ResetHourlyCounters zeroes calls_this_hour for every non-retired entry
// and un-cools cooling entries. Invoked hourly by the scheduler and
// available as a manual administrative action.
func (r *Repository) ResetHourlyCounters(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE number_pool SET
			calls_this_hour = 0,
			status = CASE WHEN status = 'cooling' THEN 'active' ELSE status END,
			updated_at = NOW()
		WHERE status <> 'retired'`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ResetDailyCounters zeroes calls_today for every non-retired entry.
func (r *Repository) ResetDailyCounters(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE number_pool SET calls_today = 0, updated_at = NOW()
		WHERE status <> 'retired'`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func collectPoolEntries(rows pgx.Rows) ([]PoolEntry, error) {
	entries := make([]PoolEntry, 0)
	for rows.Next() {
		entry, err := scanPoolEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}
