package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dialer_portal_backend/internal/dialer/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Lead struct {
	ID            uuid.UUID
	BusinessName  string
	Phone         string
	Website       *string
	ContactName   *string
	State         string
	Status        domain.LeadStatus
	AttemptCount  int
	MaxAttempts   int
	NextCallAt    *time.Time
	LastCalledAt  *time.Time
	LastOutcome   *string
	DemoBooked    bool
	DemoDate      *time.Time
	NotInterested bool
	WrongNumber   bool
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const leadColumns = `id, business_name, phone, website, contact_name, state, status,
	attempt_count, max_attempts, next_call_at, last_called_at, last_outcome,
	demo_booked, demo_date, not_interested, wrong_number, notes, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.BusinessName, &lead.Phone, &lead.Website, &lead.ContactName,
		&lead.State, &lead.Status, &lead.AttemptCount, &lead.MaxAttempts,
		&lead.NextCallAt, &lead.LastCalledAt, &lead.LastOutcome,
		&lead.DemoBooked, &lead.DemoDate, &lead.NotInterested, &lead.WrongNumber,
		&lead.Notes, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

type CreateLeadParams struct {
	BusinessName string
	Phone        string
	Website      *string
	ContactName  *string
	State        string
	MaxAttempts  int
}

func (r *Repository) CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (business_name, phone, website, contact_name, state, status, max_attempts)
		VALUES ($1, $2, $3, $4, $5, 'queued', $6)
		RETURNING `+leadColumns,
		params.BusinessName, params.Phone, params.Website, params.ContactName,
		params.State, params.MaxAttempts,
	)
	return scanLead(row)
}

func (r *Repository) GetLeadByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// GetLeadByPhone resolves a lead from a caller's phone number. Phones are
// stored normalized, so this is an exact match. Newest lead wins when the
// same number was imported twice.
func (r *Repository) GetLeadByPhone(ctx context.Context, phone string) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE phone = $1
		ORDER BY created_at DESC
		LIMIT 1`, phone)
	return scanLead(row)
}

type ListLeadsParams struct {
	Status *domain.LeadStatus
	Limit  int
	Offset int
}

func (r *Repository) ListLeads(ctx context.Context, params ListLeadsParams) ([]Lead, int, error) {
	where := ""
	args := []interface{}{}
	if params.Status != nil {
		where = "WHERE status = $1"
		args = append(args, *params.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM leads %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, leadColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

type UpdateLeadParams struct {
	BusinessName *string
	Phone        *string
	Website      *string
	ContactName  *string
	State        *string
	MaxAttempts  *int
}

// UpdateLead applies administrative edits to contact fields only; the
// scheduling fields are owned by ApplyDisposition.
func (r *Repository) UpdateLead(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.BusinessName != nil {
		addSet("business_name", *params.BusinessName)
	}
	if params.Phone != nil {
		addSet("phone", *params.Phone)
	}
	if params.Website != nil {
		addSet("website", *params.Website)
	}
	if params.ContactName != nil {
		addSet("contact_name", *params.ContactName)
	}
	if params.State != nil {
		addSet("state", *params.State)
	}
	if params.MaxAttempts != nil {
		addSet("max_attempts", *params.MaxAttempts)
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE leads SET %s WHERE id = $1
		RETURNING %s`, strings.Join(sets, ", "), leadColumns), args...)
	return scanLead(row)
}

// ArchiveLead soft-retires a lead from all queues. Archival is a status
// value, never a deletion.
func (r *Repository) ArchiveLead(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET status = 'archived', updated_at = NOW()
		WHERE id = $1
		RETURNING `+leadColumns, id)
	return scanLead(row)
}

type ApplyDispositionParams struct {
	Status         domain.LeadStatus
	Outcome        domain.Outcome
	UpdateNextCall bool
	NextCallAt     time.Time
	DemoBooked     bool
	DemoDate       *time.Time
	NotInterested  bool
	WrongNumber    bool
	NoteLine       string
	Now            time.Time
}

// ApplyDisposition writes the full disposition transition in one statement.
// The attempt bump happens in SQL so concurrent events on the same lead
// cannot lose an increment, and the note line is appended, never replacing
// prior notes.
func (r *Repository) ApplyDisposition(ctx context.Context, id uuid.UUID, params ApplyDispositionParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			status = $2,
			attempt_count = attempt_count + 1,
			next_call_at = CASE WHEN $3 THEN $4::timestamptz ELSE next_call_at END,
			last_called_at = $5,
			last_outcome = $6,
			demo_booked = demo_booked OR $7,
			demo_date = COALESCE($8, demo_date),
			not_interested = not_interested OR $9,
			wrong_number = wrong_number OR $10,
			notes = CASE WHEN notes = '' THEN $11 ELSE notes || E'\n' || $11 END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+leadColumns,
		id, params.Status, params.UpdateNextCall, params.NextCallAt, params.Now,
		string(params.Outcome), params.DemoBooked, params.DemoDate,
		params.NotInterested, params.WrongNumber, params.NoteLine,
	)
	return scanLead(row)
}

// CallbacksDue returns overdue callback leads, most overdue first.
func (r *Repository) CallbacksDue(ctx context.Context, now time.Time, limit int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE status = 'callback'
			AND next_call_at IS NOT NULL AND next_call_at <= $1
			AND attempt_count < max_attempts
		ORDER BY next_call_at ASC
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

// QueuedLeads returns dialable queued leads, least-attempted and oldest
// first so fresh leads are not starved behind a long tail of retries.
// An empty states slice disables the regional filter.
func (r *Repository) QueuedLeads(ctx context.Context, states []string, limit int) ([]Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE status = 'queued' AND attempt_count < max_attempts`
	args := []interface{}{limit}
	if len(states) > 0 {
		args = append(args, states)
		query += ` AND state = ANY($2)`
	}
	query += `
		ORDER BY attempt_count ASC, created_at ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

// CountCallable counts leads still dialable, optionally scoped to states.
func (r *Repository) CountCallable(ctx context.Context, states []string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM leads
		WHERE status IN ('queued', 'callback', 'in_progress')
			AND attempt_count < max_attempts`
	args := []interface{}{}
	if len(states) > 0 {
		args = append(args, states)
		query += ` AND state = ANY($1)`
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}
