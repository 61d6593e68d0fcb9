// Package webhook provides the telephony webhook bounded context: it
// normalizes provider call lifecycle events into call-log rows and
// manages the API keys that authenticate inbound webhooks.
package webhook

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAPIKeyNotFound  = errors.New("webhook API key not found")
	ErrCallLogNotFound = errors.New("call log not found")
)

// CallLog is one normalized provider call, updated in place as lifecycle
// events arrive for the same call SID.
type CallLog struct {
	ID              uuid.UUID
	CallSID         string
	LeadID          *uuid.UUID
	NumberID        *uuid.UUID
	FromNumber      string
	ToNumber        string
	Direction       string
	Status          CallStatus
	DurationSeconds int
	RecordingURL    *string
	RecordingKey    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// APIKey authenticates a webhook caller. Only the hash is stored.
type APIKey struct {
	ID        uuid.UUID
	Name      string
	KeyHash   string
	KeyPrefix string
	IsActive  bool
	CreatedAt time.Time
}

// Repository provides data access for call logs and webhook API keys.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new webhook repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GenerateAPIKey creates a new random API key and returns the plaintext key
// and its hash. The plaintext key is returned only once; only the hash is
// stored.
func GenerateAPIKey() (plaintext string, hash string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", "", err
	}
	plaintext = "twh_" + hex.EncodeToString(bytes)
	h := sha256.Sum256([]byte(plaintext))
	hash = hex.EncodeToString(h[:])
	prefix = plaintext[:12]
	return plaintext, hash, prefix, nil
}

// HashKey hashes a plaintext API key for lookup.
func HashKey(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

// CreateAPIKey stores a new API key hash.
func (r *Repository) CreateAPIKey(ctx context.Context, name, hash, prefix string) (APIKey, error) {
	var key APIKey
	err := r.pool.QueryRow(ctx, `
		INSERT INTO webhook_api_keys (name, key_hash, key_prefix)
		VALUES ($1, $2, $3)
		RETURNING id, name, key_hash, key_prefix, is_active, created_at`,
		name, hash, prefix,
	).Scan(&key.ID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.IsActive, &key.CreatedAt)
	return key, err
}

// GetByHash looks up an active API key by its hash.
func (r *Repository) GetByHash(ctx context.Context, hash string) (APIKey, error) {
	var key APIKey
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, key_hash, key_prefix, is_active, created_at
		FROM webhook_api_keys
		WHERE key_hash = $1 AND is_active = TRUE`,
		hash,
	).Scan(&key.ID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.IsActive, &key.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return APIKey{}, ErrAPIKeyNotFound
	}
	return key, err
}

// ListAPIKeys returns all keys, active and revoked.
func (r *Repository) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, key_hash, key_prefix, is_active, created_at
		FROM webhook_api_keys
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var key APIKey
		if err := rows.Scan(&key.ID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.IsActive, &key.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// RevokeAPIKey deactivates a key. Idempotent.
func (r *Repository) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE webhook_api_keys SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

const callLogColumns = `id, call_sid, lead_id, number_id, from_number, to_number, direction,
	status, duration_seconds, recording_url, recording_key, created_at, updated_at`

func scanCallLog(row pgx.Row) (CallLog, error) {
	var log CallLog
	err := row.Scan(
		&log.ID, &log.CallSID, &log.LeadID, &log.NumberID, &log.FromNumber, &log.ToNumber,
		&log.Direction, &log.Status, &log.DurationSeconds, &log.RecordingURL, &log.RecordingKey,
		&log.CreatedAt, &log.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return CallLog{}, ErrCallLogNotFound
	}
	return log, err
}

// UpsertCallEvent applies a normalized lifecycle event to the call log,
// keyed on the provider call SID. Later events for the same call update
// the row in place; the duration and recording fields only ever grow.
func (r *Repository) UpsertCallEvent(ctx context.Context, event StatusEvent, leadID, numberID *uuid.UUID) (CallLog, error) {
	var recordingURL *string
	if event.RecordingURL != "" {
		recordingURL = &event.RecordingURL
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO call_logs (call_sid, lead_id, number_id, from_number, to_number, direction, status, duration_seconds, recording_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (call_sid) DO UPDATE SET
			status = EXCLUDED.status,
			duration_seconds = GREATEST(call_logs.duration_seconds, EXCLUDED.duration_seconds),
			recording_url = COALESCE(EXCLUDED.recording_url, call_logs.recording_url),
			lead_id = COALESCE(call_logs.lead_id, EXCLUDED.lead_id),
			number_id = COALESCE(call_logs.number_id, EXCLUDED.number_id),
			updated_at = NOW()
		RETURNING `+callLogColumns,
		event.CallSID, leadID, numberID, event.From, event.To, event.Direction,
		string(event.Status), event.DurationSeconds, recordingURL,
	)
	return scanCallLog(row)
}

// SetRecordingKey stores the object-storage key of an archived recording.
func (r *Repository) SetRecordingKey(ctx context.Context, callSID, key string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE call_logs SET recording_key = $2, updated_at = NOW() WHERE call_sid = $1`,
		callSID, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCallLogNotFound
	}
	return nil
}

// GetCallLog returns one call log by provider call SID.
func (r *Repository) GetCallLog(ctx context.Context, callSID string) (CallLog, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+callLogColumns+` FROM call_logs WHERE call_sid = $1`, callSID)
	return scanCallLog(row)
}

// ListCallLogsByLead returns a lead's call logs, newest first.
func (r *Repository) ListCallLogsByLead(ctx context.Context, leadID uuid.UUID, limit int) ([]CallLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+callLogColumns+` FROM call_logs
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []CallLog
	for rows.Next() {
		log, err := scanCallLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
