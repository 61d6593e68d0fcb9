package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role interfaces over the repository. Services depend on the narrow slice
// they need, which keeps them testable with small fakes.

type LeadReader interface {
	GetLeadByID(ctx context.Context, id uuid.UUID) (Lead, error)
}

type LeadManager interface {
	LeadReader
	CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error)
	ListLeads(ctx context.Context, params ListLeadsParams) ([]Lead, int, error)
	UpdateLead(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error)
	ArchiveLead(ctx context.Context, id uuid.UUID) (Lead, error)
}

type DispositionStore interface {
	LeadReader
	ApplyDisposition(ctx context.Context, id uuid.UUID, params ApplyDispositionParams) (Lead, error)
}

type QueueReader interface {
	CallbacksDue(ctx context.Context, now time.Time, limit int) ([]Lead, error)
	QueuedLeads(ctx context.Context, states []string, limit int) ([]Lead, error)
	CountCallable(ctx context.Context, states []string) (int, error)
}

type HistoryStore interface {
	AppendHistory(ctx context.Context, params AppendHistoryParams) (HistoryEntry, error)
	ListHistory(ctx context.Context, leadID uuid.UUID, limit int) ([]HistoryEntry, error)
	CountHistorySince(ctx context.Context, since time.Time) (int, error)
	HourlyBreakdown(ctx context.Context, since time.Time) ([]HourlyBucket, error)
}

type PoolStore interface {
	AddNumber(ctx context.Context, params AddNumberParams) (PoolEntry, error)
	GetNumber(ctx context.Context, id uuid.UUID) (PoolEntry, error)
	ListNumbers(ctx context.Context) ([]PoolEntry, error)
	ActiveNumbers(ctx context.Context) ([]PoolEntry, error)
	RecordUsage(ctx context.Context, id uuid.UUID, now time.Time) (PoolEntry, error)
	RetireNumber(ctx context.Context, id uuid.UUID) (PoolEntry, error)
	ReactivateNumber(ctx context.Context, id uuid.UUID) (PoolEntry, error)
	ReportSpam(ctx context.Context, id uuid.UUID) (PoolEntry, error)
	ResetHourlyCounters(ctx context.Context) (int, error)
	ResetDailyCounters(ctx context.Context) (int, error)
}

type StatsStore interface {
	IncrementDaily(ctx context.Context, date time.Time, inc StatIncrements) (DailyStats, error)
	IncrementDailyManual(ctx context.Context, date time.Time, inc ManualStatIncrements) (DailyStats, error)
	GetStatsByDate(ctx context.Context, date time.Time) (DailyStats, error)
	StatsSince(ctx context.Context, since time.Time) ([]DailyStats, error)
}
