package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"dialer_portal_backend/internal/dialer/domain"
	"dialer_portal_backend/internal/dialer/repository"
	"dialer_portal_backend/internal/dialer/transport"
	"dialer_portal_backend/platform/apperr"
	"dialer_portal_backend/platform/config"
	"dialer_portal_backend/platform/events"
	"dialer_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the repository, mirroring the
// SQL semantics the service relies on.
type fakeStore struct {
	mu      sync.Mutex
	leads   map[uuid.UUID]repository.Lead
	history []repository.HistoryEntry
	pool    map[uuid.UUID]repository.PoolEntry
	stats   map[string]repository.DailyStats

	failQueued  bool
	failUsage   bool
	usageCalled int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads: make(map[uuid.UUID]repository.Lead),
		pool:  make(map[uuid.UUID]repository.PoolEntry),
		stats: make(map[string]repository.DailyStats),
	}
}

func (f *fakeStore) GetLeadByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) CreateLead(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead := repository.Lead{
		ID:           uuid.New(),
		BusinessName: params.BusinessName,
		Phone:        params.Phone,
		Website:      params.Website,
		ContactName:  params.ContactName,
		State:        params.State,
		Status:       domain.LeadStatusQueued,
		MaxAttempts:  params.MaxAttempts,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) ListLeads(_ context.Context, params repository.ListLeadsParams) ([]repository.Lead, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Lead
	for _, lead := range f.leads {
		if params.Status != nil && lead.Status != *params.Status {
			continue
		}
		out = append(out, lead)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateLead(_ context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	if params.BusinessName != nil {
		lead.BusinessName = *params.BusinessName
	}
	if params.Phone != nil {
		lead.Phone = *params.Phone
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) ArchiveLead(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.Status = domain.LeadStatusArchived
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) ApplyDisposition(_ context.Context, id uuid.UUID, params repository.ApplyDispositionParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.Status = params.Status
	lead.AttemptCount++
	if params.UpdateNextCall {
		next := params.NextCallAt
		lead.NextCallAt = &next
	}
	now := params.Now
	lead.LastCalledAt = &now
	outcome := string(params.Outcome)
	lead.LastOutcome = &outcome
	lead.DemoBooked = lead.DemoBooked || params.DemoBooked
	if params.DemoDate != nil {
		lead.DemoDate = params.DemoDate
	}
	lead.NotInterested = lead.NotInterested || params.NotInterested
	lead.WrongNumber = lead.WrongNumber || params.WrongNumber
	if lead.Notes == "" {
		lead.Notes = params.NoteLine
	} else {
		lead.Notes = lead.Notes + "\n" + params.NoteLine
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) CallbacksDue(_ context.Context, now time.Time, limit int) ([]repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Lead
	for _, lead := range f.leads {
		if lead.Status != domain.LeadStatusCallback || lead.NextCallAt == nil {
			continue
		}
		if lead.NextCallAt.After(now) || lead.AttemptCount >= lead.MaxAttempts {
			continue
		}
		out = append(out, lead)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextCallAt.Before(*out[j].NextCallAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) QueuedLeads(_ context.Context, states []string, limit int) ([]repository.Lead, error) {
	if f.failQueued {
		return nil, errors.New("store unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Lead
	for _, lead := range f.leads {
		if lead.Status != domain.LeadStatusQueued || lead.AttemptCount >= lead.MaxAttempts {
			continue
		}
		if states != nil && !containsState(states, lead.State) {
			continue
		}
		out = append(out, lead)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AttemptCount != out[j].AttemptCount {
			return out[i].AttemptCount < out[j].AttemptCount
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CountCallable(_ context.Context, states []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, lead := range f.leads {
		if lead.Status != domain.LeadStatusQueued && lead.Status != domain.LeadStatusCallback {
			continue
		}
		if lead.AttemptCount >= lead.MaxAttempts {
			continue
		}
		if states != nil && !containsState(states, lead.State) {
			continue
		}
		count++
	}
	return count, nil
}

func containsState(states []string, state string) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

func (f *fakeStore) AppendHistory(_ context.Context, params repository.AppendHistoryParams) (repository.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := repository.HistoryEntry{
		ID:             uuid.New(),
		LeadID:         params.LeadID,
		AttemptNumber:  params.AttemptNumber,
		Outcome:        params.Outcome,
		Notes:          params.Notes,
		DemoDate:       params.DemoDate,
		CallbackAt:     params.CallbackAt,
		CallerNumberID: params.CallerNumberID,
		CreatedAt:      time.Now(),
	}
	f.history = append(f.history, entry)
	return entry, nil
}

func (f *fakeStore) ListHistory(_ context.Context, leadID uuid.UUID, limit int) ([]repository.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.HistoryEntry
	for _, entry := range f.history {
		if entry.LeadID == leadID {
			out = append(out, entry)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CountHistorySince(_ context.Context, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, entry := range f.history {
		if !entry.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) HourlyBreakdown(_ context.Context, _ time.Time) ([]repository.HourlyBucket, error) {
	return nil, nil
}

func (f *fakeStore) AddNumber(_ context.Context, params repository.AddNumberParams) (repository.PoolEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range f.pool {
		if entry.PhoneNumber == params.PhoneNumber {
			return repository.PoolEntry{}, repository.ErrDuplicateNumber
		}
	}
	entry := repository.PoolEntry{
		ID:              uuid.New(),
		PhoneNumber:     params.PhoneNumber,
		FriendlyName:    params.FriendlyName,
		AreaCode:        params.AreaCode,
		State:           params.State,
		ProviderSID:     params.ProviderSID,
		Status:          domain.PoolStatusActive,
		MaxCallsPerHour: params.MaxCallsPerHour,
		CooldownMinutes: params.CooldownMinutes,
	}
	f.pool[entry.ID] = entry
	return entry, nil
}

func (f *fakeStore) GetNumber(_ context.Context, id uuid.UUID) (repository.PoolEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.pool[id]
	if !ok {
		return repository.PoolEntry{}, repository.ErrNumberNotFound
	}
	return entry, nil
}

func (f *fakeStore) ListNumbers(_ context.Context) ([]repository.PoolEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.PoolEntry
	for _, entry := range f.pool {
		out = append(out, entry)
	}
	return out, nil
}

func (f *fakeStore) ActiveNumbers(_ context.Context) ([]repository.PoolEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.PoolEntry
	for _, entry := range f.pool {
		if entry.Status == domain.PoolStatusActive {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeStore) RecordUsage(_ context.Context, id uuid.UUID, now time.Time) (repository.PoolEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usageCalled++
	if f.failUsage {
		return repository.PoolEntry{}, errors.New("store unavailable")
	}
	entry, ok := f.pool[id]
	if !ok {
		return repository.PoolEntry{}, repository.ErrNumberNotFound
	}
	usage := domain.ApplyCallUsage(domain.PoolSnapshot{
		Status:          entry.Status,
		CallsThisHour:   entry.CallsThisHour,
		CallsToday:      entry.CallsToday,
		TotalCalls:      entry.TotalCalls,
		MaxCallsPerHour: entry.MaxCallsPerHour,
		SpamReports:     entry.SpamReports,
	}, now)
	entry.CallsThisHour = usage.CallsThisHour
	entry.CallsToday = usage.CallsToday
	entry.TotalCalls = usage.TotalCalls
	entry.Status = usage.Status
	entry.LastUsedAt = &usage.LastUsedAt
	f.pool[id] = entry
	return entry, nil
}

func (f *fakeStore) RetireNumber(_ context.Context, id uuid.UUID) (repository.PoolEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.pool[id]
	if !ok {
		return repository.PoolEntry{}, repository.ErrNumberNotFound
	}
	entry.Status = domain.PoolStatusRetired
	f.pool[id] = entry
	return entry, nil
}

func (f *fakeStore) ReactivateNumber(_ context.Context, id uuid.UUID) (repository.PoolEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.pool[id]
	if !ok {
		return repository.PoolEntry{}, repository.ErrNumberNotFound
	}
	entry.Status = domain.PoolStatusActive
	entry.CallsThisHour = 0
	f.pool[id] = entry
	return entry, nil
}

func (f *fakeStore) ReportSpam(_ context.Context, id uuid.UUID) (repository.PoolEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.pool[id]
	if !ok {
		return repository.PoolEntry{}, repository.ErrNumberNotFound
	}
	entry.SpamReports++
	if entry.SpamReports > domain.SpamReportThreshold {
		entry.Status = domain.PoolStatusRetired
	}
	f.pool[id] = entry
	return entry, nil
}

func (f *fakeStore) ResetHourlyCounters(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for id, entry := range f.pool {
		if entry.Status == domain.PoolStatusRetired {
			continue
		}
		entry.CallsThisHour = 0
		if entry.Status == domain.PoolStatusCooling {
			entry.Status = domain.PoolStatusActive
		}
		f.pool[id] = entry
		count++
	}
	return count, nil
}

func (f *fakeStore) ResetDailyCounters(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, entry := range f.pool {
		entry.CallsToday = 0
		f.pool[id] = entry
	}
	return len(f.pool), nil
}

func (f *fakeStore) IncrementDaily(_ context.Context, date time.Time, inc repository.StatIncrements) (repository.DailyStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := date.Format("2006-01-02")
	stats := f.stats[key]
	stats.StatDate = date
	stats.TotalDials += inc.TotalDials
	stats.Contacts += inc.Contacts
	stats.Conversations += inc.Conversations
	stats.DemosBooked += inc.DemosBooked
	f.stats[key] = stats
	return stats, nil
}

func (f *fakeStore) IncrementDailyManual(_ context.Context, date time.Time, inc repository.ManualStatIncrements) (repository.DailyStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := date.Format("2006-01-02")
	stats := f.stats[key]
	stats.StatDate = date
	stats.DemosHeld += inc.DemosHeld
	stats.DealsClosed += inc.DealsClosed
	stats.HoursDialed += inc.HoursDialed
	f.stats[key] = stats
	return stats, nil
}

func (f *fakeStore) GetStatsByDate(_ context.Context, date time.Time) (repository.DailyStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats, ok := f.stats[date.Format("2006-01-02")]
	if !ok {
		return repository.DailyStats{StatDate: date}, nil
	}
	return stats, nil
}

func (f *fakeStore) StatsSince(_ context.Context, since time.Time) ([]repository.DailyStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.DailyStats
	for _, stats := range f.stats {
		if !stats.StatDate.Before(since) {
			out = append(out, stats)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StatDate.Before(out[j].StatDate) })
	return out, nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

var testNow = time.Date(2024, time.January, 1, 15, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore) (*Service, *recordingBus) {
	bus := &recordingBus{}
	svc := &Service{
		leads:        store,
		dispositions: store,
		queue:        store,
		history:      store,
		pool:         store,
		stats:        store,
		bus:          bus,
		log:          logger.New("test"),
		cfg: &config.Config{
			DefaultMaxAttempts:  5,
			DefaultQueueLimit:   50,
			CallbackBatchSize:   20,
			PoolMaxCallsPerHour: 20,
			PoolCooldownMinutes: 30,
		},
		now:       func() time.Time { return testNow },
		randFloat: func() float64 { return 0.5 },
	}
	return svc, bus
}

func seedLead(store *fakeStore, state string, status domain.LeadStatus, attempts int) repository.Lead {
	lead := repository.Lead{
		ID:           uuid.New(),
		BusinessName: "Acme " + state,
		Phone:        "+12125551234",
		State:        state,
		Status:       status,
		AttemptCount: attempts,
		MaxAttempts:  5,
		CreatedAt:    testNow.Add(-24 * time.Hour),
	}
	store.leads[lead.ID] = lead
	return lead
}

func TestRecordDispositionAttemptAccounting(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	lead := seedLead(store, "NY", domain.LeadStatusQueued, 0)

	outcomes := []string{"no_answer", "voicemail", "callback"}
	for i, outcome := range outcomes {
		resp, err := svc.RecordDisposition(context.Background(), lead.ID, transport.RecordDispositionRequest{Outcome: outcome})
		if err != nil {
			t.Fatalf("disposition %d: %v", i, err)
		}
		if resp.AttemptCount != i+1 {
			t.Errorf("after %d dispositions attemptCount = %d, want %d", i+1, resp.AttemptCount, i+1)
		}
	}
	if len(store.history) != 3 {
		t.Errorf("history entries = %d, want 3", len(store.history))
	}
}

func TestRecordDispositionStatsClassification(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	lead := seedLead(store, "NY", domain.LeadStatusQueued, 0)

	for _, outcome := range []string{"no_answer", "conversation", "demo_booked"} {
		if _, err := svc.RecordDisposition(context.Background(), lead.ID, transport.RecordDispositionRequest{Outcome: outcome}); err != nil {
			t.Fatalf("disposition %s: %v", outcome, err)
		}
	}

	stats := store.stats[testNow.Format("2006-01-02")]
	if stats.TotalDials != 3 {
		t.Errorf("totalDials = %d, want 3", stats.TotalDials)
	}
	if stats.Contacts != 2 {
		t.Errorf("contacts = %d, want 2", stats.Contacts)
	}
	if stats.Conversations != 2 {
		t.Errorf("conversations = %d, want 2", stats.Conversations)
	}
	if stats.DemosBooked != 1 {
		t.Errorf("demosBooked = %d, want 1", stats.DemosBooked)
	}
}

func TestRecordDispositionValidation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	lead := seedLead(store, "NY", domain.LeadStatusQueued, 0)

	if _, err := svc.RecordDisposition(context.Background(), lead.ID, transport.RecordDispositionRequest{Outcome: "busy"}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("unknown outcome: got %v, want validation error", err)
	}
	if _, err := svc.RecordDisposition(context.Background(), uuid.New(), transport.RecordDispositionRequest{Outcome: "no_answer"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing lead: got %v, want not found", err)
	}
}

func TestRecordDispositionPoolFailureNonFatal(t *testing.T) {
	store := newFakeStore()
	store.failUsage = true
	svc, _ := newTestService(store)
	lead := seedLead(store, "NY", domain.LeadStatusQueued, 0)
	numberID := uuid.New()

	resp, err := svc.RecordDisposition(context.Background(), lead.ID, transport.RecordDispositionRequest{
		Outcome:        "conversation",
		CallerNumberID: &numberID,
	})
	if err != nil {
		t.Fatalf("disposition should survive pool failure: %v", err)
	}
	if store.usageCalled != 1 {
		t.Errorf("usageCalled = %d, want 1", store.usageCalled)
	}
	if resp.AttemptCount != 1 {
		t.Errorf("attemptCount = %d, want 1", resp.AttemptCount)
	}
	if stats := store.stats[testNow.Format("2006-01-02")]; stats.TotalDials != 1 {
		t.Errorf("stats still incremented: totalDials = %d, want 1", stats.TotalDials)
	}
}

func TestRecordDispositionNotesAppend(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	lead := seedLead(store, "NY", domain.LeadStatusQueued, 0)

	if _, err := svc.RecordDisposition(context.Background(), lead.ID, transport.RecordDispositionRequest{Outcome: "no_answer"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordDisposition(context.Background(), lead.ID, transport.RecordDispositionRequest{Outcome: "conversation", Notes: "spoke to owner"}); err != nil {
		t.Fatal(err)
	}

	notes := store.leads[lead.ID].Notes
	lines := strings.Split(notes, "\n")
	if len(lines) != 2 {
		t.Fatalf("notes lines = %d, want 2:\n%s", len(lines), notes)
	}
	if want := "[1/1/2024] no_answer"; lines[0] != want {
		t.Errorf("line 0 = %q, want %q", lines[0], want)
	}
	if want := "[1/1/2024] conversation: spoke to owner"; lines[1] != want {
		t.Errorf("line 1 = %q, want %q", lines[1], want)
	}
}

func TestGetQueueCallbackPriority(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	queued := seedLead(store, "CA", domain.LeadStatusQueued, 0)
	callback := seedLead(store, "CA", domain.LeadStatusCallback, 1)
	overdue := testNow.Add(-time.Hour)
	cb := store.leads[callback.ID]
	cb.NextCallAt = &overdue
	store.leads[callback.ID] = cb

	resp, err := svc.GetQueue(context.Background(), 10, "pacific")
	if err != nil {
		t.Fatalf("GetQueue: %v", err)
	}
	if len(resp.Leads) != 2 {
		t.Fatalf("queue length = %d, want 2", len(resp.Leads))
	}
	if resp.Leads[0].ID != callback.ID {
		t.Errorf("first lead = %s, want overdue callback %s", resp.Leads[0].ID, callback.ID)
	}
	if resp.Leads[1].ID != queued.ID {
		t.Errorf("second lead = %s, want queued %s", resp.Leads[1].ID, queued.ID)
	}
	if len(resp.CallbacksDue) != 1 {
		t.Errorf("callbacksDue = %d, want 1", len(resp.CallbacksDue))
	}
}

func TestGetQueueBreakdownIndependentOfOverride(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	seedLead(store, "NY", domain.LeadStatusQueued, 0)
	seedLead(store, "TX", domain.LeadStatusQueued, 0)
	seedLead(store, "CA", domain.LeadStatusQueued, 0)

	pacific, err := svc.GetQueue(context.Background(), 10, "pacific")
	if err != nil {
		t.Fatal(err)
	}
	eastern, err := svc.GetQueue(context.Background(), 10, "eastern")
	if err != nil {
		t.Fatal(err)
	}

	if len(pacific.Leads) != 1 || pacific.Leads[0].State != "CA" {
		t.Errorf("pacific queue = %+v, want the CA lead only", pacific.Leads)
	}
	if len(eastern.Leads) != 1 || eastern.Leads[0].State != "NY" {
		t.Errorf("eastern queue = %+v, want the NY lead only", eastern.Leads)
	}
	for _, region := range []string{"eastern", "central", "mountain", "pacific"} {
		if pacific.BreakdownByRegion[region] != eastern.BreakdownByRegion[region] {
			t.Errorf("breakdown[%s] differs across overrides: %d vs %d",
				region, pacific.BreakdownByRegion[region], eastern.BreakdownByRegion[region])
		}
	}
	if pacific.BreakdownByRegion["eastern"] != 1 || pacific.BreakdownByRegion["central"] != 1 || pacific.BreakdownByRegion["pacific"] != 1 {
		t.Errorf("breakdown = %v, want one lead in eastern, central and pacific", pacific.BreakdownByRegion)
	}
}

func TestGetQueueDegradesOnStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.failQueued = true
	svc, _ := newTestService(store)
	seedLead(store, "NY", domain.LeadStatusQueued, 0)

	resp, err := svc.GetQueue(context.Background(), 10, "eastern")
	if err != nil {
		t.Fatalf("GetQueue must not error on store failure: %v", err)
	}
	if len(resp.Leads) != 0 || resp.TotalToday != 0 {
		t.Errorf("expected empty degraded response, got %+v", resp)
	}
}

func TestGetQueueSelectsLocalNumber(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	seedLead(store, "CA", domain.LeadStatusQueued, 0)

	local, _ := store.AddNumber(context.Background(), repository.AddNumberParams{
		PhoneNumber: "+14155550100", State: "CA", MaxCallsPerHour: 20,
	})
	store.AddNumber(context.Background(), repository.AddNumberParams{
		PhoneNumber: "+12125550100", State: "NY", MaxCallsPerHour: 20,
	})

	resp, err := svc.GetQueue(context.Background(), 10, "pacific")
	if err != nil {
		t.Fatal(err)
	}
	if resp.SelectedNumber == nil {
		t.Fatal("expected a selected number")
	}
	if resp.SelectedNumber.ID != local.ID {
		t.Errorf("selected %s, want state-matched %s", resp.SelectedNumber.PhoneNumber, local.PhoneNumber)
	}
}

func TestRollingStatsPartialWindow(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	ctx := context.Background()
	for _, daysAgo := range []int{0, 1, 2} {
		date := testNow.AddDate(0, 0, -daysAgo)
		store.IncrementDaily(ctx, date, repository.StatIncrements{TotalDials: 10, Contacts: 4, Conversations: 2, DemosBooked: 1})
	}

	resp, err := svc.RollingStats(ctx, 7)
	if err != nil {
		t.Fatalf("RollingStats: %v", err)
	}
	if resp.DaysWithData != 3 {
		t.Errorf("daysWithData = %d, want 3", resp.DaysWithData)
	}
	if resp.Totals.TotalDials != 30 {
		t.Errorf("totalDials = %d, want 30", resp.Totals.TotalDials)
	}
	if want := 4.0 / 10.0; resp.Rates.ContactRate != want {
		t.Errorf("contactRate = %f, want %f", resp.Rates.ContactRate, want)
	}
	if want := 3.0 / 6.0; resp.Rates.DemoRate != want {
		t.Errorf("demoRate = %f, want %f", resp.Rates.DemoRate, want)
	}
}

func TestRollingStatsZeroDenominators(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	ctx := context.Background()
	store.IncrementDaily(ctx, testNow, repository.StatIncrements{TotalDials: 5})

	resp, err := svc.RollingStats(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Rates.ConversationRate != 0 || resp.Rates.DemoRate != 0 || resp.Rates.CloseRate != 0 {
		t.Errorf("rates with zero denominators must be 0, got %+v", resp.Rates)
	}
}

func TestAddNumberConflictAndValidation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	if _, err := svc.AddNumber(ctx, transport.AddNumberRequest{PhoneNumber: "not a number", State: "CA"}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("invalid number: got %v, want validation error", err)
	}

	first, err := svc.AddNumber(ctx, transport.AddNumberRequest{PhoneNumber: "+14155550100", State: "CA"})
	if err != nil {
		t.Fatalf("add number: %v", err)
	}
	if first.MaxCallsPerHour != 20 {
		t.Errorf("maxCallsPerHour default = %d, want 20", first.MaxCallsPerHour)
	}

	if _, err := svc.AddNumber(ctx, transport.AddNumberRequest{PhoneNumber: "(415) 555-0100", State: "CA"}); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("duplicate after normalization: got %v, want conflict", err)
	}
}

func TestReportSpamRetiresAndPublishes(t *testing.T) {
	store := newFakeStore()
	svc, bus := newTestService(store)
	ctx := context.Background()

	entry, err := svc.AddNumber(ctx, transport.AddNumberRequest{PhoneNumber: "+14155550100", State: "CA"})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.ReportSpam(ctx, entry.ID); err != nil {
			t.Fatalf("report spam %d: %v", i, err)
		}
	}

	got, _ := store.GetNumber(ctx, entry.ID)
	if got.Status != domain.PoolStatusRetired {
		t.Errorf("status = %s, want retired", got.Status)
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	retired := 0
	for _, event := range bus.events {
		if event.EventName() == "dialer.number.retired" {
			retired++
		}
	}
	if retired != 1 {
		t.Errorf("retired events = %d, want 1", retired)
	}
}
