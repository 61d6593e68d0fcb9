// Package transport defines the request and response DTOs for the dialer
// HTTP API.
package transport

import (
	"time"

	"dialer_portal_backend/internal/dialer/repository"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	BusinessName string  `json:"businessName" validate:"required,min=1,max=200"`
	Phone        string  `json:"phone" validate:"required,min=5,max=20"`
	Website      *string `json:"website,omitempty" validate:"omitempty,max=300"`
	ContactName  *string `json:"contactName,omitempty" validate:"omitempty,max=100"`
	State        string  `json:"state" validate:"required,len=2,uppercase"`
	MaxAttempts  *int    `json:"maxAttempts,omitempty" validate:"omitempty,min=1,max=20"`
}

type UpdateLeadRequest struct {
	BusinessName *string `json:"businessName,omitempty" validate:"omitempty,min=1,max=200"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Website      *string `json:"website,omitempty" validate:"omitempty,max=300"`
	ContactName  *string `json:"contactName,omitempty" validate:"omitempty,max=100"`
	State        *string `json:"state,omitempty" validate:"omitempty,len=2,uppercase"`
	MaxAttempts  *int    `json:"maxAttempts,omitempty" validate:"omitempty,min=1,max=20"`
}

type RecordDispositionRequest struct {
	Outcome        string     `json:"outcome" validate:"required"`
	Notes          string     `json:"notes,omitempty" validate:"max=2000"`
	DemoDate       *time.Time `json:"demoDate,omitempty"`
	CallbackAt     *time.Time `json:"callbackAt,omitempty"`
	CallerNumberID *uuid.UUID `json:"callerNumberId,omitempty"`
}

type AddNumberRequest struct {
	PhoneNumber     string  `json:"phoneNumber" validate:"required,min=5,max=20"`
	FriendlyName    string  `json:"friendlyName" validate:"max=100"`
	State           string  `json:"state" validate:"required,len=2,uppercase"`
	ProviderSID     *string `json:"providerSid,omitempty" validate:"omitempty,max=100"`
	MaxCallsPerHour *int    `json:"maxCallsPerHour,omitempty" validate:"omitempty,min=1,max=200"`
	CooldownMinutes *int    `json:"cooldownMinutes,omitempty" validate:"omitempty,min=1,max=1440"`
}

type RecordDailyProgressRequest struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	DemosHeld   int     `json:"demosHeld" validate:"min=0"`
	DealsClosed int     `json:"dealsClosed" validate:"min=0"`
	HoursDialed float64 `json:"hoursDialed" validate:"min=0"`
}

// Response DTOs

type LeadResponse struct {
	ID            uuid.UUID  `json:"id"`
	BusinessName  string     `json:"businessName"`
	Phone         string     `json:"phone"`
	Website       *string    `json:"website,omitempty"`
	ContactName   *string    `json:"contactName,omitempty"`
	State         string     `json:"state"`
	Status        string     `json:"status"`
	AttemptCount  int        `json:"attemptCount"`
	MaxAttempts   int        `json:"maxAttempts"`
	NextCallAt    *time.Time `json:"nextCallAt,omitempty"`
	LastCalledAt  *time.Time `json:"lastCalledAt,omitempty"`
	LastOutcome   *string    `json:"lastOutcome,omitempty"`
	DemoBooked    bool       `json:"demoBooked"`
	DemoDate      *time.Time `json:"demoDate,omitempty"`
	NotInterested bool       `json:"notInterested"`
	WrongNumber   bool       `json:"wrongNumber"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type LeadListResponse struct {
	Leads []LeadResponse `json:"leads"`
	Total int            `json:"total"`
}

type DispositionResponse struct {
	Lead           LeadResponse `json:"lead"`
	NewStatus      string       `json:"newStatus"`
	AttemptCount   int          `json:"attemptCount"`
	ContactMade    bool         `json:"contactMade"`
	IsConversation bool         `json:"isConversation"`
}

type PoolEntryResponse struct {
	ID              uuid.UUID  `json:"id"`
	PhoneNumber     string     `json:"phoneNumber"`
	FriendlyName    string     `json:"friendlyName"`
	AreaCode        string     `json:"areaCode"`
	State           string     `json:"state"`
	Status          string     `json:"status"`
	CallsThisHour   int        `json:"callsThisHour"`
	CallsToday      int        `json:"callsToday"`
	TotalCalls      int        `json:"totalCalls"`
	MaxCallsPerHour int        `json:"maxCallsPerHour"`
	CooldownMinutes int        `json:"cooldownMinutes"`
	SpamReports     int        `json:"spamReports"`
	LastUsedAt      *time.Time `json:"lastUsedAt,omitempty"`
}

type QueueResponse struct {
	Leads             []LeadResponse     `json:"leads"`
	CallbacksDue      []LeadResponse     `json:"callbacksDue"`
	TotalToday        int                `json:"totalToday"`
	CompletedToday    int                `json:"completedToday"`
	CurrentRegion     string             `json:"currentRegion"`
	BreakdownByRegion map[string]int     `json:"breakdownByRegion"`
	SelectedNumber    *PoolEntryResponse `json:"selectedNumber,omitempty"`
}

type HistoryEntryResponse struct {
	ID             uuid.UUID  `json:"id"`
	LeadID         uuid.UUID  `json:"leadId"`
	AttemptNumber  int        `json:"attemptNumber"`
	Outcome        string     `json:"outcome"`
	Notes          *string    `json:"notes,omitempty"`
	DemoDate       *time.Time `json:"demoDate,omitempty"`
	CallbackAt     *time.Time `json:"callbackAt,omitempty"`
	CallerNumberID *uuid.UUID `json:"callerNumberId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type DailyStatsResponse struct {
	Date          string  `json:"date"`
	TotalDials    int     `json:"totalDials"`
	Contacts      int     `json:"contacts"`
	Conversations int     `json:"conversations"`
	DemosBooked   int     `json:"demosBooked"`
	DemosHeld     int     `json:"demosHeld"`
	DealsClosed   int     `json:"dealsClosed"`
	HoursDialed   float64 `json:"hoursDialed"`
}

type StatsRates struct {
	ContactRate      float64 `json:"contactRate"`
	ConversationRate float64 `json:"conversationRate"`
	DemoRate         float64 `json:"demoRate"`
	CloseRate        float64 `json:"closeRate"`
}

type RollingStatsResponse struct {
	Days         int                `json:"days"`
	DaysWithData int                `json:"daysWithData"`
	Totals       DailyStatsResponse `json:"totals"`
	Rates        StatsRates         `json:"rates"`
}

type HourlyBucketResponse struct {
	Hour        int     `json:"hour"`
	Dials       int     `json:"dials"`
	Contacts    int     `json:"contacts"`
	ContactRate float64 `json:"contactRate"`
}

type HourlyBreakdownResponse struct {
	Buckets []HourlyBucketResponse `json:"buckets"`
}

type ResetCountersResponse struct {
	NumbersReset int `json:"numbersReset"`
}

// Mappers

func ToLeadResponse(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:            lead.ID,
		BusinessName:  lead.BusinessName,
		Phone:         lead.Phone,
		Website:       lead.Website,
		ContactName:   lead.ContactName,
		State:         lead.State,
		Status:        string(lead.Status),
		AttemptCount:  lead.AttemptCount,
		MaxAttempts:   lead.MaxAttempts,
		NextCallAt:    lead.NextCallAt,
		LastCalledAt:  lead.LastCalledAt,
		LastOutcome:   lead.LastOutcome,
		DemoBooked:    lead.DemoBooked,
		DemoDate:      lead.DemoDate,
		NotInterested: lead.NotInterested,
		WrongNumber:   lead.WrongNumber,
		Notes:         lead.Notes,
		CreatedAt:     lead.CreatedAt,
		UpdatedAt:     lead.UpdatedAt,
	}
}

func ToLeadResponses(leads []repository.Lead) []LeadResponse {
	responses := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		responses = append(responses, ToLeadResponse(lead))
	}
	return responses
}

func ToPoolEntryResponse(entry repository.PoolEntry) PoolEntryResponse {
	return PoolEntryResponse{
		ID:              entry.ID,
		PhoneNumber:     entry.PhoneNumber,
		FriendlyName:    entry.FriendlyName,
		AreaCode:        entry.AreaCode,
		State:           entry.State,
		Status:          string(entry.Status),
		CallsThisHour:   entry.CallsThisHour,
		CallsToday:      entry.CallsToday,
		TotalCalls:      entry.TotalCalls,
		MaxCallsPerHour: entry.MaxCallsPerHour,
		CooldownMinutes: entry.CooldownMinutes,
		SpamReports:     entry.SpamReports,
		LastUsedAt:      entry.LastUsedAt,
	}
}

func ToHistoryEntryResponse(entry repository.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:             entry.ID,
		LeadID:         entry.LeadID,
		AttemptNumber:  entry.AttemptNumber,
		Outcome:        string(entry.Outcome),
		Notes:          entry.Notes,
		DemoDate:       entry.DemoDate,
		CallbackAt:     entry.CallbackAt,
		CallerNumberID: entry.CallerNumberID,
		CreatedAt:      entry.CreatedAt,
	}
}

func ToDailyStatsResponse(stats repository.DailyStats) DailyStatsResponse {
	return DailyStatsResponse{
		Date:          stats.StatDate.Format("2006-01-02"),
		TotalDials:    stats.TotalDials,
		Contacts:      stats.Contacts,
		Conversations: stats.Conversations,
		DemosBooked:   stats.DemosBooked,
		DemosHeld:     stats.DemosHeld,
		DealsClosed:   stats.DealsClosed,
		HoursDialed:   stats.HoursDialed,
	}
}
