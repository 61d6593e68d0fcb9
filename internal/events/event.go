// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"dialer_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Dialer Domain Events
// =============================================================================

// DispositionRecorded is published after a call outcome has been fully
// applied to a lead.
type DispositionRecorded struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	Outcome      string    `json:"outcome"`
	NewStatus    string    `json:"newStatus"`
	AttemptCount int       `json:"attemptCount"`
}

func (e DispositionRecorded) EventName() string { return "dialer.disposition.recorded" }

// NumberRetired is published when a caller ID leaves rotation for good.
type NumberRetired struct {
	BaseEvent
	NumberID    uuid.UUID `json:"numberId"`
	PhoneNumber string    `json:"phoneNumber"`
	Reason      string    `json:"reason"`
}

func (e NumberRetired) EventName() string { return "dialer.number.retired" }

// =============================================================================
// Telephony Webhook Events
// =============================================================================

// CallEventReceived is published for every normalized provider call event.
type CallEventReceived struct {
	BaseEvent
	CallSID   string `json:"callSid"`
	EventType string `json:"eventType"`
	Status    string `json:"status"`
}

func (e CallEventReceived) EventName() string { return "webhook.call.event_received" }

// RecordingAvailable is published when a provider reports a finished call
// recording; the recordings module archives it.
type RecordingAvailable struct {
	BaseEvent
	CallSID      string `json:"callSid"`
	RecordingURL string `json:"recordingUrl"`
	RecordingSID string `json:"recordingSid"`
}

func (e RecordingAvailable) EventName() string { return "webhook.call.recording_available" }
