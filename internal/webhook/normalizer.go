package webhook

import (
	"strconv"
	"strings"
)

// CallStatus is the internal call lifecycle vocabulary. Provider statuses
// are normalized into this set before anything is persisted.
type CallStatus string

const (
	CallStatusQueued     CallStatus = "queued"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusNoAnswer   CallStatus = "no_answer"
	CallStatusBusy       CallStatus = "busy"
	CallStatusFailed     CallStatus = "failed"
	CallStatusCanceled   CallStatus = "canceled"
)

// providerStatus maps Twilio-style CallStatus values onto the internal
// vocabulary. Unknown values normalize to failed rather than being dropped,
// so the call log never silently loses a lifecycle event.
var providerStatus = map[string]CallStatus{
	"queued":      CallStatusQueued,
	"initiated":   CallStatusQueued,
	"ringing":     CallStatusRinging,
	"in-progress": CallStatusInProgress,
	"answered":    CallStatusInProgress,
	"completed":   CallStatusCompleted,
	"no-answer":   CallStatusNoAnswer,
	"busy":        CallStatusBusy,
	"failed":      CallStatusFailed,
	"canceled":    CallStatusCanceled,
}

// NormalizeStatus maps a raw provider status onto the internal vocabulary.
func NormalizeStatus(raw string) CallStatus {
	if status, ok := providerStatus[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status
	}
	return CallStatusFailed
}

// IsTerminal reports whether the status ends a call's lifecycle.
func (s CallStatus) IsTerminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusNoAnswer, CallStatusBusy, CallStatusFailed, CallStatusCanceled:
		return true
	}
	return false
}

// StatusEvent is a normalized provider call lifecycle event.
type StatusEvent struct {
	CallSID         string
	From            string
	To              string
	Direction       string
	Status          CallStatus
	DurationSeconds int
	RecordingURL    string
	RecordingSID    string
}

// NormalizeStatusEvent builds a StatusEvent from Twilio-style form values.
// The provider posts application/x-www-form-urlencoded fields.
func NormalizeStatusEvent(form func(string) string) StatusEvent {
	duration, _ := strconv.Atoi(form("CallDuration"))
	return StatusEvent{
		CallSID:         form("CallSid"),
		From:            strings.TrimSpace(form("From")),
		To:              strings.TrimSpace(form("To")),
		Direction:       normalizeDirection(form("Direction")),
		Status:          NormalizeStatus(form("CallStatus")),
		DurationSeconds: duration,
		RecordingURL:    form("RecordingUrl"),
		RecordingSID:    form("RecordingSid"),
	}
}

func normalizeDirection(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "outbound") {
		return "outbound"
	}
	if raw == "" {
		return "outbound"
	}
	return "inbound"
}
