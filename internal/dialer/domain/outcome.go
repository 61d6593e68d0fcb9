// Package domain contains the pure decision logic of the power dialer:
// the call-disposition state machine, the caller-number rotation policy,
// and the timezone calling-window schedule. Everything here operates on
// plain values so it is unit-testable without a database.
package domain

// Outcome is the closed-set result of a single call attempt recorded by a
// human caller.
type Outcome string

const (
	OutcomeNoAnswer      Outcome = "no_answer"
	OutcomeVoicemail     Outcome = "voicemail"
	OutcomeGatekeeper    Outcome = "gatekeeper"
	OutcomeConversation  Outcome = "conversation"
	OutcomeDemoBooked    Outcome = "demo_booked"
	OutcomeNotInterested Outcome = "not_interested"
	OutcomeWrongNumber   Outcome = "wrong_number"
	OutcomeCallback      Outcome = "callback"
)

// Outcomes lists every valid outcome value.
var Outcomes = []Outcome{
	OutcomeNoAnswer,
	OutcomeVoicemail,
	OutcomeGatekeeper,
	OutcomeConversation,
	OutcomeDemoBooked,
	OutcomeNotInterested,
	OutcomeWrongNumber,
	OutcomeCallback,
}

// IsValid reports whether o is in the closed outcome vocabulary.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeNoAnswer, OutcomeVoicemail, OutcomeGatekeeper,
		OutcomeConversation, OutcomeDemoBooked, OutcomeNotInterested,
		OutcomeWrongNumber, OutcomeCallback:
		return true
	}
	return false
}

// ContactMade reports whether the outcome counts as reaching the prospect.
func (o Outcome) ContactMade() bool {
	switch o {
	case OutcomeConversation, OutcomeDemoBooked, OutcomeCallback, OutcomeNotInterested:
		return true
	}
	return false
}

// IsConversation reports whether the outcome counts as a real conversation.
func (o Outcome) IsConversation() bool {
	return o == OutcomeConversation || o == OutcomeDemoBooked
}

// LeadStatus is the lead lifecycle state driven by dispositions.
type LeadStatus string

const (
	// LeadStatusQueued marks a lead eligible for dialing.
	LeadStatusQueued LeadStatus = "queued"
	// LeadStatusCallback marks a lead with a promised follow-up time.
	LeadStatusCallback LeadStatus = "callback"
	// LeadStatusCompleted is terminal: booked, not interested, or dead number.
	LeadStatusCompleted LeadStatus = "completed"
	// LeadStatusArchived is terminal: attempts exhausted without resolution.
	LeadStatusArchived LeadStatus = "archived"
)

// IsValid reports whether s names a known lead status.
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusQueued, LeadStatusCallback, LeadStatusCompleted, LeadStatusArchived:
		return true
	}
	return false
}

// PoolStatus is the lifecycle state of an outbound caller-ID number.
type PoolStatus string

const (
	PoolStatusActive  PoolStatus = "active"
	PoolStatusCooling PoolStatus = "cooling"
	PoolStatusRetired PoolStatus = "retired"
)

// SpamReportThreshold retires a number once spam_reports exceeds it.
const SpamReportThreshold = 2
