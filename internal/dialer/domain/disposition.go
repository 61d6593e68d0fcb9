package domain

import (
	"fmt"
	"time"
)

// LeadState is the scheduling slice of a lead the disposition engine needs.
type LeadState struct {
	AttemptCount int
	MaxAttempts  int
}

// DispositionInput carries the caller-supplied context for one disposition.
type DispositionInput struct {
	Outcome    Outcome
	Notes      string
	DemoDate   *time.Time
	CallbackAt *time.Time
}

// Decision is the complete next state computed for a single disposition
// event. NextCallAt is only meaningful when UpdateNextCall is true; the
// terminal outcomes leave the previous schedule untouched.
type Decision struct {
	NewStatus      LeadStatus
	AttemptCount   int
	UpdateNextCall bool
	NextCallAt     time.Time
	DemoBooked     bool
	DemoDate       *time.Time
	NotInterested  bool
	WrongNumber    bool
	ContactMade    bool
	IsConversation bool
	NoteLine       string
}

// retryDelay computes the jittered retry delay for unanswered attempts.
// The random fraction spreads re-attempts so a batch dialed together does
// not come due in one synchronized storm.
func retryDelay(randFloat func() float64) time.Duration {
	days := 2 + randFloat()
	return time.Duration(days * float64(24*time.Hour))
}

// Decide computes the full state transition for a lead given an outcome.
// now and randFloat are injected so tests can pin the schedule; randFloat
// must return values in [0, 1).
func Decide(lead LeadState, in DispositionInput, now time.Time, randFloat func() float64) Decision {
	d := Decision{
		AttemptCount:   lead.AttemptCount + 1,
		ContactMade:    in.Outcome.ContactMade(),
		IsConversation: in.Outcome.IsConversation(),
		NoteLine:       noteLine(now, in.Outcome, in.Notes),
	}

	exhausted := lead.AttemptCount+1 >= lead.MaxAttempts

	switch in.Outcome {
	case OutcomeNoAnswer, OutcomeVoicemail, OutcomeGatekeeper:
		d.NewStatus = LeadStatusQueued
		if exhausted {
			d.NewStatus = LeadStatusArchived
		}
		d.UpdateNextCall = true
		d.NextCallAt = now.Add(retryDelay(randFloat))

	case OutcomeConversation:
		d.NewStatus = LeadStatusQueued
		if exhausted {
			d.NewStatus = LeadStatusArchived
		}
		d.UpdateNextCall = true
		d.NextCallAt = now.Add(3 * 24 * time.Hour)

	case OutcomeDemoBooked:
		d.NewStatus = LeadStatusCompleted
		d.DemoBooked = true
		d.DemoDate = in.DemoDate

	case OutcomeNotInterested:
		d.NewStatus = LeadStatusCompleted
		d.NotInterested = true

	case OutcomeWrongNumber:
		d.NewStatus = LeadStatusCompleted
		d.WrongNumber = true

	case OutcomeCallback:
		d.NewStatus = LeadStatusCallback
		d.UpdateNextCall = true
		if in.CallbackAt != nil {
			d.NextCallAt = *in.CallbackAt
		} else {
			d.NextCallAt = now.Add(24 * time.Hour)
		}
	}

	return d
}

// noteLine renders the bounded, timestamp-prefixed annotation appended to
// the lead's notes log.
func noteLine(now time.Time, outcome Outcome, notes string) string {
	if notes == "" {
		return fmt.Sprintf("[%s] %s", now.Format("1/2/2006"), outcome)
	}
	return fmt.Sprintf("[%s] %s: %s", now.Format("1/2/2006"), outcome, notes)
}
