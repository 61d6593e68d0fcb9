package domain

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func fixedRand(v float64) func() float64 {
	return func() float64 { return v }
}

func TestDecideAttemptCountAlwaysIncrementsByOne(t *testing.T) {
	for _, outcome := range Outcomes {
		lead := LeadState{AttemptCount: 2, MaxAttempts: 5}
		d := Decide(lead, DispositionInput{Outcome: outcome}, testNow, fixedRand(0))
		if d.AttemptCount != 3 {
			t.Errorf("outcome %s: attempt count = %d, want 3", outcome, d.AttemptCount)
		}
	}
}

func TestDecideNoAnswerRequeuesUntilCapThenArchives(t *testing.T) {
	retryable := []Outcome{OutcomeNoAnswer, OutcomeVoicemail, OutcomeGatekeeper, OutcomeConversation}

	for _, outcome := range retryable {
		fresh := Decide(LeadState{AttemptCount: 0, MaxAttempts: 5}, DispositionInput{Outcome: outcome}, testNow, fixedRand(0))
		if fresh.NewStatus != LeadStatusQueued {
			t.Errorf("outcome %s at attempt 0: status = %s, want queued", outcome, fresh.NewStatus)
		}

		atCap := Decide(LeadState{AttemptCount: 4, MaxAttempts: 5}, DispositionInput{Outcome: outcome}, testNow, fixedRand(0))
		if atCap.NewStatus != LeadStatusArchived {
			t.Errorf("outcome %s at attempt 4/5: status = %s, want archived", outcome, atCap.NewStatus)
		}
	}
}

func TestDecideNoAnswerDelayWithinJitterBounds(t *testing.T) {
	lead := LeadState{AttemptCount: 0, MaxAttempts: 5}

	low := Decide(lead, DispositionInput{Outcome: OutcomeNoAnswer}, testNow, fixedRand(0))
	if got := low.NextCallAt.Sub(testNow); got != 48*time.Hour {
		t.Fatalf("jitter 0: delay = %v, want 48h", got)
	}

	high := Decide(lead, DispositionInput{Outcome: OutcomeNoAnswer}, testNow, fixedRand(0.999))
	delay := high.NextCallAt.Sub(testNow)
	if delay < 48*time.Hour || delay >= 72*time.Hour {
		t.Fatalf("jitter 0.999: delay = %v, want in [48h, 72h)", delay)
	}
}

func TestDecideConversationSchedulesThreeDaysOut(t *testing.T) {
	d := Decide(LeadState{AttemptCount: 1, MaxAttempts: 5}, DispositionInput{Outcome: OutcomeConversation}, testNow, fixedRand(0.5))
	if !d.UpdateNextCall {
		t.Fatal("expected next call to be scheduled")
	}
	if got := d.NextCallAt.Sub(testNow); got != 72*time.Hour {
		t.Fatalf("delay = %v, want 72h", got)
	}
}

func TestDecideTerminalOutcomesCompleteAndLeaveScheduleAlone(t *testing.T) {
	demoDate := testNow.Add(5 * 24 * time.Hour)

	cases := []struct {
		outcome Outcome
		check   func(t *testing.T, d Decision)
	}{
		{OutcomeDemoBooked, func(t *testing.T, d Decision) {
			if !d.DemoBooked {
				t.Error("expected demo_booked flag")
			}
			if d.DemoDate == nil || !d.DemoDate.Equal(demoDate) {
				t.Errorf("demo date = %v, want %v", d.DemoDate, demoDate)
			}
		}},
		{OutcomeNotInterested, func(t *testing.T, d Decision) {
			if !d.NotInterested {
				t.Error("expected not_interested flag")
			}
		}},
		{OutcomeWrongNumber, func(t *testing.T, d Decision) {
			if !d.WrongNumber {
				t.Error("expected wrong_number flag")
			}
		}},
	}

	for _, tc := range cases {
		// Even at attempt_count=0 these are terminal.
		d := Decide(LeadState{AttemptCount: 0, MaxAttempts: 5}, DispositionInput{
			Outcome:  tc.outcome,
			DemoDate: &demoDate,
		}, testNow, fixedRand(0))

		if d.NewStatus != LeadStatusCompleted {
			t.Errorf("outcome %s: status = %s, want completed", tc.outcome, d.NewStatus)
		}
		if d.UpdateNextCall {
			t.Errorf("outcome %s: next_call_at must stay unchanged", tc.outcome)
		}
		tc.check(t, d)
	}
}

func TestDecideCallbackUsesSuppliedTimeOrDefaultsTomorrow(t *testing.T) {
	callbackAt := testNow.Add(4 * time.Hour)

	explicit := Decide(LeadState{AttemptCount: 0, MaxAttempts: 5}, DispositionInput{
		Outcome:    OutcomeCallback,
		CallbackAt: &callbackAt,
	}, testNow, fixedRand(0))
	if explicit.NewStatus != LeadStatusCallback {
		t.Fatalf("status = %s, want callback", explicit.NewStatus)
	}
	if !explicit.NextCallAt.Equal(callbackAt) {
		t.Fatalf("next call = %v, want %v", explicit.NextCallAt, callbackAt)
	}

	defaulted := Decide(LeadState{AttemptCount: 0, MaxAttempts: 5}, DispositionInput{Outcome: OutcomeCallback}, testNow, fixedRand(0))
	if got := defaulted.NextCallAt.Sub(testNow); got != 24*time.Hour {
		t.Fatalf("default callback delay = %v, want 24h", got)
	}
}

func TestDecideCallbackCountsAsContactButNotConversation(t *testing.T) {
	d := Decide(LeadState{AttemptCount: 0, MaxAttempts: 5}, DispositionInput{Outcome: OutcomeCallback}, testNow, fixedRand(0))
	if !d.ContactMade {
		t.Error("callback should count as contact")
	}
	if d.IsConversation {
		t.Error("callback should not count as conversation")
	}
}

func TestDecideClassification(t *testing.T) {
	cases := []struct {
		outcome        Outcome
		contactMade    bool
		isConversation bool
	}{
		{OutcomeNoAnswer, false, false},
		{OutcomeVoicemail, false, false},
		{OutcomeGatekeeper, false, false},
		{OutcomeConversation, true, true},
		{OutcomeDemoBooked, true, true},
		{OutcomeNotInterested, true, false},
		{OutcomeWrongNumber, false, false},
		{OutcomeCallback, true, false},
	}

	for _, tc := range cases {
		if got := tc.outcome.ContactMade(); got != tc.contactMade {
			t.Errorf("%s: ContactMade() = %v, want %v", tc.outcome, got, tc.contactMade)
		}
		if got := tc.outcome.IsConversation(); got != tc.isConversation {
			t.Errorf("%s: IsConversation() = %v, want %v", tc.outcome, got, tc.isConversation)
		}
	}
}

func TestNoteLineFormat(t *testing.T) {
	withNotes := Decide(LeadState{MaxAttempts: 5}, DispositionInput{
		Outcome: OutcomeConversation,
		Notes:   "spoke with owner",
	}, testNow, fixedRand(0))
	if withNotes.NoteLine != "[1/15/2024] conversation: spoke with owner" {
		t.Fatalf("note line = %q", withNotes.NoteLine)
	}

	withoutNotes := Decide(LeadState{MaxAttempts: 5}, DispositionInput{Outcome: OutcomeNoAnswer}, testNow, fixedRand(0))
	if withoutNotes.NoteLine != "[1/15/2024] no_answer" {
		t.Fatalf("note line = %q", withoutNotes.NoteLine)
	}
}

func TestOutcomeIsValid(t *testing.T) {
	for _, outcome := range Outcomes {
		if !outcome.IsValid() {
			t.Errorf("%s should be valid", outcome)
		}
	}
	if Outcome("hung_up").IsValid() {
		t.Error("hung_up should not be valid")
	}
	if Outcome("").IsValid() {
		t.Error("empty outcome should not be valid")
	}
}
