package domain

import "time"

// PoolSnapshot is a plain-value view of one caller-ID pool entry, decoupled
// from the storage row so the selection heuristic is testable on its own.
type PoolSnapshot struct {
	ID              string
	PhoneNumber     string
	State           string
	Status          PoolStatus
	CallsThisHour   int
	CallsToday      int
	TotalCalls      int
	MaxCallsPerHour int
	SpamReports     int
}

// PoolUsage is the counter/status delta applied after a call used a number.
type PoolUsage struct {
	CallsThisHour int
	CallsToday    int
	TotalCalls    int
	Status        PoolStatus
	LastUsedAt    time.Time
}

// ApplyCallUsage computes the pool entry's next rate state after one call.
// Hitting the hourly cap flips the entry to cooling; a retired entry is
// never downgraded. The spam-report ceiling overrides everything else,
// including a fresh successful call.
func ApplyCallUsage(entry PoolSnapshot, now time.Time) PoolUsage {
	usage := PoolUsage{
		CallsThisHour: entry.CallsThisHour + 1,
		CallsToday:    entry.CallsToday + 1,
		TotalCalls:    entry.TotalCalls + 1,
		Status:        entry.Status,
		LastUsedAt:    now,
	}

	if usage.CallsThisHour >= entry.MaxCallsPerHour && usage.Status != PoolStatusRetired {
		usage.Status = PoolStatusCooling
	}

	if entry.SpamReports > SpamReportThreshold {
		usage.Status = PoolStatusRetired
	}

	return usage
}

// SelectNumber picks the caller ID for the next dial. Only active entries
// under their hourly cap are eligible. A number registered in the same
// state as the lead is preferred (local caller IDs answer better);
// otherwise the least-used entry this hour wins. Returns false when no
// entry is eligible and the caller must fall back to an unmanaged dial.
func SelectNumber(entries []PoolSnapshot, leadState string) (PoolSnapshot, bool) {
	eligible := make([]PoolSnapshot, 0, len(entries))
	for _, e := range entries {
		if e.Status != PoolStatusActive {
			continue
		}
		if e.CallsThisHour >= e.MaxCallsPerHour {
			continue
		}
		eligible = append(eligible, e)
	}

	if len(eligible) == 0 {
		return PoolSnapshot{}, false
	}

	if leadState != "" {
		for _, e := range eligible {
			if e.State == leadState {
				return e, true
			}
		}
	}

	best := eligible[0]
	for _, e := range eligible[1:] {
		if e.CallsThisHour < best.CallsThisHour {
			best = e
		}
	}
	return best, true
}
