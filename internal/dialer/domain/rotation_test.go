package domain

import (
	"testing"
	"time"
)

func TestApplyCallUsageIncrementsCounters(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	entry := PoolSnapshot{
		Status:          PoolStatusActive,
		CallsThisHour:   3,
		CallsToday:      12,
		TotalCalls:      240,
		MaxCallsPerHour: 20,
	}

	usage := ApplyCallUsage(entry, now)

	if usage.CallsThisHour != 4 || usage.CallsToday != 13 || usage.TotalCalls != 241 {
		t.Fatalf("counters = %d/%d/%d, want 4/13/241", usage.CallsThisHour, usage.CallsToday, usage.TotalCalls)
	}
	if usage.Status != PoolStatusActive {
		t.Fatalf("status = %s, want active", usage.Status)
	}
	if !usage.LastUsedAt.Equal(now) {
		t.Fatalf("last used = %v, want %v", usage.LastUsedAt, now)
	}
}

func TestApplyCallUsageCoolsAtHourlyCap(t *testing.T) {
	entry := PoolSnapshot{
		Status:          PoolStatusActive,
		CallsThisHour:   19,
		MaxCallsPerHour: 20,
	}

	usage := ApplyCallUsage(entry, time.Now())

	if usage.CallsThisHour != 20 {
		t.Fatalf("calls this hour = %d, want 20", usage.CallsThisHour)
	}
	if usage.Status != PoolStatusCooling {
		t.Fatalf("status = %s, want cooling", usage.Status)
	}
}

func TestApplyCallUsageSpamThresholdForcesRetirement(t *testing.T) {
	// Well under the hourly cap; the spam ceiling still wins.
	entry := PoolSnapshot{
		Status:          PoolStatusActive,
		CallsThisHour:   1,
		MaxCallsPerHour: 20,
		SpamReports:     3,
	}

	usage := ApplyCallUsage(entry, time.Now())

	if usage.Status != PoolStatusRetired {
		t.Fatalf("status = %s, want retired", usage.Status)
	}
}

func TestApplyCallUsageNeverDowngradesRetired(t *testing.T) {
	entry := PoolSnapshot{
		Status:          PoolStatusRetired,
		CallsThisHour:   19,
		MaxCallsPerHour: 20,
	}

	usage := ApplyCallUsage(entry, time.Now())

	if usage.Status != PoolStatusRetired {
		t.Fatalf("status = %s, want retired", usage.Status)
	}
}

func TestSelectNumberPrefersLocalityMatch(t *testing.T) {
	entries := []PoolSnapshot{
		{ID: "a", State: "TX", Status: PoolStatusActive, CallsThisHour: 0, MaxCallsPerHour: 20},
		{ID: "b", State: "FL", Status: PoolStatusActive, CallsThisHour: 5, MaxCallsPerHour: 20},
	}

	chosen, ok := SelectNumber(entries, "FL")
	if !ok {
		t.Fatal("expected a selection")
	}
	if chosen.ID != "b" {
		t.Fatalf("chosen = %s, want b (state match beats lower usage)", chosen.ID)
	}
}

func TestSelectNumberFallsBackToLeastUsed(t *testing.T) {
	entries := []PoolSnapshot{
		{ID: "a", State: "TX", Status: PoolStatusActive, CallsThisHour: 8, MaxCallsPerHour: 20},
		{ID: "b", State: "NY", Status: PoolStatusActive, CallsThisHour: 2, MaxCallsPerHour: 20},
		{ID: "c", State: "CA", Status: PoolStatusActive, CallsThisHour: 5, MaxCallsPerHour: 20},
	}

	chosen, ok := SelectNumber(entries, "WA")
	if !ok {
		t.Fatal("expected a selection")
	}
	if chosen.ID != "b" {
		t.Fatalf("chosen = %s, want b (fewest calls this hour)", chosen.ID)
	}
}

func TestSelectNumberExcludesCappedAndInactive(t *testing.T) {
	entries := []PoolSnapshot{
		{ID: "capped", Status: PoolStatusActive, CallsThisHour: 20, MaxCallsPerHour: 20},
		{ID: "cooling", Status: PoolStatusCooling, CallsThisHour: 0, MaxCallsPerHour: 20},
		{ID: "retired", Status: PoolStatusRetired, CallsThisHour: 0, MaxCallsPerHour: 20},
	}

	if _, ok := SelectNumber(entries, ""); ok {
		t.Fatal("expected no selection from capped/cooling/retired pool")
	}
}

func TestSelectNumberEmptyPool(t *testing.T) {
	if _, ok := SelectNumber(nil, "TX"); ok {
		t.Fatal("expected no selection from empty pool")
	}
}
