package domain

import (
	"testing"
	"time"
)

func easternTime(hour int) time.Time {
	return time.Date(2024, 6, 10, hour, 15, 0, 0, referenceZone)
}

func TestCurrentRegionSweepsWestThroughTheDay(t *testing.T) {
	cases := []struct {
		hour int
		want Region
	}{
		{9, RegionEastern},
		{10, RegionEastern},
		{11, RegionCentral},
		{12, RegionCentral},
		{13, RegionMountain},
		{14, RegionMountain},
		{15, RegionPacific},
		{18, RegionPacific},
	}

	for _, tc := range cases {
		if got := CurrentRegion(easternTime(tc.hour)); got != tc.want {
			t.Errorf("hour %d ET: region = %q, want %q", tc.hour, got, tc.want)
		}
	}
}

func TestCurrentRegionOutsideCallingWindow(t *testing.T) {
	for _, hour := range []int{0, 6, 8, 19, 23} {
		if got := CurrentRegion(easternTime(hour)); got != "" {
			t.Errorf("hour %d ET: region = %q, want none", hour, got)
		}
	}
}

func TestStatesForRegionCoverageIsDisjoint(t *testing.T) {
	seen := make(map[string]Region)
	for _, region := range Regions {
		states := StatesForRegion(region)
		if len(states) == 0 {
			t.Fatalf("region %s has no states", region)
		}
		for _, st := range states {
			if prev, dup := seen[st]; dup {
				t.Errorf("state %s in both %s and %s", st, prev, region)
			}
			seen[st] = region
		}
	}
}

func TestRegionIsValid(t *testing.T) {
	for _, region := range Regions {
		if !region.IsValid() {
			t.Errorf("%s should be valid", region)
		}
	}
	if Region("alaska").IsValid() {
		t.Error("alaska should not be valid")
	}
}
