package domain

import "time"

// Region is a coarse US timezone bucket used to decide which leads are
// in business hours right now.
type Region string

const (
	RegionEastern  Region = "eastern"
	RegionCentral  Region = "central"
	RegionMountain Region = "mountain"
	RegionPacific  Region = "pacific"
)

// Regions lists the four continental calling regions in sweep order.
var Regions = []Region{RegionEastern, RegionCentral, RegionMountain, RegionPacific}

// IsValid reports whether r names a known region.
func (r Region) IsValid() bool {
	switch r {
	case RegionEastern, RegionCentral, RegionMountain, RegionPacific:
		return true
	}
	return false
}

// regionStates maps each region to the states it covers.
var regionStates = map[Region][]string{
	RegionEastern: {
		"CT", "DC", "DE", "FL", "GA", "IN", "KY", "MA", "MD", "ME", "MI",
		"NC", "NH", "NJ", "NY", "OH", "PA", "RI", "SC", "VA", "VT", "WV",
	},
	RegionCentral: {
		"AL", "AR", "IA", "IL", "KS", "LA", "MN", "MO", "MS", "ND", "NE",
		"OK", "SD", "TN", "TX", "WI",
	},
	RegionMountain: {"AZ", "CO", "ID", "MT", "NM", "UT", "WY"},
	RegionPacific:  {"CA", "NV", "OR", "WA"},
}

// StatesForRegion returns the states covered by a region.
func StatesForRegion(r Region) []string {
	return regionStates[r]
}

// hourRegion is the static hour-to-region calling schedule, keyed by the
// hour of day in the reference zone (America/New_York). The sweep starts
// east at 9am ET and follows business hours west through the afternoon.
var hourRegion = map[int]Region{
	9:  RegionEastern,
	10: RegionEastern,
	11: RegionCentral,
	12: RegionCentral,
	13: RegionMountain,
	14: RegionMountain,
	15: RegionPacific,
	16: RegionPacific,
	17: RegionPacific,
	18: RegionPacific,
}

var referenceZone = mustLoadZone()

func mustLoadZone() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

// CurrentRegion maps the wall-clock time to the region currently in its
// calling window. Outside the schedule it returns "", meaning no regional
// filter applies.
func CurrentRegion(now time.Time) Region {
	return hourRegion[now.In(referenceZone).Hour()]
}
