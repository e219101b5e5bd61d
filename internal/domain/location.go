package domain

import "time"

// DefaultCoordinate is the tier-5 fallback: central Edinburgh. Resolution
// can always terminate here, which is what makes the location chain
// guaranteed-success.
var DefaultCoordinate = Coordinate{Lat: 55.9533, Lon: -3.1883}

// ResolvedLocation is an immutable device-position answer. Superseded, not
// patched, by the next resolution call.
type ResolvedLocation struct {
	Coordinate Coordinate `json:"coordinate"`
	Source     Freshness  `json:"source"`
	ResolvedAt time.Time  `json:"resolved_at"`
}
