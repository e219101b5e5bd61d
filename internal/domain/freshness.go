package domain

// Freshness tags a resolved value with the tier that produced it. The UI
// renders trust indicators from this tag, so it is never dropped, including
// across a cache round-trip, where a stored "live" value is re-tagged
// "cached" on the way out.
type Freshness string

const (
	FreshnessLive      Freshness = "live"      // just fetched from a remote provider
	FreshnessCached    Freshness = "cached"    // served from the spatial cache, not yet expired
	FreshnessSynthetic Freshness = "synthetic" // deterministic fallback, all real sources exhausted

	// Location-only provenance tags.
	FreshnessLastKnown Freshness = "lastKnown" // previous successful resolution this process lifetime
	FreshnessManual    Freshness = "manual"    // user-entered coordinate (fresh or cached)
	FreshnessDefault   Freshness = "default"   // fixed fallback coordinate
)

// Valid reports whether f is one of the defined provenance tags.
func (f Freshness) Valid() bool {
	switch f {
	case FreshnessLive, FreshnessCached, FreshnessSynthetic,
		FreshnessLastKnown, FreshnessManual, FreshnessDefault:
		return true
	}
	return false
}
