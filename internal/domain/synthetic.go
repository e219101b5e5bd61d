package domain

import (
	"fmt"
	"hash/fnv"
	"time"
)

// monthBase is the seasonal baseline danger index into riskScale. Scottish
// wildfire activity peaks in spring (dead winter vegetation, dry easterlies)
// with a secondary summer season; winters are wet and quiet.
var monthBase = map[time.Month]int{
	time.January: 0, time.February: 0, time.December: 0,
	time.March: 2, time.April: 2, time.May: 2,
	time.June: 1, time.July: 1, time.August: 1,
	time.September: 1, time.October: 0, time.November: 0,
}

// SyntheticRisk returns a deterministic, seasonally plausible danger class
// for a coordinate. It is the guaranteed-success final tier: same cell, same
// month, same answer, so an offline device shows a stable value instead of
// flickering between fallbacks.
func SyntheticRisk(coord Coordinate) RiskResult {
	now := clock.Now()
	base := monthBase[now.Month()]

	// Cell-level jitter so neighbouring areas don't render identically.
	// 0.05 degree cells, comparable to the precision-5 geohash cache cells.
	h := fnv.New32a()
	fmt.Fprintf(h, "%.0f:%.0f", coord.Lat/0.05, coord.Lon/0.05)
	jitter := int(h.Sum32() % 2)

	idx := base + jitter
	if idx >= len(riskScale) {
		idx = len(riskScale) - 1
	}
	return RiskResult{
		Level:     riskScale[idx],
		Source:    FreshnessSynthetic,
		QueriedAt: now,
	}
}

// SyntheticIncidents is the guaranteed-success final tier for active fires.
// It reports no incidents rather than inventing them: a fabricated fire
// marker is worse than an empty map, and the synthetic tag already tells the
// UI the data is not real.
func SyntheticIncidents(bbox BoundingBox) IncidentSet {
	return IncidentSet{
		Incidents: []Incident{},
		BBox:      bbox,
		Source:    FreshnessSynthetic,
		QueriedAt: clock.Now(),
	}
}
