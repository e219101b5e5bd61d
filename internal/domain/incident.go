package domain

import "time"

// Incident is a single active fire detection.
type Incident struct {
	ID         string     `json:"id"`
	Coordinate Coordinate `json:"coordinate"`
	AreaHa     float64    `json:"area_ha,omitempty"` // burnt/affected area in hectares, 0 when unknown
	DetectedAt time.Time  `json:"detected_at"`
	Sensor     string     `json:"sensor,omitempty"` // e.g. "MODIS", "VIIRS"
}

// IncidentSet is an immutable list of active fires for a viewport, tagged
// with provenance like every other resolved value.
type IncidentSet struct {
	Incidents []Incident  `json:"incidents"`
	BBox      BoundingBox `json:"bbox"`
	Source    Freshness   `json:"source"`
	QueriedAt time.Time   `json:"queried_at"`
}

// FilterToBBox returns the incidents genuinely inside the box, de-duplicated
// by ID. Upstream providers over-return: a WFS bbox query matches feature
// envelopes, not points, and tile-aligned responses spill past the viewport.
func FilterToBBox(incidents []Incident, bbox BoundingBox) []Incident {
	seen := make(map[string]struct{}, len(incidents))
	out := make([]Incident, 0, len(incidents))
	for _, inc := range incidents {
		if !bbox.Contains(inc.Coordinate) {
			continue
		}
		if inc.ID != "" {
			if _, dup := seen[inc.ID]; dup {
				continue
			}
			seen[inc.ID] = struct{}{}
		}
		out = append(out, inc)
	}
	return out
}
