package geo

import (
	"fmt"

	"github.com/moorwatch/wildfire-data-service/internal/domain"
)

// Region is a fixed rectangular coverage area.
type Region struct {
	Name   string
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Scotland is the product's coverage region, padded to include the Northern
// Isles and the Hebrides.
var Scotland = Region{
	Name:   "scotland",
	MinLat: 54.6,
	MinLon: -8.7,
	MaxLat: 60.9,
	MaxLon: -0.7,
}

// MainlandScotland is the sub-region covered by the secondary regional risk
// provider; coordinates outside it skip that tier entirely.
var MainlandScotland = Region{
	Name:   "mainland-scotland",
	MinLat: 54.6,
	MinLon: -6.3,
	MaxLat: 58.7,
	MaxLon: -1.7,
}

// Contains reports whether the coordinate lies within the region, boundary
// edges inclusive. Invalid coordinates are not contained anywhere.
func (r Region) Contains(coord domain.Coordinate) bool {
	if coord.Validate() != nil {
		return false
	}
	return coord.Lat >= r.MinLat && coord.Lat <= r.MaxLat &&
		coord.Lon >= r.MinLon && coord.Lon <= r.MaxLon
}

// redactedInvalid is logged in place of coordinates that fail validation.
const redactedInvalid = "invalid"

// Redact rounds a coordinate to 2 decimal places (~1.1 km) and formats it as
// "lat,lon" for logging. Too coarse for a cache key; only for observability.
func Redact(coord domain.Coordinate) string {
	if coord.Validate() != nil {
		return redactedInvalid
	}
	return fmt.Sprintf("%.2f,%.2f", coord.Lat, coord.Lon)
}

// RedactBBox formats a bounding box with redacted corners for logging.
func RedactBBox(bbox domain.BoundingBox) string {
	return fmt.Sprintf("%s %s",
		Redact(domain.Coordinate{Lat: bbox.MinLat, Lon: bbox.MinLon}),
		Redact(domain.Coordinate{Lat: bbox.MaxLat, Lon: bbox.MaxLon}))
}
