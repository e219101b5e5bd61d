// Package geo provides the pure spatial helpers behind the resolution core:
// geohash encoding for cache keys, region containment for provider gating,
// and coordinate redaction for privacy-safe logging.
package geo

import (
	"fmt"

	"github.com/moorwatch/wildfire-data-service/internal/domain"
)

// base32 is the geohash character set. 'a', 'i', 'l' and 'o' are excluded
// to avoid confusion with digits.
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// Geohash precisions used as cache-key resolutions. Point risk queries use
// ~4.9 km cells; viewport queries use coarser ~39 km cells because a map
// viewport covers far more area than a point lookup.
const (
	PrecisionPoint    = 5
	PrecisionViewport = 4

	minPrecision = 1
	maxPrecision = 12
)

// Encode returns the standard interleaved-bit base-32 geohash of a
// coordinate. Deterministic and pure; errors on an invalid coordinate or a
// precision outside [1,12].
func Encode(coord domain.Coordinate, precision int) (string, error) {
	if err := coord.Validate(); err != nil {
		return "", err
	}
	if precision < minPrecision || precision > maxPrecision {
		return "", fmt.Errorf("%w: geohash precision %d outside [%d,%d]",
			domain.ErrInvalidInput, precision, minPrecision, maxPrecision)
	}

	minLat, maxLat := -90.0, 90.0
	minLon, maxLon := -180.0, 180.0

	hash := make([]byte, 0, precision)
	var ch byte
	bit := 0
	even := true // geohash interleaves bits starting with longitude

	for len(hash) < precision {
		if even {
			mid := (minLon + maxLon) / 2
			if coord.Lon >= mid {
				ch |= 1 << (4 - bit)
				minLon = mid
			} else {
				maxLon = mid
			}
		} else {
			mid := (minLat + maxLat) / 2
			if coord.Lat >= mid {
				ch |= 1 << (4 - bit)
				minLat = mid
			} else {
				maxLat = mid
			}
		}
		even = !even

		bit++
		if bit == 5 {
			hash = append(hash, base32[ch])
			bit = 0
			ch = 0
		}
	}
	return string(hash), nil
}
