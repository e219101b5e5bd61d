package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moorwatch/wildfire-data-service/internal/domain"
)

func TestEncode_KnownValues(t *testing.T) {
	tests := []struct {
		name      string
		lat       float64
		lon       float64
		precision int
		want      string
	}{
		{"edinburgh p5", 55.9533, -3.1883, 5, "gcvwr"},
		{"edinburgh p4", 55.9533, -3.1883, 4, "gcvw"},
		{"edinburgh p6", 55.9533, -3.1883, 6, "gcvwr3"},
		{"edinburgh p1", 55.9533, -3.1883, 1, "g"},
		{"edinburgh p12", 55.9533, -3.1883, 12, "gcvwr3yre5p5"},
		{"aberdeen p5", 57.1497, -2.0943, 5, "gfnt0"},
		{"null island", 0, 0, 5, "s0000"},
		{"north-east corner", 90, 180, 5, "zzzzz"},
		{"south-west corner", -90, -180, 5, "00000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(domain.Coordinate{Lat: tt.lat, Lon: tt.lon}, tt.precision)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_PrefixLocality(t *testing.T) {
	// Nearby points share a prefix; that locality is what makes the hash a
	// usable spatial cache key.
	a, err := Encode(domain.Coordinate{Lat: 55.9533, Lon: -3.1883}, 5)
	require.NoError(t, err)
	b, err := Encode(domain.Coordinate{Lat: 55.9540, Lon: -3.1890}, 5)
	require.NoError(t, err)
	assert.Equal(t, a, b, "points ~80m apart fall in the same ~4.9km cell")
}

func TestEncode_InvalidInput(t *testing.T) {
	_, err := Encode(domain.Coordinate{Lat: 91, Lon: 0}, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Encode(domain.Coordinate{Lat: 55, Lon: -3}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Encode(domain.Coordinate{Lat: 55, Lon: -3}, 13)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
