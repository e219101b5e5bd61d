package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"edinburgh", 55.9533, -3.1883, false},
		{"equator meridian", 0, 0, false},
		{"world corners", 90, 180, false},
		{"negative corners", -90, -180, false},
		{"latitude too high", 91.0, 0.0, true},
		{"latitude too low", -90.01, 0, true},
		{"longitude too high", 0, 180.5, true},
		{"longitude too low", 0, -181, true},
		{"nan latitude", math.NaN(), 0, true},
		{"inf longitude", 0, math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinate(tt.lat, tt.lon)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBoundingBox_Validate(t *testing.T) {
	_, err := NewBoundingBox(55.0, -5.0, 57.0, -3.0)
	require.NoError(t, err)

	// Zero-area and inverted boxes are rejected before any tier runs.
	_, err = NewBoundingBox(55.0, -5.0, 55.0, -3.0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewBoundingBox(57.0, -5.0, 55.0, -3.0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewBoundingBox(55.0, -5.0, 95.0, -3.0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBoundingBox_Contains_EdgesInclusive(t *testing.T) {
	b, err := NewBoundingBox(55.0, -5.0, 57.0, -3.0)
	require.NoError(t, err)

	assert.True(t, b.Contains(Coordinate{Lat: 56.0, Lon: -4.0}))
	assert.True(t, b.Contains(Coordinate{Lat: 55.0, Lon: -5.0}), "min corner is inside")
	assert.True(t, b.Contains(Coordinate{Lat: 57.0, Lon: -3.0}), "max corner is inside")
	assert.False(t, b.Contains(Coordinate{Lat: 57.001, Lon: -4.0}))
	assert.False(t, b.Contains(Coordinate{Lat: 56.0, Lon: -2.999}))
}

func TestFilterToBBox(t *testing.T) {
	bbox, err := NewBoundingBox(55.0, -5.0, 57.0, -3.0)
	require.NoError(t, err)

	incidents := []Incident{
		{ID: "a", Coordinate: Coordinate{Lat: 56.0, Lon: -4.0}},
		{ID: "b", Coordinate: Coordinate{Lat: 58.0, Lon: -4.0}}, // outside, over-returned
		{ID: "a", Coordinate: Coordinate{Lat: 56.1, Lon: -4.1}}, // duplicate ID
		{ID: "c", Coordinate: Coordinate{Lat: 55.0, Lon: -5.0}}, // on the edge
	}

	got := FilterToBBox(incidents, bbox)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}
