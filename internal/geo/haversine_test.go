package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCoordinate(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		want bool
	}{
		{"origin", 0, 0, true},
		{"times square", 40.7580, -73.9855, true},
		{"north pole", 90, 0, true},
		{"south pole", -90, 0, true},
		{"date line", 0, 180, true},
		{"lat too high", 90.0001, 0, false},
		{"lat too low", -90.0001, 0, false},
		{"lng too high", 0, 180.0001, false},
		{"lng too low", 0, -180.0001, false},
		{"nan lat", math.NaN(), 0, false},
		{"nan lng", 0, math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCoordinate(tt.lat, tt.lng))
		})
	}
}

func TestHaversineMeters_ZeroDistance(t *testing.T) {
	assert.Zero(t, HaversineMeters(40.7580, -73.9855, 40.7580, -73.9855))
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	d1 := HaversineMeters(40.7580, -73.9855, 40.7505, -73.9934)
	d2 := HaversineMeters(40.7505, -73.9934, 40.7580, -73.9855)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestHaversineMeters_KnownDistances(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lng1 float64
		lat2, lng2 float64
		wantMeters float64
		tolerance  float64
	}{
		// Times Square to Madison Square Garden, just over a kilometer.
		{"midtown manhattan", 40.7580, -73.9855, 40.7505, -73.9934, 1067, 15},
		// Paris to London, roughly 344 km.
		{"paris to london", 48.8566, 2.3522, 51.5074, -0.1278, 343_900, 2000},
		// One degree of latitude along a meridian is about 111.2 km.
		{"one degree latitude", 0, 0, 1, 0, 111_195, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.wantMeters, got, tt.tolerance)
		})
	}
}
