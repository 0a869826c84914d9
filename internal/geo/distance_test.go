package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pulse.busmetro.org/internal/models"
)

func TestDistanceIdenticalCoordinatesIsZero(t *testing.T) {
	loc := models.Location{Lat: 12.9716, Lon: 77.5946}
	assert.Equal(t, 0.0, Distance(loc, loc))
}

func TestDistanceKnownValues(t *testing.T) {
	tests := []struct {
		name     string
		a, b     models.Location
		expected float64
	}{
		{
			name:     "one degree of latitude",
			a:        models.Location{Lat: 10, Lon: 20},
			b:        models.Location{Lat: 11, Lon: 20},
			expected: 111,
		},
		{
			name:     "one degree of longitude",
			a:        models.Location{Lat: 10, Lon: 20},
			b:        models.Location{Lat: 10, Lon: 21},
			expected: 111,
		},
		{
			name:     "3-4-5 triangle",
			a:        models.Location{Lat: 0, Lon: 0},
			b:        models.Location{Lat: 0.03, Lon: 0.04},
			expected: 5.55,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Distance(tt.a, tt.b), 1e-9)
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := models.Location{Lat: 12.9716, Lon: 77.5946}
	b := models.Location{Lat: 13.0827, Lon: 80.2707}
	assert.Equal(t, Distance(a, b), Distance(b, a))
}
