package traveltime

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse.busmetro.org/internal/models"
)

// tenStopRoute is the canonical test route: 30 km spread over 10 stops.
func tenStopRoute() *models.Route {
	stops := make([]models.Stop, 10)
	for i := range stops {
		stops[i] = models.NewStop(fmt.Sprintf("stop-%d", i), "route-1", fmt.Sprintf("Stop %d", i), i, models.Location{})
	}
	route := models.NewRoute("route-1", "Crosstown", "Bengaluru", 30, stops)
	return &route
}

func TestEstimateWithoutTraffic(t *testing.T) {
	route := tenStopRoute()
	e := NewEstimator()

	estimate, err := e.Estimate(route, &route.Stops[2], &route.Stops[5], 1.0)
	require.NoError(t, err)

	assert.Equal(t, 3, estimate.StopCount)
	assert.InDelta(t, 9.0, estimate.DistanceKm, 1e-9)
	assert.Equal(t, 4, estimate.DwellMinutes)
	assert.Equal(t, 22, estimate.Nominal)
	assert.Equal(t, 18, estimate.BestCase)
	assert.Equal(t, 26, estimate.WorstCase)
}

func TestEstimateWithExtremeTraffic(t *testing.T) {
	route := tenStopRoute()
	e := NewEstimator()

	estimate, err := e.Estimate(route, &route.Stops[2], &route.Stops[5], 1.4)
	require.NoError(t, err)

	assert.Equal(t, 29, estimate.Nominal)
	assert.Equal(t, 23, estimate.BestCase)
	assert.Equal(t, 35, estimate.WorstCase)
}

func TestEstimateInvalidSegment(t *testing.T) {
	route := tenStopRoute()
	e := NewEstimator()

	tests := []struct {
		name     string
		from, to int
	}{
		{"reversed", 5, 2},
		{"same stop", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Estimate(route, &route.Stops[tt.from], &route.Stops[tt.to], 1.0)
			assert.ErrorIs(t, err, models.ErrInvalidSegment)
		})
	}
}

func TestEstimateBoundsInvariant(t *testing.T) {
	route := tenStopRoute()
	e := NewEstimator()

	multipliers := []float64{0.6, 0.8, 1.0, 1.2, 1.4}
	for from := 0; from < len(route.Stops)-1; from++ {
		for to := from + 1; to < len(route.Stops); to++ {
			for _, mult := range multipliers {
				estimate, err := e.Estimate(route, &route.Stops[from], &route.Stops[to], mult)
				require.NoError(t, err)
				assert.LessOrEqual(t, estimate.BestCase, estimate.Nominal)
				assert.LessOrEqual(t, estimate.Nominal, estimate.WorstCase)
			}
		}
	}
}

func TestEstimateAdjacentStopsHaveNoDwell(t *testing.T) {
	route := tenStopRoute()
	e := NewEstimator()

	estimate, err := e.Estimate(route, &route.Stops[0], &route.Stops[1], 1.0)
	require.NoError(t, err)
	assert.Equal(t, 0, estimate.DwellMinutes)
	assert.Equal(t, 1, estimate.StopCount)
}

func TestEstimateZeroDistanceRoute(t *testing.T) {
	stops := []models.Stop{
		models.NewStop("a", "r", "A", 0, models.Location{}),
		models.NewStop("b", "r", "B", 1, models.Location{}),
	}
	route := models.NewRoute("r", "Empty", "", 0, stops)
	e := NewEstimator()

	estimate, err := e.Estimate(&route, &route.Stops[0], &route.Stops[1], 1.0)
	require.NoError(t, err)
	assert.Equal(t, 0, estimate.Nominal)
	assert.Equal(t, 0, estimate.BestCase)
	assert.Equal(t, 0, estimate.WorstCase)
}
