// Package traveltime turns route segments and traffic conditions into
// bounded travel-duration estimates.
package traveltime

import (
	"fmt"
	"math"

	"pulse.busmetro.org/internal/models"
)

const (
	// DefaultBaseSpeedKmh is the assumed average city bus speed.
	DefaultBaseSpeedKmh = 30.0
	// DefaultDwellMinutes is the fixed per-intermediate-stop dwell time.
	DefaultDwellMinutes = 2
	// Best/worst case bounds around the nominal estimate.
	DefaultBestCaseFactor  = 0.8
	DefaultWorstCaseFactor = 1.2
)

// Estimate is a bounded travel-time figure for one stop-to-stop segment.
// BestCase <= Nominal <= WorstCase holds for the fixed 0.8/1.2 factors.
type Estimate struct {
	StopCount    int     `json:"stopCount"`
	DistanceKm   float64 `json:"distance"`
	Nominal      int     `json:"average"`
	BestCase     int     `json:"bestCase"`
	WorstCase    int     `json:"worstCase"`
	DwellMinutes int     `json:"dwellMinutes"`
}

// Estimator computes segment estimates with fixed speed and dwell
// assumptions.
type Estimator struct {
	BaseSpeedKmh    float64
	DwellMinutes    int
	BestCaseFactor  float64
	WorstCaseFactor float64
}

func NewEstimator() *Estimator {
	return &Estimator{
		BaseSpeedKmh:    DefaultBaseSpeedKmh,
		DwellMinutes:    DefaultDwellMinutes,
		BestCaseFactor:  DefaultBestCaseFactor,
		WorstCaseFactor: DefaultWorstCaseFactor,
	}
}

// Estimate computes the nominal travel time from the origin stop to the
// destination stop, scaled by the traffic multiplier. The origin must
// precede the destination on the route; a malformed segment fails with
// models.ErrInvalidSegment.
func (e *Estimator) Estimate(route *models.Route, from, to *models.Stop, trafficMultiplier float64) (Estimate, error) {
	if from.Index >= to.Index {
		return Estimate{}, fmt.Errorf("%w: from stop index %d must precede to stop index %d",
			models.ErrInvalidSegment, from.Index, to.Index)
	}

	stopCount := to.Index - from.Index
	distance := route.DistancePerStop() * float64(stopCount)
	baseMinutes := distance / e.BaseSpeedKmh * 60
	dwellMinutes := (stopCount - 1) * e.DwellMinutes
	nominal := int(math.Round(baseMinutes*trafficMultiplier + float64(dwellMinutes)))

	return Estimate{
		StopCount:    stopCount,
		DistanceKm:   distance,
		Nominal:      nominal,
		BestCase:     int(math.Round(float64(nominal) * e.BestCaseFactor)),
		WorstCase:    int(math.Round(float64(nominal) * e.WorstCaseFactor)),
		DwellMinutes: dwellMinutes,
	}, nil
}
