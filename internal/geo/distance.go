// Package geo approximates distances between coordinates on a flat plane.
// The approximation is deliberately not geodesic: one degree is treated as
// 111 km regardless of latitude, which is adequate for short intra-city hops
// and cheap enough to run per vehicle per request.
package geo

import (
	"math"

	"pulse.busmetro.org/internal/models"
)

// KmPerDegree is the equatorial degrees-to-kilometers conversion factor.
const KmPerDegree = 111.0

// Distance returns the approximate planar distance between two coordinates
// in kilometers. Identical coordinates yield 0; callers must treat 0 as "no
// usable ETA" rather than dividing by it.
func Distance(a, b models.Location) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return math.Sqrt(dLat*dLat+dLon*dLon) * KmPerDegree
}
