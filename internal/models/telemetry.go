package models

import "time"

// Traffic levels are ordinal: 1=light through 5=extreme. Zero means the
// reporting device did not include one.
const (
	TrafficLevelUnknown  = 0
	TrafficLevelLight    = 1
	TrafficLevelModerate = 2
	TrafficLevelHeavy    = 3
	TrafficLevelSevere   = 4
	TrafficLevelExtreme  = 5

	// TrafficLevelNeutral substitutes for an unknown level in aggregates.
	TrafficLevelNeutral = 3
)

// TelemetrySample is one append-only observation of a vehicle. Samples are
// never mutated; the current state of a vehicle is the sample with the
// greatest timestamp.
type TelemetrySample struct {
	VehicleID    string    `json:"vehicleId"`
	Timestamp    time.Time `json:"timestamp"`
	Location     Location  `json:"location"`
	SpeedKmh     float64   `json:"speed"`
	Heading      float64   `json:"heading"`
	TrafficLevel int       `json:"trafficLevel,omitempty"`
	DelayMin     int       `json:"delayMin,omitempty"`
}

// EffectiveTrafficLevel returns the sample's traffic level, substituting the
// neutral value when the device reported none.
func (s *TelemetrySample) EffectiveTrafficLevel() int {
	if s.TrafficLevel == TrafficLevelUnknown {
		return TrafficLevelNeutral
	}
	return s.TrafficLevel
}
