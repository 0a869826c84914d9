// Package traffic converts windows of recent telemetry into a speed
// adjustment multiplier for nominal travel times.
package traffic

import (
	"time"

	"pulse.busmetro.org/internal/models"
)

const (
	// DefaultWindow is how far back samples are considered.
	DefaultWindow = 30 * time.Minute
	// DefaultSampleCap bounds how many of the newest samples feed the average.
	DefaultSampleCap = 50

	// levelWeight scales how far each ordinal step away from neutral moves
	// the multiplier. Levels span [1,5], so the multiplier spans [0.6,1.4].
	levelWeight = 0.2
)

// Model derives traffic multipliers from telemetry windows.
type Model struct {
	Window    time.Duration
	SampleCap int
}

func NewModel() *Model {
	return &Model{
		Window:    DefaultWindow,
		SampleCap: DefaultSampleCap,
	}
}

// Multiplier averages the ordinal traffic level across the samples and maps
// it onto a travel-time multiplier: 1 + (avg − 3) × 0.2. Samples missing a
// level count as neutral. An empty set yields exactly 1.0.
func (m *Model) Multiplier(samples []models.TelemetrySample) float64 {
	if len(samples) == 0 {
		return 1.0
	}

	if m.SampleCap > 0 && len(samples) > m.SampleCap {
		samples = samples[:m.SampleCap]
	}

	total := 0
	for i := range samples {
		total += samples[i].EffectiveTrafficLevel()
	}
	avg := float64(total) / float64(len(samples))

	return 1 + (avg-float64(models.TrafficLevelNeutral))*levelWeight
}

// WeatherMultiplier is the adjustment applied when a caller opts into
// weather-aware estimates. No weather source is integrated, so the
// adjustment is neutral; the hook keeps the request flag honest.
func (m *Model) WeatherMultiplier() float64 {
	return 1.0
}
