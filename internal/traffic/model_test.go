package traffic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pulse.busmetro.org/internal/models"
)

func samplesWithLevels(levels ...int) []models.TelemetrySample {
	samples := make([]models.TelemetrySample, len(levels))
	for i, level := range levels {
		samples[i] = models.TelemetrySample{VehicleID: "bus-1", TrafficLevel: level}
	}
	return samples
}

func TestMultiplierEmptyWindowIsNeutral(t *testing.T) {
	m := NewModel()
	assert.Equal(t, 1.0, m.Multiplier(nil))
	assert.Equal(t, 1.0, m.Multiplier([]models.TelemetrySample{}))
}

func TestMultiplierKnownLevels(t *testing.T) {
	tests := []struct {
		name     string
		levels   []int
		expected float64
	}{
		{"all light", []int{1, 1, 1}, 0.6},
		{"all moderate", []int{2, 2}, 0.8},
		{"all heavy", []int{3, 3, 3, 3}, 1.0},
		{"all severe", []int{4}, 1.2},
		{"all extreme", []int{5, 5}, 1.4},
		{"mixed average 3", []int{1, 5, 3}, 1.0},
		{"unknown counts as neutral", []int{0, 0}, 1.0},
		{"unknown mixed with extreme", []int{0, 5}, 1.2},
	}

	m := NewModel()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, m.Multiplier(samplesWithLevels(tt.levels...)), 1e-9)
		})
	}
}

func TestMultiplierStaysWithinBounds(t *testing.T) {
	m := NewModel()
	for a := 1; a <= 5; a++ {
		for b := 1; b <= 5; b++ {
			for c := 0; c <= 5; c++ {
				mult := m.Multiplier(samplesWithLevels(a, b, c))
				assert.GreaterOrEqual(t, mult, 0.6)
				assert.LessOrEqual(t, mult, 1.4)
			}
		}
	}
}

func TestMultiplierRespectsSampleCap(t *testing.T) {
	m := NewModel()
	m.SampleCap = 2

	// Only the first two (newest) samples count.
	samples := samplesWithLevels(5, 5, 1, 1, 1, 1)
	assert.InDelta(t, 1.4, m.Multiplier(samples), 1e-9)
}

func TestWeatherMultiplierIsNeutral(t *testing.T) {
	assert.Equal(t, 1.0, NewModel().WeatherMultiplier())
}
