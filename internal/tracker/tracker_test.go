package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse.busmetro.org/internal/models"
)

func sampleAt(vehicleID string, ts time.Time, lat float64) models.TelemetrySample {
	return models.TelemetrySample{
		VehicleID: vehicleID,
		Timestamp: ts,
		Location:  models.Location{Lat: lat, Lon: 77.6},
		SpeedKmh:  28,
	}
}

func TestLatestReturnsMostRecentSample(t *testing.T) {
	tr := New()
	base := time.Now()

	tr.Record(sampleAt("bus-1", base, 12.90))
	tr.Record(sampleAt("bus-1", base.Add(time.Minute), 12.91))

	sample, ok, err := tr.Latest(context.Background(), "bus-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12.91, sample.Location.Lat)
}

func TestLatestUnknownVehicle(t *testing.T) {
	tr := New()
	_, ok, err := tr.Latest(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordOutOfOrderDoesNotRegressCache(t *testing.T) {
	tr := New()
	base := time.Now()

	newer := sampleAt("bus-1", base.Add(5*time.Minute), 12.95)
	older := sampleAt("bus-1", base, 12.90)

	tr.Record(newer)
	tr.Record(older) // delivered late

	sample, ok, err := tr.Latest(context.Background(), "bus-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12.95, sample.Location.Lat, "late delivery must not move the cache backward")

	// The late sample still lands in history for windowed reads.
	window, err := tr.Window(context.Background(), []string{"bus-1"}, base.Add(-time.Minute), 0)
	require.NoError(t, err)
	assert.Len(t, window, 2)
}

func TestRecordDuplicateIsIdempotent(t *testing.T) {
	tr := New()
	ts := time.Now()

	tr.Record(sampleAt("bus-1", ts, 12.90))
	tr.Record(sampleAt("bus-1", ts, 12.90))

	window, err := tr.Window(context.Background(), []string{"bus-1"}, ts.Add(-time.Minute), 0)
	require.NoError(t, err)
	assert.Len(t, window, 1)
}

func TestRecordIgnoresInvalidSamples(t *testing.T) {
	tr := New()
	tr.Record(models.TelemetrySample{VehicleID: "", Timestamp: time.Now()})
	tr.Record(models.TelemetrySample{VehicleID: "bus-1"})

	_, ok, err := tr.Latest(context.Background(), "bus-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWindowFiltersAndCaps(t *testing.T) {
	tr := New()
	base := time.Now()

	tr.Record(sampleAt("bus-1", base.Add(-45*time.Minute), 12.80)) // outside window
	tr.Record(sampleAt("bus-1", base.Add(-20*time.Minute), 12.85))
	tr.Record(sampleAt("bus-2", base.Add(-10*time.Minute), 12.88))
	tr.Record(sampleAt("bus-2", base.Add(-5*time.Minute), 12.89))

	window, err := tr.Window(context.Background(), []string{"bus-1", "bus-2"}, base.Add(-30*time.Minute), 0)
	require.NoError(t, err)
	require.Len(t, window, 3)
	// Newest first.
	for i := 1; i < len(window); i++ {
		assert.True(t, window[i-1].Timestamp.After(window[i].Timestamp))
	}

	capped, err := tr.Window(context.Background(), []string{"bus-1", "bus-2"}, base.Add(-30*time.Minute), 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestWindowHonorsContextCancellation(t *testing.T) {
	tr := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Window(ctx, []string{"bus-1"}, time.Now(), 0)
	assert.Error(t, err)

	_, _, err = tr.Latest(ctx, "bus-1")
	assert.Error(t, err)
}

func TestPruneDropsOldHistoryKeepsLatest(t *testing.T) {
	tr := New()
	now := time.Now()
	old := now.Add(-3 * time.Hour)

	tr.Record(sampleAt("bus-1", old, 12.80))
	tr.Prune(now)

	window, err := tr.Window(context.Background(), []string{"bus-1"}, old.Add(-time.Minute), 0)
	require.NoError(t, err)
	assert.Empty(t, window)

	// A silent vehicle still has a last known position.
	sample, ok, err := tr.Latest(context.Background(), "bus-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12.80, sample.Location.Lat)
}
