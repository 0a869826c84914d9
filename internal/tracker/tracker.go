// Package tracker maintains the live picture of the fleet: an append-only
// telemetry history plus a per-vehicle latest-sample cache. It is the only
// mutable cross-request state in the engine.
package tracker

import (
	"context"
	"sort"
	"sync"
	"time"

	"pulse.busmetro.org/internal/models"
)

// Tracker stores telemetry samples and answers "where is this vehicle now"
// and "what did the fleet report recently". Writes come from the ingestion
// collaborator; everything else is read-only.
type Tracker struct {
	mu sync.RWMutex

	// latest holds the sample with the maximum timestamp per vehicle. It
	// only moves forward in time, so out-of-order delivery cannot regress
	// the live picture.
	latest map[string]models.TelemetrySample

	// history holds samples newest-first per vehicle, bounded by
	// retention pruning.
	history map[string][]models.TelemetrySample

	retention time.Duration
}

// DefaultRetention bounds how much history is kept per vehicle. It exceeds
// the traffic window so windowed reads never hit a pruned gap.
const DefaultRetention = 2 * time.Hour

func New() *Tracker {
	return &Tracker{
		latest:    make(map[string]models.TelemetrySample),
		history:   make(map[string][]models.TelemetrySample),
		retention: DefaultRetention,
	}
}

// Record stores a sample. It is idempotent with respect to duplicate
// delivery: a sample matching an already-stored (vehicle, timestamp) pair is
// dropped. The latest cache is updated only when the sample is strictly
// newer than the cached one.
func (t *Tracker) Record(sample models.TelemetrySample) {
	if sample.VehicleID == "" || sample.Timestamp.IsZero() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	samples := t.history[sample.VehicleID]
	for i := range samples {
		if samples[i].Timestamp.Equal(sample.Timestamp) {
			return
		}
	}

	// Insert newest-first.
	samples = append(samples, sample)
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Timestamp.After(samples[j].Timestamp)
	})
	t.history[sample.VehicleID] = samples

	current, ok := t.latest[sample.VehicleID]
	if !ok || sample.Timestamp.After(current.Timestamp) {
		t.latest[sample.VehicleID] = sample
	}
}

// Latest returns the most recent sample for the vehicle, if any.
func (t *Tracker) Latest(ctx context.Context, vehicleID string) (models.TelemetrySample, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.TelemetrySample{}, false, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	sample, ok := t.latest[vehicleID]
	return sample, ok, nil
}

// Window returns samples for the given vehicles with timestamps at or after
// since, newest-first, capped at cap (0 means uncapped).
func (t *Tracker) Window(ctx context.Context, vehicleIDs []string, since time.Time, cap int) ([]models.TelemetrySample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []models.TelemetrySample
	for _, id := range vehicleIDs {
		for _, sample := range t.history[id] {
			if sample.Timestamp.Before(since) {
				// History is newest-first, nothing older qualifies.
				break
			}
			result = append(result, sample)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	if cap > 0 && len(result) > cap {
		result = result[:cap]
	}
	return result, nil
}

// Prune drops history older than the retention horizon. The latest cache is
// left intact so a silent vehicle still has a last known position.
func (t *Tracker) Prune(now time.Time) {
	horizon := now.Add(-t.retention)

	t.mu.Lock()
	defer t.mu.Unlock()

	for id, samples := range t.history {
		cut := len(samples)
		for i, sample := range samples {
			if sample.Timestamp.Before(horizon) {
				cut = i
				break
			}
		}
		if cut == 0 {
			delete(t.history, id)
		} else if cut < len(samples) {
			t.history[id] = samples[:cut]
		}
	}
}

// PruneLoop runs Prune on a fixed interval until the stop channel closes.
func (t *Tracker) PruneLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.Prune(time.Now())
		case <-stop:
			return
		}
	}
}
