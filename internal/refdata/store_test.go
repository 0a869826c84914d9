package refdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse.busmetro.org/internal/models"
)

func TestAddRouteSortsStopsByIndex(t *testing.T) {
	store := NewStore()
	store.AddRoute(models.NewRoute("route-1", "Blue Line", "bengaluru", 12, []models.Stop{
		models.NewStop("stop-2", "route-1", "Third", 2, models.Location{}),
		models.NewStop("stop-0", "route-1", "First", 0, models.Location{}),
		models.NewStop("stop-1", "route-1", "Second", 1, models.Location{}),
	}))

	route, err := store.RouteByID(context.Background(), "route-1")
	require.NoError(t, err)
	require.Len(t, route.Stops, 3)
	assert.Equal(t, "First", route.Stops[0].Name)
	assert.Equal(t, "Second", route.Stops[1].Name)
	assert.Equal(t, "Third", route.Stops[2].Name)
}

func TestRouteByIDNotFound(t *testing.T) {
	store := NewStore()
	_, err := store.RouteByID(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRoutesFiltersByCity(t *testing.T) {
	store := NewStore()
	store.AddRoute(models.NewRoute("route-b", "B", "delhi", 10, nil))
	store.AddRoute(models.NewRoute("route-a", "A", "bengaluru", 10, nil))
	store.AddRoute(models.NewRoute("route-c", "C", "bengaluru", 10, nil))

	all, err := store.Routes(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "route-a", all[0].ID, "routes come back sorted by ID")

	blr, err := store.Routes(context.Background(), "bengaluru")
	require.NoError(t, err)
	assert.Len(t, blr, 2)
}

func TestAddScheduleRejectsInvertedTimes(t *testing.T) {
	store := NewStore()
	dep := time.Date(0, time.January, 1, 10, 0, 0, 0, time.UTC)

	err := store.AddSchedule(models.Schedule{
		ID:         "sched-1",
		RouteID:    "route-1",
		VehicleID:  "bus-1",
		Departure:  dep,
		Arrival:    dep.Add(-time.Hour),
		DaysActive: models.EveryDay,
	})
	assert.ErrorIs(t, err, models.ErrScheduleInverted)

	scheds, err := store.SchedulesForRoute(context.Background(), "route-1")
	require.NoError(t, err)
	assert.Empty(t, scheds)
}

func TestReadsHonorContextCancellation(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.RouteByID(ctx, "route-1")
	assert.Error(t, err)
	_, err = store.Routes(ctx, "")
	assert.Error(t, err)
	_, err = store.SchedulesForRoute(ctx, "route-1")
	assert.Error(t, err)
	_, err = store.VehicleByID(ctx, "bus-1")
	assert.Error(t, err)
}

func TestLoadSeedFile(t *testing.T) {
	seed := `{
	  "routes": [
	    {
	      "id": "route-1",
	      "name": "Blue Line",
	      "city": "bengaluru",
	      "distanceKm": 30,
	      "stops": [
	        {"id": "stop-0", "name": "Majestic", "lat": 12.9766, "lon": 77.5713},
	        {"id": "stop-1", "name": "Indiranagar", "lat": 12.9784, "lon": 77.6408}
	      ]
	    }
	  ],
	  "schedules": [
	    {
	      "id": "sched-1",
	      "routeId": "route-1",
	      "vehicleId": "bus-1",
	      "departureTime": "09:30",
	      "arrivalTime": "10:30",
	      "daysActive": 127,
	      "frequencyMin": 20
	    }
	  ],
	  "vehicles": [
	    {"id": "bus-1", "number": "KA-01-F-1234", "operator": "BMTC", "type": "ac", "capacity": 40, "active": true}
	  ]
	}`

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	store := NewStore()
	require.NoError(t, LoadSeedFile(store, path))

	routes, stops, schedules, vehicles := store.Statistics()
	assert.Equal(t, 1, routes)
	assert.Equal(t, 2, stops)
	assert.Equal(t, 1, schedules)
	assert.Equal(t, 1, vehicles)

	route, err := store.RouteByID(context.Background(), "route-1")
	require.NoError(t, err)
	assert.Equal(t, 0, route.Stops[0].Index)
	assert.Equal(t, 1, route.Stops[1].Index)
	assert.Equal(t, 12.9766, route.Stops[0].Location.Lat)

	scheds, err := store.SchedulesForRoute(context.Background(), "route-1")
	require.NoError(t, err)
	require.Len(t, scheds, 1)
	assert.Equal(t, 9, scheds[0].Departure.Hour())
	assert.Equal(t, 30, scheds[0].Departure.Minute())
	assert.Equal(t, models.EveryDay, scheds[0].DaysActive)
	assert.Equal(t, 20, scheds[0].FrequencyMin)

	vehicle, err := store.VehicleByID(context.Background(), "bus-1")
	require.NoError(t, err)
	assert.Equal(t, "KA-01-F-1234", vehicle.Number)
	assert.True(t, vehicle.Active)
}

func TestLoadSeedFileBadClock(t *testing.T) {
	seed := `{"schedules": [{"id": "sched-1", "routeId": "route-1", "vehicleId": "bus-1", "departureTime": "9.30", "arrivalTime": "10:30", "daysActive": 127}]}`
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	err := LoadSeedFile(NewStore(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sched-1")
}

func TestLoadSeedFileMissing(t *testing.T) {
	err := LoadSeedFile(NewStore(), filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
