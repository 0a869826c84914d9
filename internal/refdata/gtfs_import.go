package refdata

import (
	"fmt"
	"os"
	"time"

	"github.com/jamespfennell/gtfs"

	"pulse.busmetro.org/internal/geo"
	"pulse.busmetro.org/internal/models"
)

// ImportGTFSStatic populates the store from a static GTFS zip. GTFS has no
// notion of a bus fleet, so each scheduled trip is mapped to one recurring
// schedule with a synthesized vehicle, and route distance is accumulated
// from the planar stop-to-stop deltas of a representative trip.
func ImportGTFSStatic(store *Store, path string, city string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading GTFS file: %w", err)
	}

	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return fmt.Errorf("parsing GTFS data: %w", err)
	}

	imported := make(map[string]bool)

	for i := range staticData.Trips {
		trip := &staticData.Trips[i]
		if trip.Route == nil || trip.Service == nil || len(trip.StopTimes) < 2 {
			continue
		}

		routeID := trip.Route.Id
		if !imported[routeID] {
			route, ok := routeFromTrip(trip, city)
			if !ok {
				continue
			}
			store.AddRoute(route)
			imported[routeID] = true
		}

		departure := clockFromOffset(trip.StopTimes[0].DepartureTime)
		arrival := clockFromOffset(trip.StopTimes[len(trip.StopTimes)-1].ArrivalTime)
		if !arrival.After(departure) {
			// Trips crossing midnight do not fit a same-day schedule.
			continue
		}

		vehicleID := "trip-" + trip.ID
		store.AddVehicle(models.NewVehicle(vehicleID, trip.ID, "", "", 0, true))

		err := store.AddSchedule(models.Schedule{
			ID:         trip.ID,
			RouteID:    routeID,
			VehicleID:  vehicleID,
			Departure:  departure,
			Arrival:    arrival,
			DaysActive: dayMaskFromService(trip.Service),
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func routeFromTrip(trip *gtfs.ScheduledTrip, city string) (models.Route, bool) {
	var stops []models.Stop
	var distance float64
	var prev *models.Location

	for i := range trip.StopTimes {
		gtfsStop := trip.StopTimes[i].Stop
		if gtfsStop == nil || gtfsStop.Latitude == nil || gtfsStop.Longitude == nil {
			return models.Route{}, false
		}

		loc := models.Location{Lat: *gtfsStop.Latitude, Lon: *gtfsStop.Longitude}
		stops = append(stops, models.NewStop(gtfsStop.Id, trip.Route.Id, gtfsStop.Name, i, loc))
		if prev != nil {
			distance += geo.Distance(*prev, loc)
		}
		prev = &stops[len(stops)-1].Location
	}

	name := trip.Route.LongName
	if name == "" {
		name = trip.Route.ShortName
	}
	return models.NewRoute(trip.Route.Id, name, city, distance, stops), true
}

// clockFromOffset anchors a GTFS time-of-day offset onto the zero date, the
// same way seeded schedules carry only their clock component.
func clockFromOffset(offset time.Duration) time.Time {
	return time.Time{}.Add(offset)
}

func dayMaskFromService(service *gtfs.Service) models.DayMask {
	var days []time.Weekday
	if service.Sunday {
		days = append(days, time.Sunday)
	}
	if service.Monday {
		days = append(days, time.Monday)
	}
	if service.Tuesday {
		days = append(days, time.Tuesday)
	}
	if service.Wednesday {
		days = append(days, time.Wednesday)
	}
	if service.Thursday {
		days = append(days, time.Thursday)
	}
	if service.Friday {
		days = append(days, time.Friday)
	}
	if service.Saturday {
		days = append(days, time.Saturday)
	}
	return models.NewDayMask(days...)
}
