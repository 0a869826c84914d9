package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"pulse.busmetro.org/internal/models"
)

// seedFile mirrors the JSON document the administrative collaborator
// exports: routes with embedded stops, schedules, and vehicles.
type seedFile struct {
	Routes    []seedRoute    `json:"routes"`
	Schedules []seedSchedule `json:"schedules"`
	Vehicles  []seedVehicle  `json:"vehicles"`
}

type seedRoute struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	City       string     `json:"city"`
	DistanceKm float64    `json:"distanceKm"`
	Stops      []seedStop `json:"stops"`
}

type seedStop struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type seedSchedule struct {
	ID           string `json:"id"`
	RouteID      string `json:"routeId"`
	VehicleID    string `json:"vehicleId"`
	Departure    string `json:"departureTime"` // HH:MM
	Arrival      string `json:"arrivalTime"`   // HH:MM
	DaysActive   uint8  `json:"daysActive"`
	FrequencyMin int    `json:"frequencyMin"`
}

type seedVehicle struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Operator string `json:"operator"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`
	Active   bool   `json:"active"`
}

// LoadSeedFile populates the store from a JSON seed document.
func LoadSeedFile(store *Store, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(b, &seed); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	for _, sr := range seed.Routes {
		stops := make([]models.Stop, len(sr.Stops))
		for i, ss := range sr.Stops {
			stops[i] = models.NewStop(ss.ID, sr.ID, ss.Name, i, models.Location{Lat: ss.Lat, Lon: ss.Lon})
		}
		store.AddRoute(models.NewRoute(sr.ID, sr.Name, sr.City, sr.DistanceKm, stops))
	}

	for _, sv := range seed.Vehicles {
		store.AddVehicle(models.NewVehicle(sv.ID, sv.Number, sv.Operator, sv.Type, sv.Capacity, sv.Active))
	}

	for _, ss := range seed.Schedules {
		departure, err := parseClock(ss.Departure)
		if err != nil {
			return fmt.Errorf("schedule %s departure: %w", ss.ID, err)
		}
		arrival, err := parseClock(ss.Arrival)
		if err != nil {
			return fmt.Errorf("schedule %s arrival: %w", ss.ID, err)
		}

		err = store.AddSchedule(models.Schedule{
			ID:           ss.ID,
			RouteID:      ss.RouteID,
			VehicleID:    ss.VehicleID,
			Departure:    departure,
			Arrival:      arrival,
			DaysActive:   models.DayMask(ss.DaysActive),
			FrequencyMin: ss.FrequencyMin,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func parseClock(value string) (time.Time, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q, use HH:MM", value)
	}
	return t, nil
}
