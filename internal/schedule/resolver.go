// Package schedule resolves recurring schedule definitions into concrete
// departure instants.
package schedule

import (
	"errors"
	"sort"
	"time"

	"pulse.busmetro.org/internal/models"
)

// ErrNoOccurrence is returned when a schedule has no upcoming departure, for
// example because its day mask is empty.
var ErrNoOccurrence = errors.New("schedule has no upcoming occurrence")

// Occurrence is one concrete departure of a schedule, with the arrival
// offset by the schedule's nominal departure-to-arrival delta.
type Occurrence struct {
	ScheduleID string    `json:"scheduleId"`
	VehicleID  string    `json:"vehicleId"`
	Departure  time.Time `json:"departureTime"`
	Arrival    time.Time `json:"arrivalTime"`
}

// NextDeparture returns the next occurrence of the schedule at or after now.
// It scans forward up to seven days for the next day whose active bit is set,
// so a Mon/Wed/Fri schedule queried on a Monday evening resolves to Wednesday
// rather than a phantom Tuesday run.
func NextDeparture(s *models.Schedule, now time.Time) (Occurrence, error) {
	if s.DaysActive == 0 {
		return Occurrence{}, ErrNoOccurrence
	}

	for dayOffset := 0; dayOffset < 8; dayOffset++ {
		day := now.AddDate(0, 0, dayOffset)
		if !s.DaysActive.Active(day.Weekday()) {
			continue
		}
		for _, dep := range departuresOn(s, day) {
			if !dep.Before(now) {
				return Occurrence{
					ScheduleID: s.ID,
					VehicleID:  s.VehicleID,
					Departure:  dep,
					Arrival:    dep.Add(s.Duration()),
				}, nil
			}
		}
	}

	return Occurrence{}, ErrNoOccurrence
}

// NextOccurrences returns up to n upcoming occurrences of the schedule,
// ascending by departure time.
func NextOccurrences(s *models.Schedule, now time.Time, n int) []Occurrence {
	var result []Occurrence
	cursor := now
	for len(result) < n {
		occ, err := NextDeparture(s, cursor)
		if err != nil {
			break
		}
		result = append(result, occ)
		cursor = occ.Departure.Add(time.Minute)
	}
	return result
}

// MergeOccurrences flattens per-schedule occurrence lists into a single list
// sorted ascending by departure, capped at limit.
func MergeOccurrences(lists [][]Occurrence, limit int) []Occurrence {
	var merged []Occurrence
	for _, list := range lists {
		merged = append(merged, list...)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Departure.Before(merged[j].Departure)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// departuresOn lists the schedule's departure instants anchored to the given
// calendar day, in clock order. A positive repeat frequency produces repeats
// at that interval until end of day.
func departuresOn(s *models.Schedule, day time.Time) []time.Time {
	first := time.Date(day.Year(), day.Month(), day.Day(),
		s.Departure.Hour(), s.Departure.Minute(), s.Departure.Second(), 0, day.Location())

	if s.FrequencyMin <= 0 {
		return []time.Time{first}
	}

	endOfDay := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())
	var deps []time.Time
	for dep := first; !dep.After(endOfDay); dep = dep.Add(time.Duration(s.FrequencyMin) * time.Minute) {
		deps = append(deps, dep)
	}
	return deps
}
