package models

import (
	"errors"
	"strings"
	"time"
)

// DayMask is a 7-bit day-of-week bitmask: bit 0 is Sunday through bit 6,
// Saturday, matching time.Weekday ordering.
type DayMask uint8

const EveryDay DayMask = 0x7F

// Active reports whether the mask includes the given weekday.
func (m DayMask) Active(day time.Weekday) bool {
	return m&(1<<uint(day)) != 0
}

// NewDayMask builds a mask from a set of weekdays.
func NewDayMask(days ...time.Weekday) DayMask {
	var m DayMask
	for _, d := range days {
		m |= 1 << uint(d)
	}
	return m
}

func (m DayMask) String() string {
	if m == 0 {
		return "none"
	}
	names := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	var active []string
	for d := 0; d < 7; d++ {
		if m&(1<<uint(d)) != 0 {
			active = append(active, names[d])
		}
	}
	return strings.Join(active, ",")
}

// Schedule binds one vehicle to one route on a recurring basis. Departure and
// Arrival carry a nominal time-of-day; only their clock components and the
// arrival-after-departure delta are meaningful.
type Schedule struct {
	ID           string    `json:"id"`
	RouteID      string    `json:"routeId"`
	VehicleID    string    `json:"vehicleId"`
	Departure    time.Time `json:"departureTime"`
	Arrival      time.Time `json:"arrivalTime"`
	DaysActive   DayMask   `json:"daysActive"`
	FrequencyMin int       `json:"frequencyMin,omitempty"`
}

var ErrScheduleInverted = errors.New("schedule arrival must be after departure")

// Validate enforces the arrival-strictly-after-departure invariant.
func (s *Schedule) Validate() error {
	if !s.Arrival.After(s.Departure) {
		return ErrScheduleInverted
	}
	return nil
}

// Duration is the nominal departure-to-arrival delta.
func (s *Schedule) Duration() time.Duration {
	return s.Arrival.Sub(s.Departure)
}
