package eta

import (
	"time"

	"pulse.busmetro.org/internal/models"
)

// Request is one journey query: "when can I ride from this stop to that stop
// on this route". ReferenceTime defaults to now; ConsiderTraffic defaults to
// true and is a pointer so an explicit false survives JSON decoding.
type Request struct {
	RouteID         string     `json:"routeId" validate:"required,max=100"`
	FromStopID      string     `json:"fromStopId" validate:"required,max=100"`
	ToStopID        string     `json:"toStopId" validate:"required,max=100"`
	ReferenceTime   *time.Time `json:"referenceTime,omitempty"`
	ConsiderTraffic *bool      `json:"considerTraffic,omitempty"`
	ConsiderWeather bool       `json:"considerWeather,omitempty"`
}

func (r *Request) considerTraffic() bool {
	return r.ConsiderTraffic == nil || *r.ConsiderTraffic
}

// RouteSummary identifies the route a result was computed for.
type RouteSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	City       string  `json:"city"`
	DistanceKm float64 `json:"distanceKm"`
}

// StopSummary identifies one endpoint of the journey.
type StopSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Journey describes the requested segment.
type Journey struct {
	FromStop   StopSummary `json:"fromStop"`
	ToStop     StopSummary `json:"toStop"`
	StopCount  int         `json:"stopCount"`
	DistanceKm float64     `json:"distance"`
}

// Figures carries the bounded ETA numbers in minutes. RecommendedVehicle is
// set only when a live vehicle beats the nominal average.
type Figures struct {
	BestCase           int                 `json:"bestCase"`
	Average            int                 `json:"average"`
	WorstCase          int                 `json:"worstCase"`
	Recommended        int                 `json:"recommended"`
	RecommendedVehicle *RecommendedVehicle `json:"recommendedVehicle"`
}

type RecommendedVehicle struct {
	VehicleID        string  `json:"vehicleId"`
	Number           string  `json:"number,omitempty"`
	DistanceKm       float64 `json:"distance"`
	EstimatedArrival int     `json:"estimatedArrival"`
}

// Factors echoes the inputs that shaped the estimate.
type Factors struct {
	TrafficMultiplier float64 `json:"trafficMultiplier"`
	BaseSpeedKmh      float64 `json:"baseSpeed"`
	DwellMinutes      int     `json:"dwellMinutes"`
	ConsiderTraffic   bool    `json:"considerTraffic"`
	ConsiderWeather   bool    `json:"considerWeather"`
}

// Candidate is one live vehicle ranked by its distance to the origin stop.
// EstimatedArrival is minutes until it reaches the origin, delay included.
type Candidate struct {
	VehicleID        string          `json:"vehicleId"`
	Number           string          `json:"number,omitempty"`
	DistanceKm       float64         `json:"distance"`
	Location         models.Location `json:"currentLocation"`
	SpeedKmh         float64         `json:"speed"`
	DelayMin         int             `json:"delay"`
	EstimatedArrival int             `json:"estimatedArrival"`
	LastUpdate       time.Time       `json:"lastUpdate"`
}

// Departure is one upcoming schedule-based run of the journey.
type Departure struct {
	ScheduleID       string    `json:"scheduleId"`
	VehicleID        string    `json:"vehicleId"`
	Number           string    `json:"number,omitempty"`
	DepartureTime    time.Time `json:"departureTime"`
	EstimatedArrival time.Time `json:"estimatedArrival"`
	TotalDuration    int       `json:"totalDuration"`
}

// Result is the full answer to one journey request.
type Result struct {
	Route              RouteSummary `json:"route"`
	Journey            Journey      `json:"journey"`
	ETA                Figures      `json:"eta"`
	Factors            Factors      `json:"factors"`
	NearbyVehicles     []Candidate  `json:"nearbyVehicles"`
	ScheduleDepartures []Departure  `json:"scheduleDepartures"`
	CalculatedAt       time.Time    `json:"calculatedAt"`
}
