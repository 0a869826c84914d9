package models

// Route is an ordered sequence of stops with a total nominal distance.
// Stops are kept sorted by Index.
type Route struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	City       string  `json:"city"`
	DistanceKm float64 `json:"distanceKm"`
	Stops      []Stop  `json:"stops"`
}

func NewRoute(id, name, city string, distanceKm float64, stops []Stop) Route {
	return Route{
		ID:         id,
		Name:       name,
		City:       city,
		DistanceKm: distanceKm,
		Stops:      stops,
	}
}

// StopByID returns the stop with the given ID, or nil if the stop is not on
// this route.
func (r *Route) StopByID(id string) *Stop {
	for i := range r.Stops {
		if r.Stops[i].ID == id {
			return &r.Stops[i]
		}
	}
	return nil
}

// DistancePerStop is the route distance divided evenly across its stops.
// Uneven real-world stop spacing is not modeled. Returns 0 for a route with
// no stops.
func (r *Route) DistancePerStop() float64 {
	if len(r.Stops) == 0 {
		return 0
	}
	return r.DistanceKm / float64(len(r.Stops))
}

// StopsAfter returns up to max stops strictly after the given index, in
// route order.
func (r *Route) StopsAfter(index int, max int) []Stop {
	var result []Stop
	for i := range r.Stops {
		if r.Stops[i].Index > index {
			result = append(result, r.Stops[i])
			if len(result) == max {
				break
			}
		}
	}
	return result
}
