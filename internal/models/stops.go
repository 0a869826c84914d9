package models

// Stop is a point along a route. Index is zero-based insertion order and is
// strictly increasing along the route; it is the basis for all segment math.
type Stop struct {
	ID       string   `json:"id"`
	RouteID  string   `json:"routeId"`
	Name     string   `json:"name"`
	Index    int      `json:"index"`
	Location Location `json:"location"`
}

func NewStop(id, routeID, name string, index int, location Location) Stop {
	return Stop{
		ID:       id,
		RouteID:  routeID,
		Name:     name,
		Index:    index,
		Location: location,
	}
}
