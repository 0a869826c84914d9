package models

// Vehicle is a bus in the fleet. The last-known-location cache lives in the
// position tracker, not here; reference data stays immutable.
type Vehicle struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Operator string `json:"operator,omitempty"`
	Type     string `json:"type,omitempty"`
	Capacity int    `json:"capacity"`
	Active   bool   `json:"active"`
}

func NewVehicle(id, number, operator, vehicleType string, capacity int, active bool) Vehicle {
	return Vehicle{
		ID:       id,
		Number:   number,
		Operator: operator,
		Type:     vehicleType,
		Capacity: capacity,
		Active:   active,
	}
}
