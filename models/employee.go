package models

// AvailabilityWindow is a per-weekday override of an employee's working hours.
// Start and End are "hh:mm" clock strings.
type AvailabilityWindow struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// Employee is a staff member. Read-only reference data for the scheduling core.
type Employee struct {
	ID           string                        `bson:"id" json:"id"`
	Name         string                        `bson:"name" json:"name"`
	PlaceID      string                        `bson:"placeId" json:"placeId"`
	Availability map[string]AvailabilityWindow `bson:"availability,omitempty" json:"availability,omitempty"` // keyed by lowercase weekday name
	IsActive     bool                          `bson:"isActive" json:"isActive"`
}
