package models

// Slot is one derived index entry inside a place's per-date slot table: the
// occupied interval of one employee for one appointment. Its sole purpose is
// conflict lookup without scanning every historical appointment.
//
// Invariant: for every appointment with status booked there is exactly one
// slot per distinct employee referenced by its services, and for a fixed
// (place, employee, date) all booked slots are pairwise non-overlapping
// half-open intervals [start, end).
type Slot struct {
	AppointmentID string   `bson:"appointmentId" json:"appointmentId"`
	EmployeeID    string   `bson:"employeeId" json:"employeeId"`
	StartTime     int      `bson:"startTime" json:"startTime"` // minutes from midnight
	EndTime       int      `bson:"endTime" json:"endTime"`
	Duration      int      `bson:"duration" json:"duration"`
	ServiceIDs    []string `bson:"serviceIds" json:"serviceIds"`
	Status        string   `bson:"status" json:"status"`
}

// Overlaps reports whether two half-open slot intervals intersect.
func (s Slot) Overlaps(start, end int) bool {
	return s.StartTime < end && s.EndTime > start
}
