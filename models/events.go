package models

// Scheduling event types, consumed by out-of-scope collaborators
// (notification delivery, activity log, reporting).
const (
	EventAppointmentBooked      = "appointment_booked"
	EventAppointmentCancelled   = "appointment_cancelled"
	EventAppointmentRescheduled = "appointment_rescheduled"
)

// SchedulingEvent is the payload emitted for every engine state change.
// OldDate/OldStartTime are set only on reschedule, so downstream consumers
// can reconstruct history the appointment record itself discards.
type SchedulingEvent struct {
	Type          string   `json:"type"`
	AppointmentID string   `json:"appointmentId"`
	PlaceID       string   `json:"placeId"`
	EmployeeIDs   []string `json:"employeeIds"`
	Date          string   `json:"date"`
	StartTime     int      `json:"startTime"`
	OldDate       string   `json:"oldDate,omitempty"`
	OldStartTime  int      `json:"oldStartTime,omitempty"`
}

// ReminderPayload is the asynq task payload for appointment reminders.
type ReminderPayload struct {
	AppointmentID string `json:"appointmentId"`
	PlaceID       string `json:"placeId"`
	CustomerID    string `json:"customerId"`
	Date          string `json:"date"`
	StartTime     int    `json:"startTime"`
}
