package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"glowdesk/models"
)

// ErrNotFound is returned when no appointment exists for the given id.
var ErrNotFound = errors.New("appointment not found")

// AppointmentRepository defines the appointment store owned by the
// scheduling engine. Appointments are never physically deleted.
type AppointmentRepository interface {
	// CreateAppointment persists a new appointment record.
	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	// GetAppointmentByID retrieves an appointment by its unique ID.
	GetAppointmentByID(ctx context.Context, appointmentID string) (*models.Appointment, error)
	// GetActiveAppointments retrieves all booked appointments for a place on a date.
	GetActiveAppointments(ctx context.Context, placeID, date string) ([]models.Appointment, error)
	// SetStatus updates the status field of an appointment.
	SetStatus(ctx context.Context, appointmentID, status string) error
	// UpdateSchedule overwrites date and start time on a reschedule.
	UpdateSchedule(ctx context.Context, appointmentID, date string, startTime int, rescheduledAt time.Time) error
}
