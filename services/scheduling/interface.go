package scheduling

import (
	"context"
	"time"

	appointmentRepo "glowdesk/database/repository/appointment"
	slotRepo "glowdesk/database/repository/slot"
	"glowdesk/models"
	"glowdesk/services/reference"
)

// CancelLeadTime is the minimum notice for cancelling or rescheduling an
// appointment, measured against its start.
const CancelLeadTime = 60 * time.Minute

// Service defines the scheduling engine operations.
type Service interface {
	// GetAvailability lists bookable "hh:mm" start times for one service,
	// employee and date.
	GetAvailability(ctx context.Context, query models.AvailabilityQuery) ([]string, error)
	// Book turns a booking request into a confirmed appointment plus its
	// slot index entries, or rejects it without writing anything.
	Book(ctx context.Context, req models.BookingRequest) (*models.Appointment, error)
	// Cancel flips a booked appointment to cancelled and clears its slots.
	Cancel(ctx context.Context, callerID, appointmentID string) error
	// Reschedule moves a booked appointment to a new date and start time.
	Reschedule(ctx context.Context, callerID, appointmentID string, req models.RescheduleRequest) (*models.Appointment, error)
}

// DefaultSchedulingEngine is the production implementation.
type DefaultSchedulingEngine struct {
	Reference    reference.Service
	Appointments appointmentRepo.AppointmentRepository
	SlotIndex    slotRepo.SlotRepository
	Events       EventPublisher
	Validator    *ConflictValidator

	locks *dayLock
	now   func() time.Time
}

// NewDefaultSchedulingEngine wires the engine with its collaborators.
func NewDefaultSchedulingEngine(
	ref reference.Service,
	appointments appointmentRepo.AppointmentRepository,
	slotIndex slotRepo.SlotRepository,
	events EventPublisher,
) *DefaultSchedulingEngine {
	return &DefaultSchedulingEngine{
		Reference:    ref,
		Appointments: appointments,
		SlotIndex:    slotIndex,
		Events:       events,
		Validator:    &ConflictValidator{Appointments: appointments, SlotIndex: slotIndex},
		locks:        newDayLock(),
		now:          time.Now,
	}
}
