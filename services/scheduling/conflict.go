package scheduling

import (
	"context"
	"fmt"

	appointmentRepo "glowdesk/database/repository/appointment"
	slotRepo "glowdesk/database/repository/slot"
	"glowdesk/models"
)

// ConflictValidator checks a proposed allocation against everything already
// occupying staff time on the target date. It is strictly read-only; no side
// effects occur before a verdict is reached.
type ConflictValidator struct {
	Appointments appointmentRepo.AppointmentRepository
	SlotIndex    slotRepo.SlotRepository
}

// Validate scans, for each employee window, (a) the occupied windows of all
// active appointments for the place and date and (b) the slot index entries
// for that employee. The first overlap found short-circuits with a
// ConflictError naming the employee. excludeAppointmentID lets a reschedule
// ignore the appointment's own prior state.
func (v *ConflictValidator) Validate(ctx context.Context, placeID, date string, windows []EmployeeWindow, excludeAppointmentID string) error {
	if len(windows) == 0 {
		return nil
	}

	active, err := v.Appointments.GetActiveAppointments(ctx, placeID, date)
	if err != nil {
		return fmt.Errorf("conflict check: fetching active appointments: %w", err)
	}
	slots, err := v.SlotIndex.GetSlots(ctx, placeID, date)
	if err != nil {
		return fmt.Errorf("conflict check: fetching slot index: %w", err)
	}

	for _, w := range windows {
		for i := range active {
			appt := &active[i]
			if appt.ID == excludeAppointmentID {
				continue
			}
			for _, other := range AppointmentWindows(appt) {
				if other.EmployeeID == w.EmployeeID && w.Interval().Overlaps(other.Interval()) {
					return &ConflictError{EmployeeID: w.EmployeeID}
				}
			}
		}
		for _, s := range slots {
			if s.AppointmentID == excludeAppointmentID {
				continue
			}
			if s.Status == models.AppointmentStatusCancelled || s.EmployeeID != w.EmployeeID {
				continue
			}
			if s.Overlaps(w.Start, w.End) {
				return &ConflictError{EmployeeID: w.EmployeeID}
			}
		}
	}
	return nil
}
