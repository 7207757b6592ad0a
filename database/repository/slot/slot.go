package slotRepo

import (
	"context"

	"glowdesk/models"
)

// SlotRepository defines the per-date slot index owned by the scheduling
// engine. It exists purely for fast conflict lookup; the appointment store
// remains the source of truth.
type SlotRepository interface {
	// PutSlots inserts index entries for a place and date.
	PutSlots(ctx context.Context, placeID, date string, entries []models.Slot) error
	// GetSlots retrieves all index entries for a place and date.
	GetSlots(ctx context.Context, placeID, date string) ([]models.Slot, error)
	// DeleteSlotsByAppointment removes every entry keyed by the appointment
	// under the given date.
	DeleteSlotsByAppointment(ctx context.Context, placeID, date, appointmentID string) error
}
