package placeRepo

import (
	"context"
	"errors"

	"glowdesk/models"
)

// ErrNotFound is returned when no place exists for the given id.
var ErrNotFound = errors.New("place not found")

// PlaceRepository defines the read-only reference surface for places.
// The scheduling core never writes to it.
type PlaceRepository interface {
	// GetPlaceByID retrieves a place by its unique ID.
	GetPlaceByID(ctx context.Context, placeID string) (*models.Place, error)
}
