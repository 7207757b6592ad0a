package placeRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glowdesk/database"
	"glowdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoPlaceRepo implements PlaceRepository using MongoDB.
type MongoPlaceRepo struct {
	placeColl *mongo.Collection
}

// NewMongoPlaceRepo constructs a new instance of MongoPlaceRepo.
func NewMongoPlaceRepo() PlaceRepository {
	return &MongoPlaceRepo{
		placeColl: database.DB().Collection("places"),
	}
}

// GetPlaceByID retrieves a place document by ID.
func (repo *MongoPlaceRepo) GetPlaceByID(ctx context.Context, placeID string) (*models.Place, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var place models.Place
	filter := bson.M{"id": placeID}
	if err := repo.placeColl.FindOne(ctxWithTimeout, filter).Decode(&place); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching place with id %s: %w", placeID, err)
	}
	return &place, nil
}
