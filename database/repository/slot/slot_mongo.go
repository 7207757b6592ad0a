package slotRepo

import (
	"context"
	"fmt"
	"time"

	"glowdesk/database"
	"glowdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// slotDoc is the persisted shape of one index entry: the slot itself plus the
// (placeId, date) key it lives under.
type slotDoc struct {
	PlaceID     string `bson:"placeId"`
	Date        string `bson:"date"`
	models.Slot `bson:",inline"`
}

// MongoSlotRepo implements SlotRepository using MongoDB.
type MongoSlotRepo struct {
	slotColl *mongo.Collection
}

// NewMongoSlotRepo constructs a new instance of MongoSlotRepo.
func NewMongoSlotRepo() SlotRepository {
	return &MongoSlotRepo{
		slotColl: database.DB().Collection("slots"),
	}
}

// PutSlots inserts index entries for a place and date.
func (repo *MongoSlotRepo) PutSlots(ctx context.Context, placeID, date string, entries []models.Slot) error {
	if len(entries) == 0 {
		return nil
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	docs := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, slotDoc{PlaceID: placeID, Date: date, Slot: entry})
	}
	if _, err := repo.slotColl.InsertMany(ctxWithTimeout, docs); err != nil {
		return fmt.Errorf("error inserting slot entries: %w", err)
	}
	return nil
}

// GetSlots retrieves all index entries for a place and date.
func (repo *MongoSlotRepo) GetSlots(ctx context.Context, placeID, date string) ([]models.Slot, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"placeId": placeID, "date": date}
	cursor, err := repo.slotColl.Find(ctxWithTimeout, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding slot entries: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var docs []slotDoc
	if err := cursor.All(ctxWithTimeout, &docs); err != nil {
		return nil, fmt.Errorf("error decoding slot entries: %w", err)
	}

	entries := make([]models.Slot, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, doc.Slot)
	}
	return entries, nil
}

// DeleteSlotsByAppointment removes every entry keyed by the appointment under
// the given date.
func (repo *MongoSlotRepo) DeleteSlotsByAppointment(ctx context.Context, placeID, date, appointmentID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"placeId": placeID, "date": date, "appointmentId": appointmentID}
	if _, err := repo.slotColl.DeleteMany(ctxWithTimeout, filter); err != nil {
		return fmt.Errorf("error deleting slot entries for appointment %s: %w", appointmentID, err)
	}
	return nil
}
