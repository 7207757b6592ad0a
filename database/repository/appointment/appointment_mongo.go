package appointmentRepo

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

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
type MongoAppointmentRepo struct {
	appointmentColl *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new instance of MongoAppointmentRepo.
func NewMongoAppointmentRepo() AppointmentRepository {
	return &MongoAppointmentRepo{
		appointmentColl: database.DB().Collection("appointments"),
	}
}

// CreateAppointment inserts a new appointment document.
func (repo *MongoAppointmentRepo) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.appointmentColl.InsertOne(ctxWithTimeout, appt); err != nil {
		return fmt.Errorf("error creating appointment: %w", err)
	}
	return nil
}

// GetAppointmentByID retrieves an appointment by its ID.
func (repo *MongoAppointmentRepo) GetAppointmentByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	filter := bson.M{"id": appointmentID}
	if err := repo.appointmentColl.FindOne(ctxWithTimeout, filter).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching appointment with id %s: %w", appointmentID, err)
	}
	return &appt, nil
}

// GetActiveAppointments retrieves all booked appointments for a place on a date.
func (repo *MongoAppointmentRepo) GetActiveAppointments(ctx context.Context, placeID, date string) ([]models.Appointment, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"placeId": placeID,
		"date":    date,
		"status":  models.AppointmentStatusBooked,
	}
	cursor, err := repo.appointmentColl.Find(ctxWithTimeout, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding active appointments: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var appts []models.Appointment
	if err := cursor.All(ctxWithTimeout, &appts); err != nil {
		return nil, fmt.Errorf("error decoding active appointments: %w", err)
	}
	return appts, nil
}

// SetStatus updates the status field of an appointment.
func (repo *MongoAppointmentRepo) SetStatus(ctx context.Context, appointmentID, status string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": appointmentID}
	update := bson.M{"$set": bson.M{"status": status}}
	res, err := repo.appointmentColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error updating status for appointment %s: %w", appointmentID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSchedule overwrites date and start time on a reschedule. Prior values
// are not retained; the rescheduledAt stamp is the only trace left behind.
func (repo *MongoAppointmentRepo) UpdateSchedule(ctx context.Context, appointmentID, date string, startTime int, rescheduledAt time.Time) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": appointmentID}
	update := bson.M{"$set": bson.M{
		"date":          date,
		"startTime":     startTime,
		"rescheduledAt": rescheduledAt,
	}}
	res, err := repo.appointmentColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error updating schedule for appointment %s: %w", appointmentID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
