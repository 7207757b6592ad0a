package employeeRepo

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

// MongoEmployeeRepo implements EmployeeRepository using MongoDB.
type MongoEmployeeRepo struct {
	employeeColl *mongo.Collection
}

// NewMongoEmployeeRepo constructs a new instance of MongoEmployeeRepo.
func NewMongoEmployeeRepo() EmployeeRepository {
	return &MongoEmployeeRepo{
		employeeColl: database.DB().Collection("employees"),
	}
}

// GetEmployeeByID retrieves an employee document by ID.
func (repo *MongoEmployeeRepo) GetEmployeeByID(ctx context.Context, employeeID string) (*models.Employee, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var employee models.Employee
	filter := bson.M{"id": employeeID}
	if err := repo.employeeColl.FindOne(ctxWithTimeout, filter).Decode(&employee); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching employee with id %s: %w", employeeID, err)
	}
	return &employee, nil
}
