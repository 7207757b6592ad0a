package employeeRepo

import (
	"context"
	"errors"

	"glowdesk/models"
)

// ErrNotFound is returned when no employee exists for the given id.
var ErrNotFound = errors.New("employee not found")

// EmployeeRepository defines the read-only reference surface for staff members.
type EmployeeRepository interface {
	// GetEmployeeByID retrieves an employee by its unique ID.
	GetEmployeeByID(ctx context.Context, employeeID string) (*models.Employee, error)
}
