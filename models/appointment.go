package models

import "time"

// Appointment status values. Cancelled is terminal; a reschedule keeps the
// booked status and overwrites date/startTime in place.
const (
	AppointmentStatusBooked    = "booked"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment booking modes.
const (
	BookingModeOnline = "online"
	BookingModeWalkin = "walkin"
)

// AppointmentService is one service line within an appointment, bound to the
// staff member who performs it.
type AppointmentService struct {
	ServiceID  string  `bson:"serviceId" json:"serviceId"`
	EmployeeID string  `bson:"employeeId" json:"employeeId"`
	Price      float64 `bson:"price" json:"price"`
	Duration   int     `bson:"duration" json:"duration"` // minutes
}

// Appointment represents a confirmed booking record. It is never physically
// deleted; cancellation flips Status, reschedule replaces Date/StartTime.
type Appointment struct {
	ID                string               `bson:"id" json:"id"`
	PlaceID           string               `bson:"placeId" json:"placeId"`
	PlaceType         string               `bson:"placeType" json:"placeType"` // "salon" or "spa"
	CustomerID        string               `bson:"customerId,omitempty" json:"customerId,omitempty"`
	WalkInCustomer    string               `bson:"walkInCustomer,omitempty" json:"walkInCustomer,omitempty"`
	PrimaryEmployeeID string               `bson:"primaryEmployeeId" json:"primaryEmployeeId"`
	Services          []AppointmentService `bson:"services" json:"services"`
	Date              string               `bson:"date" json:"date"`           // canonical DD-MM-YYYY
	StartTime         int                  `bson:"startTime" json:"startTime"` // minutes from midnight
	TotalDuration     int                  `bson:"totalDuration" json:"totalDuration"`
	TotalAmount       float64              `bson:"totalAmount" json:"totalAmount"`
	Status            string               `bson:"status" json:"status"`
	PaymentStatus     string               `bson:"paymentStatus" json:"paymentStatus"`
	Mode              string               `bson:"mode" json:"mode"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	RescheduledAt     *time.Time           `bson:"rescheduledAt,omitempty" json:"rescheduledAt,omitempty"`
}

// EmployeeIDs returns the distinct staff members referenced by the
// appointment's services, in first-appearance order.
func (a *Appointment) EmployeeIDs() []string {
	seen := make(map[string]bool, len(a.Services))
	var ids []string
	for _, svc := range a.Services {
		if !seen[svc.EmployeeID] {
			seen[svc.EmployeeID] = true
			ids = append(ids, svc.EmployeeID)
		}
	}
	return ids
}
