package models

// ServiceSelection is one requested service line. EmployeeID may be empty, in
// which case the place's designated master employee performs it.
type ServiceSelection struct {
	ServiceID  string `json:"serviceId" binding:"required"`
	EmployeeID string `json:"employeeId"`
}

// BookingRequest is the payload to create an appointment. Date accepts both
// DD-MM-YYYY and YYYY-MM-DD; StartTime is an "hh:mm" clock string.
type BookingRequest struct {
	PlaceID        string             `json:"placeId" binding:"required"`
	CustomerID     string             `json:"customerId"`
	WalkInCustomer string             `json:"walkInCustomer"`
	Mode           string             `json:"mode"`
	Date           string             `json:"date" binding:"required"`
	StartTime      string             `json:"startTime" binding:"required"`
	Services       []ServiceSelection `json:"services" binding:"required"`
}

// RescheduleRequest moves an existing appointment to a new date and time.
type RescheduleRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
}

// AvailabilityQuery asks for bookable start times for one service on one date.
type AvailabilityQuery struct {
	PlaceID    string `form:"placeId" binding:"required"`
	EmployeeID string `form:"employeeId"`
	ServiceID  string `form:"serviceId" binding:"required"`
	Date       string `form:"date" binding:"required"`
}
