package models

// DayTiming is a place's opening window for one weekday.
// Open and Close are "hh:mm" clock strings; they are converted to minute
// offsets at the scheduling boundary only.
type DayTiming struct {
	IsOpen bool   `bson:"isOpen" json:"isOpen"`
	Open   string `bson:"open,omitempty" json:"open,omitempty"`
	Close  string `bson:"close,omitempty" json:"close,omitempty"`
}

// Service is one bookable service definition owned by a place.
type Service struct {
	ID       string  `bson:"id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Duration int     `bson:"duration" json:"duration"` // minutes
	Price    float64 `bson:"price" json:"price"`
	IsActive bool    `bson:"isActive" json:"isActive"`
}

// Place represents a salon or spa location. Owned by the CRUD collaborators;
// the scheduling core reads it as reference data and never writes it.
type Place struct {
	ID               string               `bson:"id" json:"id"`
	Name             string               `bson:"name" json:"name"`
	Type             string               `bson:"type" json:"type"` // "salon" or "spa"
	OwnerID          string               `bson:"ownerId" json:"ownerId"`
	Timings          map[string]DayTiming `bson:"timings" json:"timings"` // keyed by lowercase weekday name
	Services         []Service            `bson:"services" json:"services"`
	EmployeeIDs      []string             `bson:"employeeIds" json:"employeeIds"`
	MasterEmployeeID string               `bson:"masterEmployeeId,omitempty" json:"masterEmployeeId,omitempty"`
}

// ServiceByID returns the service definition with the given id, if present.
func (p *Place) ServiceByID(serviceID string) (Service, bool) {
	for _, svc := range p.Services {
		if svc.ID == serviceID {
			return svc, true
		}
	}
	return Service{}, false
}

// HasEmployee reports whether the employee is linked to this place.
func (p *Place) HasEmployee(employeeID string) bool {
	for _, id := range p.EmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}
