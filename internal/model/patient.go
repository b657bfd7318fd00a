package model

import (
	"time"

	apperrors "github.com/jwalitptl/lims-api/pkg/errors"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Patient is the registered person an order is booked for. Orders embed a
// copy of the patient taken at booking time, so later corrections to the
// patient record never rewrite history.
type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    Gender    `json:"gender"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Patient) Validate() error {
	if p.Name == "" {
		return apperrors.Validation("patient name is required")
	}
	if p.Age <= 0 {
		return apperrors.Validation("patient age must be positive")
	}
	if p.Phone == "" {
		return apperrors.Validation("patient phone is required")
	}
	return nil
}
