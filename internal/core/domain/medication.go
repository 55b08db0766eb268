package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidMedication is wrapped by every validation failure of a medication
	ErrInvalidMedication = errors.New("invalid medication")
	// ErrMedicationNotFound is returned when a medication does not exist or belongs to another owner
	ErrMedicationNotFound = errors.New("medication not found")
)

// StartDateLayout is the calendar date format of Medication.StartDate
const StartDateLayout = "2006-01-02"

// Medication is a drug an owner started taking on a given day
type Medication struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	StartDate string    `json:"start_date"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that a medication can be stored
func (m Medication) Validate() error {
	if m.OwnerID == "" {
		return ErrMissingOwner
	}
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMedication)
	}
	if m.StartDate == "" {
		return fmt.Errorf("%w: start_date is required", ErrInvalidMedication)
	}
	if _, err := time.Parse(StartDateLayout, m.StartDate); err != nil {
		return fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidMedication)
	}
	return nil
}
