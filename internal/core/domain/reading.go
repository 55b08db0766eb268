package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidReading is wrapped by every validation failure of a reading
	ErrInvalidReading = errors.New("invalid reading")
	// ErrReadingNotFound is returned when a reading does not exist or belongs to another owner
	ErrReadingNotFound = errors.New("reading not found")
	// ErrMissingOwner is returned when an operation is attempted without an owner id
	ErrMissingOwner = errors.New("owner id is required")
)

// Reading represents one blood pressure measurement
// Readings are replaced wholesale on edit, never patched field by field
type Reading struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    string    `json:"owner_id"`    // sub claim from the identity provider
	Systolic   int       `json:"systolic"`    // mmHg
	Diastolic  int       `json:"diastolic"`   // mmHg
	Pulse      int       `json:"pulse"`       // bpm
	MeasuredAt time.Time `json:"measured_at"` // When the measurement was taken
	CreatedAt  time.Time `json:"created_at"`  // When the record was created
	UpdatedAt  time.Time `json:"updated_at"`  // When the record was last replaced
}

// Valid ranges for reading values
const (
	SystolicMin  = 50
	SystolicMax  = 300
	DiastolicMin = 30
	DiastolicMax = 200
	PulseMin     = 30
	PulseMax     = 200
)

// Entry values offered when an owner has no readings yet
const (
	DefaultSystolic  = 130
	DefaultDiastolic = 90
	DefaultPulse     = 60
)

// EntryDefaults are the values a new reading form starts from
type EntryDefaults struct {
	Systolic   int  `json:"systolic"`
	Diastolic  int  `json:"diastolic"`
	Pulse      int  `json:"pulse"`
	FromLatest bool `json:"from_latest"`
}

// DefaultsFrom prefills from the owner's latest reading, falling back to the
// fixed defaults when there is none
func DefaultsFrom(readings []Reading) EntryDefaults {
	latest, ok := LatestReading(readings)
	if !ok {
		return EntryDefaults{Systolic: DefaultSystolic, Diastolic: DefaultDiastolic, Pulse: DefaultPulse}
	}
	return EntryDefaults{
		Systolic:   latest.Systolic,
		Diastolic:  latest.Diastolic,
		Pulse:      latest.Pulse,
		FromLatest: true,
	}
}

// ValidateValues checks systolic, diastolic and pulse against their valid ranges
func ValidateValues(systolic, diastolic, pulse int) error {
	if systolic < SystolicMin || systolic > SystolicMax {
		return fmt.Errorf("%w: systolic must be between %d and %d mmHg", ErrInvalidReading, SystolicMin, SystolicMax)
	}
	if diastolic < DiastolicMin || diastolic > DiastolicMax {
		return fmt.Errorf("%w: diastolic must be between %d and %d mmHg", ErrInvalidReading, DiastolicMin, DiastolicMax)
	}
	if pulse < PulseMin || pulse > PulseMax {
		return fmt.Errorf("%w: pulse must be between %d and %d bpm", ErrInvalidReading, PulseMin, PulseMax)
	}
	return nil
}

// Validate checks that a reading can be stored
func (r Reading) Validate() error {
	if r.OwnerID == "" {
		return ErrMissingOwner
	}
	if err := ValidateValues(r.Systolic, r.Diastolic, r.Pulse); err != nil {
		return err
	}
	if r.MeasuredAt.IsZero() {
		return fmt.Errorf("%w: measured_at is required", ErrInvalidReading)
	}
	return nil
}

// Category classifies this single reading
func (r Reading) Category() SeverityCategory {
	return Classify(r.Systolic, r.Diastolic)
}
