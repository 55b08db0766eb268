package ports

import (
	"context"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/google/uuid"
)

// ReadingInput carries the caller supplied fields of a reading.
// Create and replace both take the full set of fields.
type ReadingInput struct {
	Systolic   int       `json:"systolic"`
	Diastolic  int       `json:"diastolic"`
	Pulse      int       `json:"pulse"`
	MeasuredAt time.Time `json:"measured_at"` // Zero means now
}

// ReadingService defines the business logic interface for reading operations
// Every operation is scoped to ownerID
type ReadingService interface {
	RecordReading(ctx context.Context, ownerID string, input ReadingInput) (*domain.Reading, error)

	// ReplaceReading replaces all fields of an existing reading
	ReplaceReading(ctx context.Context, ownerID string, readingID uuid.UUID, input ReadingInput) (*domain.Reading, error)

	GetReading(ctx context.Context, ownerID string, readingID uuid.UUID) (*domain.Reading, error)

	DeleteReading(ctx context.Context, ownerID string, readingID uuid.UUID) error

	// ListReadings returns the readings inside the window, newest first
	ListReadings(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reading, error)

	// Summarize computes the statistics of the readings inside the window
	Summarize(ctx context.Context, ownerID string, window domain.TimeWindow) (*domain.Summary, error)

	// Trend returns the readings inside the window, oldest first, for charting
	Trend(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reading, error)

	// Report returns the readings inside the window, newest first, and their summary,
	// both computed from the same snapshot
	Report(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reading, *domain.Summary, error)

	// Defaults returns the values a new reading form should start from
	Defaults(ctx context.Context, ownerID string) (*domain.EntryDefaults, error)
}

// MedicationService defines the business logic interface for medication operations
type MedicationService interface {
	AddMedication(ctx context.Context, ownerID string, name string, startDate string) (*domain.Medication, error)
	ListMedications(ctx context.Context, ownerID string) ([]domain.Medication, error)
	DeleteMedication(ctx context.Context, ownerID string, medicationID uuid.UUID) error
}
