package ports

import (
	"context"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/google/uuid"
)

// ReadingRepository defines the interface for reading persistence
type ReadingRepository interface {
	// CreateReading stores a new reading
	CreateReading(ctx context.Context, reading *domain.Reading) error

	// ReplaceReading overwrites every field of an existing reading owned by reading.OwnerID
	// Returns domain.ErrReadingNotFound if no such reading exists for that owner
	ReplaceReading(ctx context.Context, reading *domain.Reading) error

	// GetReadingByID retrieves a reading by ID
	GetReadingByID(ctx context.Context, readingID uuid.UUID) (*domain.Reading, error)

	// ListReadingsByOwner returns every reading of an owner, newest measurement first
	ListReadingsByOwner(ctx context.Context, ownerID string) ([]domain.Reading, error)

	// DeleteReading deletes a reading owned by ownerID
	DeleteReading(ctx context.Context, readingID uuid.UUID, ownerID string) error
}

// MedicationRepository defines the interface for medication persistence
type MedicationRepository interface {
	CreateMedication(ctx context.Context, medication *domain.Medication) error
	ListMedicationsByOwner(ctx context.Context, ownerID string) ([]domain.Medication, error)
	DeleteMedication(ctx context.Context, medicationID uuid.UUID, ownerID string) error
}

// AlertPublisher defines the interface for publishing alerts to RabbitMQ
type AlertPublisher interface {
	// PublishAlert publishes an alert event for a reading in an alerting category
	PublishAlert(ctx context.Context, reading *domain.Reading, category domain.SeverityCategory) error
}
