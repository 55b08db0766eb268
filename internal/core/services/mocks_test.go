package services_test

import (
	"context"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockReadingRepository is a mock implementation of ports.ReadingRepository
type MockReadingRepository struct {
	mock.Mock
}

func (m *MockReadingRepository) CreateReading(ctx context.Context, reading *domain.Reading) error {
	return m.Called(ctx, reading).Error(0)
}

func (m *MockReadingRepository) ReplaceReading(ctx context.Context, reading *domain.Reading) error {
	return m.Called(ctx, reading).Error(0)
}

func (m *MockReadingRepository) GetReadingByID(ctx context.Context, readingID uuid.UUID) (*domain.Reading, error) {
	args := m.Called(ctx, readingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reading), args.Error(1)
}

func (m *MockReadingRepository) ListReadingsByOwner(ctx context.Context, ownerID string) ([]domain.Reading, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reading), args.Error(1)
}

func (m *MockReadingRepository) DeleteReading(ctx context.Context, readingID uuid.UUID, ownerID string) error {
	return m.Called(ctx, readingID, ownerID).Error(0)
}

// MockMedicationRepository is a mock implementation of ports.MedicationRepository
type MockMedicationRepository struct {
	mock.Mock
}

func (m *MockMedicationRepository) CreateMedication(ctx context.Context, medication *domain.Medication) error {
	return m.Called(ctx, medication).Error(0)
}

func (m *MockMedicationRepository) ListMedicationsByOwner(ctx context.Context, ownerID string) ([]domain.Medication, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Medication), args.Error(1)
}

func (m *MockMedicationRepository) DeleteMedication(ctx context.Context, medicationID uuid.UUID, ownerID string) error {
	return m.Called(ctx, medicationID, ownerID).Error(0)
}

// MockAlertPublisher is a mock implementation of ports.AlertPublisher
type MockAlertPublisher struct {
	mock.Mock
}

func (m *MockAlertPublisher) PublishAlert(ctx context.Context, reading *domain.Reading, category domain.SeverityCategory) error {
	return m.Called(ctx, reading, category).Error(0)
}
