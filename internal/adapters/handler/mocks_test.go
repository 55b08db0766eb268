package handler_test

import (
	"context"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/IANDYI/bloodpressure-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockReadingService is a mock implementation of ports.ReadingService
type MockReadingService struct {
	mock.Mock
}

func (m *MockReadingService) RecordReading(ctx context.Context, ownerID string, input ports.ReadingInput) (*domain.Reading, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reading), args.Error(1)
}

func (m *MockReadingService) ReplaceReading(ctx context.Context, ownerID string, readingID uuid.UUID, input ports.ReadingInput) (*domain.Reading, error) {
	args := m.Called(ctx, ownerID, readingID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reading), args.Error(1)
}

func (m *MockReadingService) GetReading(ctx context.Context, ownerID string, readingID uuid.UUID) (*domain.Reading, error) {
	args := m.Called(ctx, ownerID, readingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reading), args.Error(1)
}

func (m *MockReadingService) DeleteReading(ctx context.Context, ownerID string, readingID uuid.UUID) error {
	return m.Called(ctx, ownerID, readingID).Error(0)
}

func (m *MockReadingService) ListReadings(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reading, error) {
	args := m.Called(ctx, ownerID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reading), args.Error(1)
}

func (m *MockReadingService) Summarize(ctx context.Context, ownerID string, window domain.TimeWindow) (*domain.Summary, error) {
	args := m.Called(ctx, ownerID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *MockReadingService) Trend(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reading, error) {
	args := m.Called(ctx, ownerID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reading), args.Error(1)
}

func (m *MockReadingService) Report(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reading, *domain.Summary, error) {
	args := m.Called(ctx, ownerID, window)
	var readings []domain.Reading
	if args.Get(0) != nil {
		readings = args.Get(0).([]domain.Reading)
	}
	var summary *domain.Summary
	if args.Get(1) != nil {
		summary = args.Get(1).(*domain.Summary)
	}
	return readings, summary, args.Error(2)
}

func (m *MockReadingService) Defaults(ctx context.Context, ownerID string) (*domain.EntryDefaults, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EntryDefaults), args.Error(1)
}

// MockMedicationService is a mock implementation of ports.MedicationService
type MockMedicationService struct {
	mock.Mock
}

func (m *MockMedicationService) AddMedication(ctx context.Context, ownerID string, name string, startDate string) (*domain.Medication, error) {
	args := m.Called(ctx, ownerID, name, startDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Medication), args.Error(1)
}

func (m *MockMedicationService) ListMedications(ctx context.Context, ownerID string) ([]domain.Medication, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Medication), args.Error(1)
}

func (m *MockMedicationService) DeleteMedication(ctx context.Context, ownerID string, medicationID uuid.UUID) error {
	return m.Called(ctx, ownerID, medicationID).Error(0)
}
