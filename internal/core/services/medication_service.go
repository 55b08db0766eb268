package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/IANDYI/bloodpressure-service/internal/core/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MedicationService implements business logic for medication operations
type MedicationService struct {
	medicationRepo ports.MedicationRepository
	logger         *zap.Logger
}

// NewMedicationService creates a new medication service
func NewMedicationService(medicationRepo ports.MedicationRepository, logger *zap.Logger) *MedicationService {
	return &MedicationService{
		medicationRepo: medicationRepo,
		logger:         logger,
	}
}

// AddMedication stores a medication the owner started on startDate (YYYY-MM-DD)
func (s *MedicationService) AddMedication(ctx context.Context, ownerID string, name string, startDate string) (*domain.Medication, error) {
	medication := &domain.Medication{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(name),
		StartDate: strings.TrimSpace(startDate),
		CreatedAt: time.Now(),
	}
	if err := medication.Validate(); err != nil {
		return nil, err
	}

	if err := s.medicationRepo.CreateMedication(ctx, medication); err != nil {
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}

	s.logger.Info("medication added",
		zap.String("medication_id", medication.ID.String()),
		zap.String("owner_id", ownerID),
		zap.String("start_date", medication.StartDate))
	return medication, nil
}

// ListMedications returns the owner's medications ordered by start date
func (s *MedicationService) ListMedications(ctx context.Context, ownerID string) ([]domain.Medication, error) {
	if ownerID == "" {
		return nil, domain.ErrMissingOwner
	}

	medications, err := s.medicationRepo.ListMedicationsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}

	// YYYY-MM-DD sorts lexically
	sort.SliceStable(medications, func(i, j int) bool {
		return medications[i].StartDate < medications[j].StartDate
	})
	return medications, nil
}

// DeleteMedication deletes a medication owned by ownerID
func (s *MedicationService) DeleteMedication(ctx context.Context, ownerID string, medicationID uuid.UUID) error {
	if ownerID == "" {
		return domain.ErrMissingOwner
	}

	if err := s.medicationRepo.DeleteMedication(ctx, medicationID, ownerID); err != nil {
		if errors.Is(err, domain.ErrMedicationNotFound) {
			return domain.ErrMedicationNotFound
		}
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	return nil
}

// Ensure MedicationService implements the interface
var _ ports.MedicationService = (*MedicationService)(nil)
