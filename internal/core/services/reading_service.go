package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/IANDYI/bloodpressure-service/internal/core/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReadingInput is imported from ports package
type ReadingInput = ports.ReadingInput

// ReadingService implements business logic for reading operations
// Enforces owner scoping and publishes alerts for hypertensive crisis readings
type ReadingService struct {
	readingRepo    ports.ReadingRepository
	alertPublisher ports.AlertPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewReadingService creates a new reading service
func NewReadingService(
	readingRepo ports.ReadingRepository,
	alertPublisher ports.AlertPublisher,
	logger *zap.Logger,
) *ReadingService {
	return &ReadingService{
		readingRepo:    readingRepo,
		alertPublisher: alertPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

// WithClock replaces the time source, used by tests and rolling windows
func (s *ReadingService) WithClock(now func() time.Time) *ReadingService {
	s.now = now
	return s
}

// RecordReading validates and stores a new reading
// Publishes an alert asynchronously when the reading is a hypertensive crisis
func (s *ReadingService) RecordReading(ctx context.Context, ownerID string, input ReadingInput) (*domain.Reading, error) {
	now := s.now()

	measuredAt := input.MeasuredAt
	if measuredAt.IsZero() {
		measuredAt = now
	}

	reading := &domain.Reading{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Systolic:   input.Systolic,
		Diastolic:  input.Diastolic,
		Pulse:      input.Pulse,
		MeasuredAt: measuredAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := reading.Validate(); err != nil {
		return nil, err
	}

	if err := s.readingRepo.CreateReading(ctx, reading); err != nil {
		return nil, fmt.Errorf("failed to create reading: %w", err)
	}

	category := reading.Category()
	readingsRecordedTotal.WithLabelValues(string(category)).Inc()
	s.logReading(reading, category, "created")

	if category.RequiresAlert() && s.alertPublisher != nil {
		go func() {
			// Use background context so the alert survives the request
			if err := s.alertPublisher.PublishAlert(context.Background(), reading, category); err != nil {
				s.logger.Error("failed to publish alert for reading",
					zap.String("reading_id", reading.ID.String()),
					zap.Error(err))
				return
			}
			s.logReading(reading, category, "alert_published")
		}()
	}

	return reading, nil
}

// ReplaceReading replaces every field of a reading at its existing identity
// Only the owner of the reading can replace it
func (s *ReadingService) ReplaceReading(ctx context.Context, ownerID string, readingID uuid.UUID, input ReadingInput) (*domain.Reading, error) {
	existing, err := s.GetReading(ctx, ownerID, readingID)
	if err != nil {
		return nil, err
	}

	if input.MeasuredAt.IsZero() {
		return nil, fmt.Errorf("%w: measured_at is required", domain.ErrInvalidReading)
	}

	replacement := &domain.Reading{
		ID:         existing.ID,
		OwnerID:    ownerID,
		Systolic:   input.Systolic,
		Diastolic:  input.Diastolic,
		Pulse:      input.Pulse,
		MeasuredAt: input.MeasuredAt,
		CreatedAt:  existing.CreatedAt,
		UpdatedAt:  s.now(),
	}
	if err := replacement.Validate(); err != nil {
		return nil, err
	}

	if err := s.readingRepo.ReplaceReading(ctx, replacement); err != nil {
		if errors.Is(err, domain.ErrReadingNotFound) {
			return nil, domain.ErrReadingNotFound
		}
		return nil, fmt.Errorf("failed to replace reading: %w", err)
	}

	s.logReading(replacement, replacement.Category(), "replaced")
	return replacement, nil
}

// GetReading retrieves a reading owned by ownerID
// Readings of other owners are reported as not found
func (s *ReadingService) GetReading(ctx context.Context, ownerID string, readingID uuid.UUID) (*domain.Reading, error) {
	if ownerID == "" {
		return nil, domain.ErrMissingOwner
	}

	reading, err := s.readingRepo.GetReadingByID(ctx, readingID)
	if err != nil {
		if errors.Is(err, domain.ErrReadingNotFound) {
			return nil, domain.ErrReadingNotFound
		}
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	if reading == nil || reading.OwnerID != ownerID {
		return nil, domain.ErrReadingNotFound
	}

	return reading, nil
}

// DeleteReading deletes a reading owned by ownerID
func (s *ReadingService) DeleteReading(ctx context.Context, ownerID string, readingID uuid.UUID) error {
	if ownerID == "" {
		return domain.ErrMissingOwner
	}

	if err := s.readingRepo.DeleteReading(ctx, readingID, ownerID); err != nil {
		if errors.Is(err, domain.ErrReadingNotFound) {
			return domain.ErrReadingNotFound
		}
		return fmt.Errorf("failed to delete reading: %w", err)
	}

	s.logger.Info("reading deleted",
		zap.String("event", "deleted"),
		zap.String("reading_id", readingID.String()),
		zap.String("owner_id", ownerID))
	return nil
}

// ListReadings returns the owner's readings inside the window, newest first
func (s *ReadingService) ListReadings(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reading, error) {
	readings, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return domain.SortByMeasuredAt(domain.FilterWindow(readings, window, s.now()), false), nil
}

// Summarize computes window statistics over a fresh snapshot of the owner's readings
func (s *ReadingService) Summarize(ctx context.Context, ownerID string, window domain.TimeWindow) (*domain.Summary, error) {
	readings, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	summary := domain.Summarize(readings, window, s.now())
	return &summary, nil
}

// Trend returns the owner's readings inside the window, oldest first
func (s *ReadingService) Trend(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reading, error) {
	readings, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return domain.SortByMeasuredAt(domain.FilterWindow(readings, window, s.now()), true), nil
}

// Report lists and summarizes the window from one snapshot and one clock reading,
// so the rows always agree with the summary
func (s *ReadingService) Report(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reading, *domain.Summary, error) {
	readings, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	summary := domain.Summarize(readings, window, now)
	return domain.SortByMeasuredAt(domain.FilterWindow(readings, window, now), false), &summary, nil
}

// Defaults prefills a new reading from the owner's latest one
func (s *ReadingService) Defaults(ctx context.Context, ownerID string) (*domain.EntryDefaults, error) {
	readings, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	defaults := domain.DefaultsFrom(readings)
	return &defaults, nil
}

func (s *ReadingService) snapshot(ctx context.Context, ownerID string) ([]domain.Reading, error) {
	if ownerID == "" {
		return nil, domain.ErrMissingOwner
	}
	readings, err := s.readingRepo.ListReadingsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	return readings, nil
}

// logReading logs structured fields for reading events
func (s *ReadingService) logReading(r *domain.Reading, category domain.SeverityCategory, event string) {
	s.logger.Info("reading event",
		zap.String("event", event),
		zap.String("reading_id", r.ID.String()),
		zap.String("owner_id", r.OwnerID),
		zap.Int("systolic", r.Systolic),
		zap.Int("diastolic", r.Diastolic),
		zap.Int("pulse", r.Pulse),
		zap.String("category", string(category)),
		zap.Time("measured_at", r.MeasuredAt),
	)
}

// Ensure ReadingService implements the interface
var _ ports.ReadingService = (*ReadingService)(nil)
