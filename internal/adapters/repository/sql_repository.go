package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/IANDYI/bloodpressure-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings configures the circuit breakers guarding the database
type BreakerSettings struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// DefaultBreakerSettings mirrors the service defaults
var DefaultBreakerSettings = BreakerSettings{
	MaxRequests: 5,
	Interval:    60 * time.Second,
	Timeout:     30 * time.Second,
}

// SQLRepository implements ReadingRepository and MedicationRepository using PostgreSQL
// Includes retry logic and circuit breaker for resilience
type SQLRepository struct {
	db           *sql.DB
	readingCB    *gobreaker.CircuitBreaker
	medicationCB *gobreaker.CircuitBreaker
	maxRetries   int
	retryDelay   time.Duration
	logger       *zap.Logger
}

// NewSQLRepository creates a new PostgreSQL repository with circuit breakers
func NewSQLRepository(db *sql.DB, breaker BreakerSettings, logger *zap.Logger) *SQLRepository {
	return &SQLRepository{
		db:           db,
		readingCB:    gobreaker.NewCircuitBreaker(breakerSettings("readings", breaker, logger)),
		medicationCB: gobreaker.NewCircuitBreaker(breakerSettings("medications", breaker, logger)),
		maxRetries:   3,
		retryDelay:   1 * time.Second,
		logger:       logger,
	}
}

// WithRetryPolicy overrides the retry count and delay between attempts
func (r *SQLRepository) WithRetryPolicy(maxRetries int, retryDelay time.Duration) *SQLRepository {
	if maxRetries < 1 {
		maxRetries = 1
	}
	r.maxRetries = maxRetries
	r.retryDelay = retryDelay
	return r
}

func breakerSettings(name string, s BreakerSettings, logger *zap.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// A missing row is an answer, not a database failure
		IsSuccessful: func(err error) bool {
			return err == nil || isNotFound(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, domain.ErrReadingNotFound) ||
		errors.Is(err, domain.ErrMedicationNotFound)
}

// executeWithRetry executes a database operation with retry logic
// Not-found results and context cancellation are returned immediately
func (r *SQLRepository) executeWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error
	for i := 0; i < r.maxRetries; i++ {
		err := operation()
		if err == nil {
			return nil
		}
		if isNotFound(err) || ctx.Err() != nil {
			return err
		}
		lastErr = err
		r.logger.Warn("database operation failed",
			zap.Int("attempt", i+1), zap.Int("max_attempts", r.maxRetries), zap.Error(err))
		if i < r.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.retryDelay):
			}
		}
	}
	return fmt.Errorf("operation failed after %d retries: %w", r.maxRetries, lastErr)
}

// ReadingRepository implementation

const readingColumns = `id, owner_id, systolic, diastolic, pulse, measured_at, created_at, updated_at`

func (r *SQLRepository) CreateReading(ctx context.Context, reading *domain.Reading) error {
	_, err := r.readingCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `INSERT INTO readings (` + readingColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
			_, err := r.db.ExecContext(ctx, query,
				reading.ID,
				reading.OwnerID,
				reading.Systolic,
				reading.Diastolic,
				reading.Pulse,
				reading.MeasuredAt,
				reading.CreatedAt,
				reading.UpdatedAt,
			)
			return err
		})
	})
	return err
}

// ReplaceReading overwrites all mutable fields of a reading owned by reading.OwnerID
func (r *SQLRepository) ReplaceReading(ctx context.Context, reading *domain.Reading) error {
	_, err := r.readingCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `UPDATE readings
				SET systolic = $1, diastolic = $2, pulse = $3, measured_at = $4, updated_at = $5
				WHERE id = $6 AND owner_id = $7`
			result, err := r.db.ExecContext(ctx, query,
				reading.Systolic,
				reading.Diastolic,
				reading.Pulse,
				reading.MeasuredAt,
				reading.UpdatedAt,
				reading.ID,
				reading.OwnerID,
			)
			if err != nil {
				return err
			}
			return requireAffected(result, domain.ErrReadingNotFound)
		})
	})
	return err
}

func (r *SQLRepository) GetReadingByID(ctx context.Context, readingID uuid.UUID) (*domain.Reading, error) {
	result, err := r.readingCB.Execute(func() (interface{}, error) {
		var reading domain.Reading
		err := r.executeWithRetry(ctx, func() error {
			query := `SELECT ` + readingColumns + ` FROM readings WHERE id = $1`
			row := r.db.QueryRowContext(ctx, query, readingID)
			return scanReading(row, &reading)
		})
		if err != nil {
			return nil, err
		}
		return &reading, nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReadingNotFound
		}
		return nil, err
	}

	return result.(*domain.Reading), nil
}

func (r *SQLRepository) ListReadingsByOwner(ctx context.Context, ownerID string) ([]domain.Reading, error) {
	result, err := r.readingCB.Execute(func() (interface{}, error) {
		var readings []domain.Reading
		err := r.executeWithRetry(ctx, func() error {
			readings = readings[:0]
			query := `SELECT ` + readingColumns + ` FROM readings WHERE owner_id = $1 ORDER BY measured_at DESC, created_at DESC`
			rows, err := r.db.QueryContext(ctx, query, ownerID)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				var reading domain.Reading
				if err := scanReading(rows, &reading); err != nil {
					return err
				}
				readings = append(readings, reading)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, err
		}
		return readings, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]domain.Reading), nil
}

func (r *SQLRepository) DeleteReading(ctx context.Context, readingID uuid.UUID, ownerID string) error {
	_, err := r.readingCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			result, err := r.db.ExecContext(ctx, `DELETE FROM readings WHERE id = $1 AND owner_id = $2`, readingID, ownerID)
			if err != nil {
				return err
			}
			return requireAffected(result, domain.ErrReadingNotFound)
		})
	})
	return err
}

// MedicationRepository implementation

func (r *SQLRepository) CreateMedication(ctx context.Context, medication *domain.Medication) error {
	_, err := r.medicationCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `INSERT INTO medications (id, owner_id, name, start_date, created_at) VALUES ($1, $2, $3, $4, $5)`
			_, err := r.db.ExecContext(ctx, query,
				medication.ID,
				medication.OwnerID,
				medication.Name,
				medication.StartDate,
				medication.CreatedAt,
			)
			return err
		})
	})
	return err
}

func (r *SQLRepository) ListMedicationsByOwner(ctx context.Context, ownerID string) ([]domain.Medication, error) {
	result, err := r.medicationCB.Execute(func() (interface{}, error) {
		var medications []domain.Medication
		err := r.executeWithRetry(ctx, func() error {
			medications = medications[:0]
			query := `SELECT id, owner_id, name, to_char(start_date, 'YYYY-MM-DD'), created_at
				FROM medications WHERE owner_id = $1 ORDER BY start_date, created_at`
			rows, err := r.db.QueryContext(ctx, query, ownerID)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				var m domain.Medication
				if err := rows.Scan(&m.ID, &m.OwnerID, &m.Name, &m.StartDate, &m.CreatedAt); err != nil {
					return err
				}
				medications = append(medications, m)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, err
		}
		return medications, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]domain.Medication), nil
}

func (r *SQLRepository) DeleteMedication(ctx context.Context, medicationID uuid.UUID, ownerID string) error {
	_, err := r.medicationCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			result, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1 AND owner_id = $2`, medicationID, ownerID)
			if err != nil {
				return err
			}
			return requireAffected(result, domain.ErrMedicationNotFound)
		})
	})
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner, reading *domain.Reading) error {
	return row.Scan(
		&reading.ID,
		&reading.OwnerID,
		&reading.Systolic,
		&reading.Diastolic,
		&reading.Pulse,
		&reading.MeasuredAt,
		&reading.CreatedAt,
		&reading.UpdatedAt,
	)
}

func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

// Ensure SQLRepository implements the interfaces
var _ ports.ReadingRepository = (*SQLRepository)(nil)
var _ ports.MedicationRepository = (*SQLRepository)(nil)
