package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS readings (
		id UUID PRIMARY KEY,
		owner_id TEXT NOT NULL,
		systolic INTEGER NOT NULL CHECK (systolic BETWEEN 50 AND 300),
		diastolic INTEGER NOT NULL CHECK (diastolic BETWEEN 30 AND 200),
		pulse INTEGER NOT NULL CHECK (pulse BETWEEN 30 AND 200),
		measured_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS medications (
		id UUID PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		start_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_readings_owner_measured_at ON readings(owner_id, measured_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_medications_owner_id ON medications(owner_id)",
}

// InitDatabase creates the schema if it does not exist yet
func InitDatabase(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			logger.Warn("failed to create index", zap.String("statement", indexSQL), zap.Error(err))
		}
	}

	logger.Info("database schema initialized")
	return nil
}

// ConnectDatabase establishes a connection to PostgreSQL with retry logic
func ConnectDatabase(databaseURL string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*sql.DB, error) {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		db, err := sql.Open("postgres", databaseURL)
		if err != nil {
			lastErr = err
			logger.Warn("failed to open database connection",
				zap.Int("attempt", i+1), zap.Int("max_attempts", maxRetries), zap.Error(err))
		} else if err = db.Ping(); err != nil {
			lastErr = err
			logger.Warn("failed to ping database",
				zap.Int("attempt", i+1), zap.Int("max_attempts", maxRetries), zap.Error(err))
			db.Close()
		} else {
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(5 * time.Minute)

			logger.Info("database connection established")
			return db, nil
		}

		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
}
