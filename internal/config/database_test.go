package config

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitDatabase_CreatesTablesAndIndexes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS readings`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS medications`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_readings_owner_measured_at`).WillReturnResult(sqlmock.NewResult(0, 0))
	// Index failures are logged, not returned
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_medications_owner_id`).WillReturnError(errors.New("permission denied"))

	err = InitDatabase(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInitDatabase_TableFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS readings`).WillReturnError(errors.New("boom"))

	err = InitDatabase(context.Background(), db, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create schema")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDriverRegistered(t *testing.T) {
	assert.Contains(t, sql.Drivers(), "postgres")
}
