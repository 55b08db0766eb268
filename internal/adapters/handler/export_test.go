package handler_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/adapters/handler"
	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerateReadingsExport(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	readings := []domain.Reading{
		{ID: uuid.New(), Systolic: 185, Diastolic: 100, Pulse: 88, MeasuredAt: time.Date(2024, 1, 15, 23, 30, 0, 0, time.UTC)},
		{ID: uuid.New(), Systolic: 118, Diastolic: 75, Pulse: 61, MeasuredAt: time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC)},
	}
	summary := domain.Summarize(readings, domain.AllTime{}, time.Now())

	data, err := handler.GenerateReadingsExport(readings, summary, seoul)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Readings", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Readings")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, handler.ReadingsExportHeader, rows[0])
	assert.Equal(t, []string{"2024-01-16 08:30", "185", "100", "88", "Hypertensive Crisis"}, rows[1])
	assert.Equal(t, []string{"2024-01-10 15:00", "118", "75", "61", "Normal"}, rows[2])

	category, err := f.GetCellValue("Summary", "B10")
	require.NoError(t, err)
	assert.Equal(t, "Hypertension Stage 2", category)

	count, err := f.GetCellValue("Summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}

func TestGenerateReadingsExport_Empty(t *testing.T) {
	summary := domain.Summarize(nil, domain.LastNDays{N: 7}, time.Now())

	data, err := handler.GenerateReadingsExport(nil, summary, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Readings")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	category, err := f.GetCellValue("Summary", "B10")
	require.NoError(t, err)
	assert.Equal(t, "No data", category)
}
