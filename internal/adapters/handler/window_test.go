package handler_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/adapters/handler"
	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	// 2024-03-31 20:00 UTC is already April 1st in Seoul
	now := time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		query    string
		loc      *time.Location
		expected domain.TimeWindow
	}{
		{"fallback when range is absent", "", time.UTC, domain.AllTime{}},
		{"week", "range=week", time.UTC, domain.LastNDays{N: 7}},
		{"days", "range=days&days=30", time.UTC, domain.LastNDays{N: 30}},
		{"explicit month", "range=month&month=2024-02", time.UTC, domain.CalendarMonth{Year: 2024, Month: time.February, Location: time.UTC}},
		{"current month", "range=month", time.UTC, domain.CalendarMonth{Year: 2024, Month: time.March, Location: time.UTC}},
		{"current month in owner zone", "range=month", seoul, domain.CalendarMonth{Year: 2024, Month: time.April, Location: seoul}},
		{"rolling quarter", "range=quarter", time.UTC, domain.LastNMonths{N: 3}},
		{"calendar quarter", "range=quarter&year=2023&quarter=4", time.UTC, domain.CalendarQuarter{Year: 2023, Quarter: 4, Location: time.UTC}},
		{"calendar quarter of current year", "range=quarter&quarter=2", time.UTC, domain.CalendarQuarter{Year: 2024, Quarter: 2, Location: time.UTC}},
		{"current quarter of given year", "range=quarter&year=2022", time.UTC, domain.CalendarQuarter{Year: 2022, Quarter: 1, Location: time.UTC}},
		{"rolling year", "range=year", time.UTC, domain.LastNMonths{N: 12}},
		{"calendar year", "range=year&year=2023", time.UTC, domain.CalendarYear{Year: 2023, Location: time.UTC}},
		{"all", "range=all", time.UTC, domain.AllTime{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			window, err := handler.ParseWindow(q, now, tt.loc, domain.AllTime{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, window)
		})
	}
}

func TestParseWindow_Invalid(t *testing.T) {
	now := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

	queries := []string{
		"range=fortnight",
		"range=days",
		"range=days&days=0",
		"range=days&days=-3",
		"range=days&days=abc",
		"range=month&month=2024-13",
		"range=month&month=March",
		"range=quarter&quarter=5",
		"range=quarter&quarter=0",
		"range=year&year=twenty",
		"range=year&year=0",
	}

	for _, query := range queries {
		t.Run(query, func(t *testing.T) {
			q, err := url.ParseQuery(query)
			require.NoError(t, err)

			_, err = handler.ParseWindow(q, now, time.UTC, domain.LastNDays{N: 7})
			assert.ErrorIs(t, err, handler.ErrInvalidWindow)
		})
	}
}

func TestParseWindow_NilLocationIsUTC(t *testing.T) {
	now := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	q := url.Values{"range": {"month"}}

	window, err := handler.ParseWindow(q, now, nil, domain.AllTime{})
	require.NoError(t, err)
	assert.Equal(t, domain.CalendarMonth{Year: 2024, Month: time.March, Location: time.UTC}, window)
}
