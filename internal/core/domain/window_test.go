package domain_test

import (
	"testing"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowBounds(t *testing.T) {
	now := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		window        domain.TimeWindow
		expectedStart time.Time
		expectedEnd   time.Time
	}{
		{
			name:          "last 7 days",
			window:        domain.LastNDays{N: 7},
			expectedStart: time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC),
			expectedEnd:   now,
		},
		{
			name:          "last 3 months",
			window:        domain.LastNMonths{N: 3},
			expectedStart: time.Date(2023, 12, 20, 10, 0, 0, 0, time.UTC),
			expectedEnd:   now,
		},
		{
			name:          "leap february",
			window:        domain.CalendarMonth{Year: 2024, Month: time.February},
			expectedStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:          "december",
			window:        domain.CalendarMonth{Year: 2023, Month: time.December},
			expectedStart: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2023, 12, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:          "first quarter",
			window:        domain.CalendarQuarter{Year: 2024, Quarter: 1},
			expectedStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:          "fourth quarter",
			window:        domain.CalendarQuarter{Year: 2024, Quarter: 4},
			expectedStart: time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:          "year",
			window:        domain.CalendarYear{Year: 2023},
			expectedStart: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2023, 12, 31, 23, 59, 59, 999999999, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.window.Bounds(now)
			assert.True(t, tt.expectedStart.Equal(start), "start %s", start)
			assert.True(t, tt.expectedEnd.Equal(end), "end %s", end)
		})
	}
}

func TestCalendarWindows_IgnoreNow(t *testing.T) {
	window := domain.CalendarQuarter{Year: 2022, Quarter: 3}

	s1, e1 := window.Bounds(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	s2, e2 := window.Bounds(time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, s1, s2)
	assert.Equal(t, e1, e2)
}

func TestCalendarMonth_Location(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	window := domain.CalendarMonth{Year: 2024, Month: time.April, Location: seoul}

	// 2024-03-31 16:00 UTC is 2024-04-01 01:00 in Seoul
	inSeoulApril := time.Date(2024, 3, 31, 16, 0, 0, 0, time.UTC)
	assert.True(t, domain.InWindow(window, inSeoulApril, time.Time{}))
	assert.False(t, domain.InWindow(domain.CalendarMonth{Year: 2024, Month: time.April}, inSeoulApril, time.Time{}))
}

func TestInWindow_ClosedInterval(t *testing.T) {
	window := domain.CalendarMonth{Year: 2024, Month: time.February}
	start, end := window.Bounds(time.Time{})

	assert.True(t, domain.InWindow(window, start, time.Time{}))
	assert.True(t, domain.InWindow(window, end, time.Time{}))
	assert.False(t, domain.InWindow(window, start.Add(-time.Nanosecond), time.Time{}))
	assert.False(t, domain.InWindow(window, end.Add(time.Nanosecond), time.Time{}))

	now := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	assert.True(t, domain.InWindow(domain.LastNDays{N: 7}, now, now))
	assert.True(t, domain.InWindow(domain.LastNDays{N: 7}, now.AddDate(0, 0, -7), now))
	assert.False(t, domain.InWindow(domain.LastNDays{N: 7}, now.Add(time.Second), now))
}

func TestFilterWindow_AgreesWithInWindowAtBoundaries(t *testing.T) {
	window := domain.CalendarMonth{Year: 2024, Month: time.February}
	start, end := window.Bounds(time.Time{})

	candidates := []time.Time{
		start.Add(-time.Nanosecond), start, start.Add(time.Nanosecond),
		end.Add(-time.Nanosecond), end, end.Add(time.Nanosecond),
	}
	readings := make([]domain.Reading, len(candidates))
	var expected []int
	for i, at := range candidates {
		readings[i] = domain.Reading{Systolic: i, MeasuredAt: at}
		if domain.InWindow(window, at, time.Time{}) {
			expected = append(expected, i)
		}
	}

	filtered := domain.FilterWindow(readings, window, time.Time{})
	got := make([]int, len(filtered))
	for i, r := range filtered {
		got[i] = r.Systolic
	}
	assert.Equal(t, []int{1, 2, 3, 4}, expected)
	assert.Equal(t, expected, got)
}

func TestFilterWindow_PreservesOrderWithoutMutation(t *testing.T) {
	readings := []domain.Reading{
		{Systolic: 1, MeasuredAt: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
		{Systolic: 2, MeasuredAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
		{Systolic: 3, MeasuredAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	original := append([]domain.Reading(nil), readings...)

	filtered := domain.FilterWindow(readings, domain.CalendarQuarter{Year: 2024, Quarter: 1}, time.Time{})

	require.Len(t, filtered, 2)
	assert.Equal(t, 1, filtered[0].Systolic)
	assert.Equal(t, 3, filtered[1].Systolic)
	assert.Equal(t, original, readings)
}

func TestAllTime(t *testing.T) {
	assert.True(t, domain.InWindow(domain.AllTime{}, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), time.Now()))
	assert.True(t, domain.InWindow(domain.AllTime{}, time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC), time.Now()))
}

func TestWindowString(t *testing.T) {
	assert.Equal(t, "last 7 days", domain.LastNDays{N: 7}.String())
	assert.Equal(t, "last 12 months", domain.LastNMonths{N: 12}.String())
	assert.Equal(t, "2024-02", domain.CalendarMonth{Year: 2024, Month: time.February}.String())
	assert.Equal(t, "2024-Q3", domain.CalendarQuarter{Year: 2024, Quarter: 3}.String())
	assert.Equal(t, "2024", domain.CalendarYear{Year: 2024}.String())
	assert.Equal(t, "all time", domain.AllTime{}.String())
}

func TestQuarterOf(t *testing.T) {
	expected := map[time.Month]int{
		time.January: 1, time.March: 1,
		time.April: 2, time.June: 2,
		time.July: 3, time.September: 3,
		time.October: 4, time.December: 4,
	}
	for month, quarter := range expected {
		assert.Equal(t, quarter, domain.QuarterOf(month), month.String())
	}
}
