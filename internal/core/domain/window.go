package domain

import (
	"fmt"
	"time"
)

// TimeWindow is a closed interval [start, end] used to select readings.
// now is only consulted by rolling windows; calendar windows ignore it.
type TimeWindow interface {
	Bounds(now time.Time) (start, end time.Time)
	String() string
}

// LastNDays covers [now - N days, now]
type LastNDays struct {
	N int
}

func (w LastNDays) Bounds(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -w.N), now
}

func (w LastNDays) String() string {
	return fmt.Sprintf("last %d days", w.N)
}

// LastNMonths covers [now - N calendar months, now]
type LastNMonths struct {
	N int
}

func (w LastNMonths) Bounds(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, -w.N, 0), now
}

func (w LastNMonths) String() string {
	return fmt.Sprintf("last %d months", w.N)
}

// CalendarMonth covers the whole month in Location (UTC when nil)
type CalendarMonth struct {
	Year     int
	Month    time.Month
	Location *time.Location
}

func (w CalendarMonth) Bounds(time.Time) (time.Time, time.Time) {
	start := time.Date(w.Year, w.Month, 1, 0, 0, 0, 0, locationOrUTC(w.Location))
	return start, lastInstantBefore(start.AddDate(0, 1, 0))
}

func (w CalendarMonth) String() string {
	return fmt.Sprintf("%04d-%02d", w.Year, int(w.Month))
}

// CalendarQuarter covers the three months starting at month (Quarter-1)*3+1.
// Quarter is expected in 1..4; other values roll over via time.Date normalization.
type CalendarQuarter struct {
	Year     int
	Quarter  int
	Location *time.Location
}

func (w CalendarQuarter) Bounds(time.Time) (time.Time, time.Time) {
	firstMonth := time.Month((w.Quarter-1)*3 + 1)
	start := time.Date(w.Year, firstMonth, 1, 0, 0, 0, 0, locationOrUTC(w.Location))
	return start, lastInstantBefore(start.AddDate(0, 3, 0))
}

func (w CalendarQuarter) String() string {
	return fmt.Sprintf("%04d-Q%d", w.Year, w.Quarter)
}

// CalendarYear covers Jan 1 00:00:00 through the last instant of Dec 31
type CalendarYear struct {
	Year     int
	Location *time.Location
}

func (w CalendarYear) Bounds(time.Time) (time.Time, time.Time) {
	start := time.Date(w.Year, time.January, 1, 0, 0, 0, 0, locationOrUTC(w.Location))
	return start, lastInstantBefore(start.AddDate(1, 0, 0))
}

func (w CalendarYear) String() string {
	return fmt.Sprintf("%04d", w.Year)
}

// AllTime matches every reading
type AllTime struct{}

var (
	earliest = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	latest   = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)
)

func (AllTime) Bounds(time.Time) (time.Time, time.Time) {
	return earliest, latest
}

func (AllTime) String() string {
	return "all time"
}

// InWindow reports whether t lies inside the closed interval of the window
func InWindow(w TimeWindow, t, now time.Time) bool {
	start, end := w.Bounds(now)
	return within(t, start, end)
}

// FilterWindow returns the readings measured inside the window, preserving input order.
// The input slice is never modified.
func FilterWindow(readings []Reading, w TimeWindow, now time.Time) []Reading {
	start, end := w.Bounds(now)
	filtered := make([]Reading, 0, len(readings))
	for _, r := range readings {
		if within(r.MeasuredAt, start, end) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// within is the closed interval test shared by every window
func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// QuarterOf returns the calendar quarter (1..4) of a month
func QuarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

func lastInstantBefore(t time.Time) time.Time {
	return t.Add(-time.Nanosecond)
}
