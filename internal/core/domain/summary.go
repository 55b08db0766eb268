package domain

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// Range is a (min, max) pair
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Summary holds the statistics of the readings inside one window.
// It is recomputed on every request and never stored.
type Summary struct {
	Window         string           `json:"window"`
	WindowStart    time.Time        `json:"window_start"`
	WindowEnd      time.Time        `json:"window_end"`
	Count          int              `json:"count"`
	MeanSystolic   int              `json:"mean_systolic"`
	MeanDiastolic  int              `json:"mean_diastolic"`
	MeanPulse      int              `json:"mean_pulse"`
	SystolicRange  Range            `json:"systolic_range"`
	DiastolicRange Range            `json:"diastolic_range"`
	Latest         *Reading         `json:"latest,omitempty"`
	Category       SeverityCategory `json:"category"`
}

// Empty reports whether the window held no readings. Callers should show
// "no data" instead of the category in that case.
func (s Summary) Empty() bool {
	return s.Count == 0
}

// Summarize filters readings to the window and computes count, rounded means,
// ranges, the latest reading and the category of the means.
// Means round half away from zero. Among readings sharing the greatest
// MeasuredAt, the first one in input order is reported as latest.
func Summarize(readings []Reading, w TimeWindow, now time.Time) Summary {
	start, end := w.Bounds(now)
	inWindow := FilterWindow(readings, w, now)

	summary := Summary{
		Window:      w.String(),
		WindowStart: start,
		WindowEnd:   end,
		Count:       len(inWindow),
	}
	if len(inWindow) == 0 {
		summary.Category = Classify(0, 0)
		return summary
	}

	systolic := make([]float64, len(inWindow))
	diastolic := make([]float64, len(inWindow))
	pulse := make([]float64, len(inWindow))
	for i, r := range inWindow {
		systolic[i] = float64(r.Systolic)
		diastolic[i] = float64(r.Diastolic)
		pulse[i] = float64(r.Pulse)
	}

	summary.MeanSystolic = roundedMean(systolic)
	summary.MeanDiastolic = roundedMean(diastolic)
	summary.MeanPulse = roundedMean(pulse)
	summary.SystolicRange = rangeOf(systolic)
	summary.DiastolicRange = rangeOf(diastolic)

	latest, _ := LatestReading(inWindow)
	summary.Latest = &latest
	summary.Category = Classify(summary.MeanSystolic, summary.MeanDiastolic)
	return summary
}

// LatestReading returns the reading with the greatest MeasuredAt.
// Ties go to the first one in input order. ok is false for an empty slice.
func LatestReading(readings []Reading) (latest Reading, ok bool) {
	if len(readings) == 0 {
		return Reading{}, false
	}
	latestIdx := 0
	for i, r := range readings {
		if r.MeasuredAt.After(readings[latestIdx].MeasuredAt) {
			latestIdx = i
		}
	}
	return readings[latestIdx], true
}

// SortByMeasuredAt returns a copy of readings ordered by MeasuredAt.
// Equal timestamps keep their input order.
func SortByMeasuredAt(readings []Reading, ascending bool) []Reading {
	sorted := make([]Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return sorted[i].MeasuredAt.Before(sorted[j].MeasuredAt)
		}
		return sorted[i].MeasuredAt.After(sorted[j].MeasuredAt)
	})
	return sorted
}

// roundedMean expects a non-empty slice of whole numbers
func roundedMean(values []float64) int {
	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	// stats.Round rounds half away from zero
	rounded, err := stats.Round(mean, 0)
	if err != nil {
		return 0
	}
	return int(rounded)
}

func rangeOf(values []float64) Range {
	lo, err := stats.Min(values)
	if err != nil {
		return Range{}
	}
	hi, err := stats.Max(values)
	if err != nil {
		return Range{}
	}
	return Range{Min: int(lo), Max: int(hi)}
}
