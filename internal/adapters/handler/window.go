package handler

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
)

// ErrInvalidWindow is returned for unparseable window query parameters
var ErrInvalidWindow = errors.New("invalid window")

const maxDays = 3660

// ParseWindow builds a time window from query parameters:
//
//	range=week                     last 7 days (default)
//	range=days&days=N              last N days
//	range=month[&month=YYYY-MM]    calendar month, current month by default
//	range=quarter                  last 3 months
//	range=quarter&year=Y&quarter=Q calendar quarter, either param may be omitted
//	range=year                     last 12 months
//	range=year&year=Y              calendar year
//	range=all                      every reading
//
// Calendar boundaries are taken in loc. fallback is used when range is absent.
func ParseWindow(q url.Values, now time.Time, loc *time.Location, fallback domain.TimeWindow) (domain.TimeWindow, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	switch q.Get("range") {
	case "":
		return fallback, nil
	case "week":
		return domain.LastNDays{N: 7}, nil
	case "days":
		days, err := strconv.Atoi(q.Get("days"))
		if err != nil || days < 1 || days > maxDays {
			return nil, fmt.Errorf("%w: days must be an integer between 1 and %d", ErrInvalidWindow, maxDays)
		}
		return domain.LastNDays{N: days}, nil
	case "month":
		month := q.Get("month")
		if month == "" {
			return domain.CalendarMonth{Year: local.Year(), Month: local.Month(), Location: loc}, nil
		}
		t, err := time.ParseInLocation("2006-01", month, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: month must be YYYY-MM", ErrInvalidWindow)
		}
		return domain.CalendarMonth{Year: t.Year(), Month: t.Month(), Location: loc}, nil
	case "quarter":
		if q.Get("year") == "" && q.Get("quarter") == "" {
			return domain.LastNMonths{N: 3}, nil
		}
		year, err := yearParam(q, local)
		if err != nil {
			return nil, err
		}
		quarter := domain.QuarterOf(local.Month())
		if v := q.Get("quarter"); v != "" {
			quarter, err = strconv.Atoi(v)
			if err != nil || quarter < 1 || quarter > 4 {
				return nil, fmt.Errorf("%w: quarter must be 1, 2, 3 or 4", ErrInvalidWindow)
			}
		}
		return domain.CalendarQuarter{Year: year, Quarter: quarter, Location: loc}, nil
	case "year":
		if q.Get("year") == "" {
			return domain.LastNMonths{N: 12}, nil
		}
		year, err := yearParam(q, local)
		if err != nil {
			return nil, err
		}
		return domain.CalendarYear{Year: year, Location: loc}, nil
	case "all":
		return domain.AllTime{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown range %q", ErrInvalidWindow, q.Get("range"))
	}
}

func yearParam(q url.Values, local time.Time) (int, error) {
	v := q.Get("year")
	if v == "" {
		return local.Year(), nil
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("%w: year must be between 1 and 9999", ErrInvalidWindow)
	}
	return year, nil
}
