package leave

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("end date before start date")

// CalculateDays returns inclusive day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	start, end = civil(start), civil(end)
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	return end.Sub(start).Hours()/24 + 1, nil
}

// OverlapDays returns the inclusive number of days [start, end] shares with
// the window [windowStart, windowEnd]. Disjoint ranges yield 0.
func OverlapDays(start, end, windowStart, windowEnd time.Time) (float64, error) {
	if _, err := CalculateDays(start, end); err != nil {
		return 0, err
	}
	overlapStart := civil(start)
	if ws := civil(windowStart); ws.After(overlapStart) {
		overlapStart = ws
	}
	overlapEnd := civil(end)
	if we := civil(windowEnd); we.Before(overlapEnd) {
		overlapEnd = we
	}
	if overlapEnd.Before(overlapStart) {
		return 0, nil
	}
	return CalculateDays(overlapStart, overlapEnd)
}

// Touches reports whether start or end falls inside [windowStart, windowEnd].
func Touches(start, end, windowStart, windowEnd time.Time) bool {
	return within(civil(start), civil(windowStart), civil(windowEnd)) ||
		within(civil(end), civil(windowStart), civil(windowEnd))
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
