package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

type attendanceTotals struct {
	DaysWorked   int
	TotalMinutes int64
	// MinutesByDate sums worked minutes per civil date key.
	MinutesByDate map[string]int64
}

func (a attendanceTotals) TotalHours() decimal.Decimal {
	return decimal.NewFromInt(a.TotalMinutes).Div(minutesPerHour)
}

func (a attendanceTotals) HoursOn(dateKey string) decimal.Decimal {
	return decimal.NewFromInt(a.MinutesByDate[dateKey]).Div(minutesPerHour)
}

func aggregateAttendance(staffID string, month Month, records []AttendanceRecord) attendanceTotals {
	totals := attendanceTotals{MinutesByDate: map[string]int64{}}
	for _, rec := range records {
		if rec.StaffID != staffID || !month.Contains(rec.Date.Time) {
			continue
		}
		minutes, ok := workedMinutes(rec)
		if !ok || minutes <= 0 {
			continue
		}
		totals.DaysWorked++
		totals.TotalMinutes += int64(minutes)
		totals.MinutesByDate[rec.Date.Key()] += int64(minutes)
	}
	return totals
}

// workedMinutes reports false when either clock time is missing or unreadable.
func workedMinutes(rec AttendanceRecord) (int, bool) {
	in, err := parseClock(rec.ClockIn)
	if err != nil {
		return 0, false
	}
	out, err := parseClock(rec.ClockOut)
	if err != nil {
		return 0, false
	}
	return out - in - rec.BreakMinutes, true
}

// parseClock converts "HH:MM" (or "HH:MM:SS") to minutes after midnight.
func parseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("missing clock time")
	}
	layout := "15:04"
	if strings.Count(value, ":") == 2 {
		layout = "15:04:05"
	}
	parsed, err := time.Parse(layout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", value, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}
