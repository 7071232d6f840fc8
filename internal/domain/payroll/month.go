package payroll

import (
	"fmt"
	"strings"
	"time"
)

const monthLayout = "2006-01"

var monthLabels = [...]string{
	"Januari", "Februari", "Mac", "April", "Mei", "Jun",
	"Julai", "Ogos", "September", "Oktober", "November", "Disember",
}

// Month identifies a payroll month.
type Month struct {
	Year  int
	Month time.Month
}

func ParseMonth(value string) (Month, error) {
	parsed, err := time.Parse(monthLayout, strings.TrimSpace(value))
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, value)
	}
	return Month{Year: parsed.Year(), Month: parsed.Month()}, nil
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label renders the month the way payslips print it, e.g. "Ogos 2025".
func (m Month) Label() string {
	if m.Month < time.January || m.Month > time.December {
		return m.String()
	}
	return fmt.Sprintf("%s %d", monthLabels[m.Month-1], m.Year)
}

// Start is the first day of the month at midnight UTC.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last day of the month at midnight UTC.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

func (m Month) Contains(t time.Time) bool {
	return !t.IsZero() && t.Year() == m.Year && t.Month() == m.Month
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
