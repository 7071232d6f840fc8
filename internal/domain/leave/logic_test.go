package leave

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateDays(t *testing.T) {
	start := day(2025, 1, 10)

	days, err := CalculateDays(start, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 1 {
		t.Fatalf("expected 1 day, got %v", days)
	}

	days, err = CalculateDays(start, day(2025, 1, 12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 3 {
		t.Fatalf("expected 3 days, got %v", days)
	}
}

func TestCalculateDaysIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)
	end := time.Date(2025, 3, 2, 6, 0, 0, 0, time.UTC)

	days, err := CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 2 {
		t.Fatalf("expected 2 days, got %v", days)
	}
}

func TestCalculateDaysInvalid(t *testing.T) {
	_, err := CalculateDays(day(2025, 2, 10), day(2025, 2, 9))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestOverlapDays(t *testing.T) {
	windowStart, windowEnd := day(2025, 1, 1), day(2025, 1, 31)

	cases := []struct {
		name       string
		start, end time.Time
		want       float64
	}{
		{"inside", day(2025, 1, 5), day(2025, 1, 7), 3},
		{"spans start", day(2024, 12, 30), day(2025, 1, 2), 2},
		{"spans end", day(2025, 1, 30), day(2025, 2, 3), 2},
		{"covers window", day(2024, 12, 1), day(2025, 2, 28), 31},
		{"disjoint", day(2025, 2, 1), day(2025, 2, 3), 0},
	}
	for _, tc := range cases {
		got, err := OverlapDays(tc.start, tc.end, windowStart, windowEnd)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestTouches(t *testing.T) {
	windowStart, windowEnd := day(2025, 1, 1), day(2025, 1, 31)
	if !Touches(day(2024, 12, 30), day(2025, 1, 2), windowStart, windowEnd) {
		t.Fatal("expected range ending in window to touch it")
	}
	if Touches(day(2024, 12, 1), day(2025, 2, 28), windowStart, windowEnd) {
		t.Fatal("expected range with both ends outside window not to touch it")
	}
}
