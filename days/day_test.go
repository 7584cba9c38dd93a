package days

import (
	"testing"
	"time"
)

func TestFromTimeUsesLocation(t *testing.T) {
	stockholm, err := time.LoadLocation("Europe/Stockholm")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 23:30 UTC is already the next day in Stockholm (UTC+1 in winter).
	utc := time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC)

	if d := FromTime(utc, time.UTC); d != "2025-01-01" {
		t.Errorf("FromTime in UTC expected 2025-01-01, got %s", d)
	}
	if d := FromTime(utc, stockholm); d != "2025-01-02" {
		t.Errorf("FromTime in Stockholm expected 2025-01-02, got %s", d)
	}
}

func TestFromTimeZero(t *testing.T) {
	if d := FromTime(time.Time{}, time.UTC); !d.IsZero() {
		t.Errorf("expected zero day, got %s", d)
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("2025-03-30")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if d != "2025-03-30" {
		t.Errorf("Parse() expected 2025-03-30, got %s", d)
	}

	if _, err := Parse("not-a-date"); err == nil {
		t.Error("Parse() expected error for malformed input")
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name     string
		input    Day
		days     int
		expected Day
	}{
		{
			name:     "next day",
			input:    "2025-01-01",
			days:     1,
			expected: "2025-01-02",
		},
		{
			name:     "crossing month boundary",
			input:    "2025-01-31",
			days:     1,
			expected: "2025-02-01",
		},
		{
			name:     "negative days (subtract)",
			input:    "2025-01-01",
			days:     -2,
			expected: "2024-12-30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.input.Add(tt.days); result != tt.expected {
				t.Errorf("Add(%d) expected %s, got %s", tt.days, tt.expected, result)
			}
		})
	}
}

func TestBefore(t *testing.T) {
	if !Day("2024-12-31").Before("2025-01-01") {
		t.Error("expected 2024-12-31 to be before 2025-01-01")
	}
	if Day("2025-01-01").Before("2025-01-01") {
		t.Error("a day is not before itself")
	}
}

func TestTimeMidnight(t *testing.T) {
	stockholm, err := time.LoadLocation("Europe/Stockholm")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	midnight := Day("2025-06-01").Time(stockholm)
	if midnight.Hour() != 0 || midnight.Location() != stockholm {
		t.Errorf("expected local midnight, got %v", midnight)
	}
}
