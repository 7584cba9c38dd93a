package days

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Day is a calendar date ("2006-01-02") in the consumer's local timezone.
// The zero value means "no day".
type Day string

func FromTime(t time.Time, loc *time.Location) Day {
	if t.IsZero() {
		return ""
	}
	return Day(t.In(loc).Format(dateLayout))
}

func Parse(str string) (Day, error) {
	t, err := time.Parse(dateLayout, str)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", str, err)
	}
	return Day(t.Format(dateLayout)), nil
}

func (d Day) String() string {
	return string(d)
}

func (d Day) IsZero() bool {
	return d == ""
}

// Time returns midnight of the day in the given location,
// or the zero time if the day is malformed.
func (d Day) Time(loc *time.Location) time.Time {
	t, err := time.ParseInLocation(dateLayout, string(d), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d Day) Add(days int) Day {
	t := d.Time(time.UTC)
	if t.IsZero() {
		return d
	}
	return Day(t.AddDate(0, 0, days).Format(dateLayout))
}

func (d Day) Next() Day {
	return d.Add(1)
}

// Before reports whether d falls before other. ISO dates
// order lexicographically so plain string compare is enough.
func (d Day) Before(other Day) bool {
	return string(d) < string(other)
}
