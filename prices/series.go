package prices

import "time"

// Upstream publishes quarter-hour intervals, used as the fallback
// span when an interval has no explicit end and no successor.
const defaultIntervalLength = 15 * time.Minute

// At returns the interval covering t. An interval without an explicit
// end is bounded by the next interval's start, or by the quarter-hour
// fallback for the last one.
func (s DailySeries) At(t time.Time) (Interval, bool) {
	for i, interval := range s {
		if t.Before(interval.Start) {
			continue
		}
		end := interval.End
		if end.IsZero() {
			if i+1 < len(s) {
				end = s[i+1].Start
			} else {
				end = interval.Start.Add(defaultIntervalLength)
			}
		}
		if t.Before(end) {
			return interval, true
		}
	}
	return Interval{}, false
}

// MinMax returns the lowest and highest price in the series.
func (s DailySeries) MinMax() (low float64, high float64, ok bool) {
	if len(s) == 0 {
		return 0, 0, false
	}
	low, high = s[0].Price, s[0].Price
	for _, interval := range s[1:] {
		low = min(low, interval.Price)
		high = max(high, interval.Price)
	}
	return low, high, true
}

func (s DailySeries) IsEmpty() bool {
	return len(s) == 0
}
