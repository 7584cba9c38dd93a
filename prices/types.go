package prices

import (
	"time"

	"github.com/angas/elpriskvart-go/days"
)

// Interval is one validated price point. End is the zero time
// when the upstream entry carried no time_end.
type Interval struct {
	Start time.Time `json:"time_start"`
	End   time.Time `json:"time_end,omitzero"`
	Price float64   `json:"SEK_per_kWh"` // SEK per kWh excluding VAT
}

// DailySeries is a time-sorted sequence of intervals, all starting
// on the same local calendar day. Replaced wholesale on refresh,
// never mutated in place.
type DailySeries []Interval

// Cache maps a local calendar day to its price series. Owned by the
// refresh coordinator; consumers only ever see clones.
type Cache map[days.Day]DailySeries

func (c Cache) Clone() Cache {
	clone := make(Cache, len(c))
	for day, series := range c {
		s := make(DailySeries, len(series))
		copy(s, series)
		clone[day] = s
	}
	return clone
}

func (c Cache) Days() []days.Day {
	ds := make([]days.Day, 0, len(c))
	for day := range c {
		ds = append(ds, day)
	}
	return ds
}
