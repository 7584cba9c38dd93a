package prices

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/angas/elpriskvart-go/days"
)

// Parse converts a raw upstream payload into a validated series for one
// calendar day. Malformed elements and elements whose local start date
// differs from expected are skipped with a logged warning; a bad entry
// never invalidates the rest. The result is sorted by start time and may
// be empty. Pure apart from logging.
func Parse(logger *slog.Logger, raw any, expected days.Day, loc *time.Location) DailySeries {
	list, ok := raw.([]any)
	if !ok {
		logger.Warn("expected a list of price entries",
			slog.String("day", expected.String()),
			slog.String("gotType", fmt.Sprintf("%T", raw)))
		return DailySeries{}
	}

	series := make(DailySeries, 0, len(list))
	for _, elem := range list {
		interval, err := parseEntry(elem, loc)
		if err != nil {
			logger.Warn("skipping invalid price entry",
				slog.String("day", expected.String()),
				slog.Any("error", err))
			continue
		}

		if startDay := days.FromTime(interval.Start, loc); startDay != expected {
			logger.Warn("skipping price entry outside requested day",
				slog.String("day", expected.String()),
				slog.String("entryDay", startDay.String()))
			continue
		}

		series = append(series, interval)
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Start.Before(series[j].Start)
	})

	return series
}

func parseEntry(elem any, loc *time.Location) (Interval, error) {
	obj, ok := elem.(map[string]any)
	if !ok {
		return Interval{}, fmt.Errorf("entry is not an object (%T)", elem)
	}

	priceRaw, ok := obj["SEK_per_kWh"]
	if !ok {
		return Interval{}, fmt.Errorf("missing SEK_per_kWh")
	}
	price, err := toFiniteFloat(priceRaw)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid SEK_per_kWh: %w", err)
	}

	startRaw, ok := obj["time_start"].(string)
	if !ok {
		return Interval{}, fmt.Errorf("missing or non-string time_start")
	}
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid time_start %q: %w", startRaw, err)
	}

	interval := Interval{Start: start.In(loc), Price: price}

	if endRaw, ok := obj["time_end"].(string); ok {
		// time_end is optional and best effort, a bad value is not fatal
		if end, err := time.Parse(time.RFC3339, endRaw); err == nil {
			interval.End = end.In(loc)
		}
	}

	return interval, nil
}

func toFiniteFloat(v any) (float64, error) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, err
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %f", f)
	}
	return f, nil
}
