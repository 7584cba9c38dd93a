package prices

import (
	"encoding/json"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func rawPayload(t *testing.T, payload string) any {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshalling test payload: %v", err)
	}
	return raw
}

func TestParseStringPrice(t *testing.T) {
	raw := rawPayload(t, `[{"SEK_per_kWh":"0.50","time_start":"2023-10-25T00:00:00+00:00"}]`)

	series := Parse(testLogger, raw, "2023-10-25", time.UTC)

	if len(series) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(series))
	}
	if series[0].Price != 0.50 {
		t.Errorf("expected price 0.50, got %f", series[0].Price)
	}
}

func TestParseDateFencing(t *testing.T) {
	raw := rawPayload(t, `[{"SEK_per_kWh":"0.50","time_start":"2023-10-25T00:00:00+00:00"}]`)

	series := Parse(testLogger, raw, "2023-10-26", time.UTC)

	if len(series) != 0 {
		t.Errorf("expected empty series for mismatched date, got %d entries", len(series))
	}
}

func TestParseDateFencingUsesLocalTimezone(t *testing.T) {
	stockholm, err := time.LoadLocation("Europe/Stockholm")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 23:00 UTC on the 24th is 01:00 local on the 25th (CEST).
	raw := rawPayload(t, `[{"SEK_per_kWh":0.42,"time_start":"2023-10-24T23:00:00+00:00"}]`)

	if series := Parse(testLogger, raw, "2023-10-25", stockholm); len(series) != 1 {
		t.Errorf("expected entry to pass the fence in local time, got %d entries", len(series))
	}
	if series := Parse(testLogger, raw, "2023-10-24", stockholm); len(series) != 0 {
		t.Errorf("expected entry to be fenced out, got %d entries", len(series))
	}
}

func TestParseSortsByStartTime(t *testing.T) {
	raw := rawPayload(t, `[
		{"SEK_per_kWh":0.3,"time_start":"2023-10-25T02:00:00+00:00"},
		{"SEK_per_kWh":0.1,"time_start":"2023-10-25T00:00:00+00:00"},
		{"SEK_per_kWh":0.2,"time_start":"2023-10-25T01:00:00+00:00"}]`)

	series := Parse(testLogger, raw, "2023-10-25", time.UTC)

	if len(series) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(series))
	}
	for i := 1; i < len(series); i++ {
		if !series[i-1].Start.Before(series[i].Start) {
			t.Errorf("series not sorted at index %d: %v >= %v", i, series[i-1].Start, series[i].Start)
		}
	}
}

func TestParseSkipsInvalidEntries(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "missing price", payload: `[{"time_start":"2023-10-25T00:00:00+00:00"}]`},
		{name: "missing time_start", payload: `[{"SEK_per_kWh":0.5}]`},
		{name: "non-numeric price", payload: `[{"SEK_per_kWh":"abc","time_start":"2023-10-25T00:00:00+00:00"}]`},
		{name: "non-finite price", payload: `[{"SEK_per_kWh":"NaN","time_start":"2023-10-25T00:00:00+00:00"}]`},
		{name: "unparseable time", payload: `[{"SEK_per_kWh":0.5,"time_start":"25/10/2023"}]`},
		{name: "offset-less time", payload: `[{"SEK_per_kWh":0.5,"time_start":"2023-10-25 00:00"}]`},
		{name: "entry not an object", payload: `["0.50"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := Parse(testLogger, rawPayload(t, tt.payload), "2023-10-25", time.UTC)
			if len(series) != 0 {
				t.Errorf("expected invalid entry to be skipped, got %d entries", len(series))
			}
		})
	}
}

func TestParseOneBadEntryKeepsTheRest(t *testing.T) {
	raw := rawPayload(t, `[
		{"SEK_per_kWh":0.1,"time_start":"2023-10-25T00:00:00+00:00"},
		{"SEK_per_kWh":"broken","time_start":"2023-10-25T01:00:00+00:00"},
		{"SEK_per_kWh":0.3,"time_start":"2023-10-25T02:00:00+00:00"}]`)

	series := Parse(testLogger, raw, "2023-10-25", time.UTC)

	if len(series) != 2 {
		t.Fatalf("expected 2 valid entries, got %d", len(series))
	}
	if series[0].Price != 0.1 || series[1].Price != 0.3 {
		t.Errorf("unexpected surviving prices: %v", series)
	}
}

func TestParseNonSequencePayload(t *testing.T) {
	for _, payload := range []string{`{"SEK_per_kWh":0.5}`, `"oops"`, `42`} {
		series := Parse(testLogger, rawPayload(t, payload), "2023-10-25", time.UTC)
		if len(series) != 0 {
			t.Errorf("expected empty series for payload %s, got %d entries", payload, len(series))
		}
	}
}

func TestParseOptionalTimeEnd(t *testing.T) {
	raw := rawPayload(t, `[
		{"SEK_per_kWh":0.1,"time_start":"2023-10-25T00:00:00+00:00","time_end":"2023-10-25T00:15:00+00:00"},
		{"SEK_per_kWh":0.2,"time_start":"2023-10-25T00:15:00+00:00"},
		{"SEK_per_kWh":0.3,"time_start":"2023-10-25T00:30:00+00:00","time_end":"garbage"}]`)

	series := Parse(testLogger, raw, "2023-10-25", time.UTC)

	if len(series) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(series))
	}
	if series[0].End.IsZero() {
		t.Error("expected first entry to keep its time_end")
	}
	if !series[1].End.IsZero() {
		t.Error("expected second entry to have no time_end")
	}
	if !series[2].End.IsZero() {
		t.Error("expected a garbage time_end to be dropped, not fatal")
	}
}

func TestParseIsIdempotent(t *testing.T) {
	raw := rawPayload(t, `[
		{"SEK_per_kWh":0.2,"time_start":"2023-10-25T01:00:00+00:00"},
		{"SEK_per_kWh":"0.1","time_start":"2023-10-25T00:00:00+00:00"}]`)

	first := Parse(testLogger, raw, "2023-10-25", time.UTC)
	second := Parse(testLogger, raw, "2023-10-25", time.UTC)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical output on repeated parse:\n%v\n%v", first, second)
	}
}
