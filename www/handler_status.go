package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/elpriskvart-go/days"
	"github.com/angas/elpriskvart-go/slice"
)

type StatusPayload struct {
	PriceArea          string     `json:"price_area"`
	Today              string     `json:"today"`
	CachedDays         []string   `json:"cached_days"`
	TomorrowFetchedFor string     `json:"tomorrow_fetched_for,omitempty"`
	PollInterval       string     `json:"poll_interval"`
	LastTickAt         *time.Time `json:"last_tick_at,omitempty"`
	LastTickOK         bool       `json:"last_tick_ok"`
}

func NewStatusHandler(logger *slog.Logger, source SnapshotSource, area string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		snap := source.Snapshot()

		cached := snap.Cache.Days()
		payload := StatusPayload{
			PriceArea:          area,
			Today:              snap.Today.String(),
			CachedDays:         sorted(slice.Map(cached, days.Day.String)),
			TomorrowFetchedFor: snap.TomorrowFetchedFor.String(),
			PollInterval:       snap.Interval.String(),
			LastTickOK:         snap.LastTickOK,
		}
		if !snap.LastTickAt.IsZero() {
			last := snap.LastTickAt
			payload.LastTickAt = &last
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("handling status request", slog.Any("error", err))
			http.Error(w, "unable to encode status", http.StatusInternalServerError)
		}
	}
}
