package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/elpriskvart-go/config"
	"github.com/angas/elpriskvart-go/days"
)

// NewCurrentHandler serves the price of the interval covering "now",
// spot and surcharge-inclusive, in both SEK and öre.
func NewCurrentHandler(logger *slog.Logger, source SnapshotSource, cnfg config.AppConfigEnergyPrice) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		now := time.Now().In(source.Location())
		payload := currentPayload(source.Snapshot(), cnfg.Area, cnfg.GetSurchargeOre(), now)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("handling current price request", slog.Any("error", err))
			http.Error(w, "unable to encode current price", http.StatusInternalServerError)
		}
	}
}

// NewPricesHandler serves a full day's series. The day query parameter
// accepts "today" (default), "tomorrow" or a plain date.
func NewPricesHandler(logger *slog.Logger, source SnapshotSource, cnfg config.AppConfigEnergyPrice) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		snap := source.Snapshot()

		var day days.Day
		switch q := r.URL.Query().Get("day"); q {
		case "", "today":
			day = snap.Today
		case "tomorrow":
			day = snap.Today.Next()
		default:
			parsed, err := days.Parse(q)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			day = parsed
		}

		payload := dayPayload(day.String(), snap.Cache[day], cnfg.GetSurchargeOre())

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("handling prices request", slog.Any("error", err))
			http.Error(w, "unable to encode prices", http.StatusInternalServerError)
		}
	}
}
