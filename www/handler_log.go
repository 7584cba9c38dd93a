package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/elpriskvart-go/database"
)

type LogEntryPayload struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Attrs     string    `json:"attrs,omitempty"`
}

func NewLogHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		page := intOrDefault(r.URL, "page", 1)
		pageSize := intOrDefault(r.URL, "page_size", 50)
		minLevel := slog.Level(intOrDefault(r.URL, "min_level", int(slog.LevelInfo)))

		entries, err := db.GetLogEntries(r.Context(), minLevel, page, pageSize)
		if err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		payload := make([]LogEntryPayload, 0, len(entries))
		for _, e := range entries {
			payload = append(payload, LogEntryPayload{
				Timestamp: e.Timestamp,
				Level:     slog.Level(e.Level).String(),
				Message:   e.Message,
				Attrs:     e.Attrs,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, "unable to encode log entries", http.StatusInternalServerError)
		}
	}
}
