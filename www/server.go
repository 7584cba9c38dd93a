package www

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/elpriskvart-go/config"
	"github.com/angas/elpriskvart-go/coordinator"
	"github.com/angas/elpriskvart-go/database"
)

// SnapshotSource is the read-only view of the refresh coordinator the
// www layer works against.
type SnapshotSource interface {
	Snapshot() coordinator.Snapshot
	Location() *time.Location
}

type Server struct {
	logger *slog.Logger
	config config.AppConfigApi
	source SnapshotSource
	hub    *Hub
	mux    *http.ServeMux
}

func StartServer(source SnapshotSource, db *database.Database, cnfg *config.AppConfig) *Server {
	logger := slog.Default().With("module", "www")

	s := &Server{
		logger: logger,
		config: cnfg.Api,
		source: source,
		hub:    NewHub(logger),
		mux:    http.NewServeMux(),
	}

	go s.hub.Run()

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	s.mux.Handle("/api/current", logReqMW(NewCurrentHandler(
		logger.With(slog.String("handler", "current")),
		source,
		cnfg.EnergyPrice)))

	s.mux.Handle("/api/prices", logReqMW(NewPricesHandler(
		logger.With(slog.String("handler", "prices")),
		source,
		cnfg.EnergyPrice)))

	s.mux.Handle("/api/status", logReqMW(NewStatusHandler(
		logger.With(slog.String("handler", "status")),
		source,
		cnfg.EnergyPrice.Area)))

	s.mux.Handle("/api/log", logReqMW(NewLogHandler(
		logger.With(slog.String("handler", "log")),
		db)))

	s.mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("User-Agent")
		client, err := NewClient(s.hub, w, r, name)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register <- client
		go client.WritePump()
	})

	return s
}

// BroadcastSnapshot pushes the current price to all websocket clients.
// Wired as a coordinator update listener.
func (s *Server) BroadcastSnapshot(snap coordinator.Snapshot, cnfg config.AppConfigEnergyPrice) {
	now := time.Now().In(s.source.Location())
	payload := currentPayload(snap, cnfg.Area, cnfg.GetSurchargeOre(), now)
	buf, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshalling broadcast payload", slog.Any("error", err))
		return
	}
	s.hub.Broadcast <- buf
}

func (s *Server) Run(ctx context.Context, cnfg config.AppConfigEnergyPrice) {
	s.logger.Info("starting server...", "address", s.config.Address, "port", s.config.Port)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
		Handler: s.mux,
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	// Interval boundaries move the current price without any fetch
	// happening, so clients get a periodic push as well.
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case err := <-srvErrors:
			if err != nil && err != http.ErrServerClosed {
				s.logger.Error("server error", slog.Any("error", err))
			}
			return

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("server shutdown failed", slog.Any("error", err))
			}
			return

		case <-ticker.C:
			s.BroadcastSnapshot(s.source.Snapshot(), cnfg)
		}
	}
}
