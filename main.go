package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/angas/elpriskvart-go/config"
	"github.com/angas/elpriskvart-go/coordinator"
	"github.com/angas/elpriskvart-go/database"
	"github.com/angas/elpriskvart-go/elprisetjustnu"
	"github.com/angas/elpriskvart-go/logging"
	"github.com/angas/elpriskvart-go/mqttpub"
	"github.com/angas/elpriskvart-go/task"
	"github.com/angas/elpriskvart-go/www"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	loc, err := cnfg.EnergyPrice.GetLocation()
	if err != nil {
		panic(fmt.Sprintf("failed to load timezone: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("elpriskvart is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	config.Watch(logger.With("module", "config"))

	client := elprisetjustnu.New(
		logger.With("module", "elprisetjustnu"),
		cnfg.EnergyPrice.GetBaseUrl(),
		cnfg.EnergyPrice.Area)

	coord := coordinator.New(
		logger.With("module", "coordinator", slog.String("area", cnfg.EnergyPrice.Area)),
		client,
		coordinator.Config{
			PublicationHour: cnfg.EnergyPrice.GetPublicationHour(),
			NormalInterval:  cnfg.EnergyPrice.GetNormalInterval(),
			RetryInterval:   cnfg.EnergyPrice.GetRetryInterval(),
			RetentionDays:   cnfg.EnergyPrice.GetRetentionDays(),
			Location:        loc,
		})

	if cnfg.Mqtt.Enabled() {
		publisher := mqttpub.New(cnfg, loc)
		if err := publisher.Connect(); err != nil {
			panic(fmt.Sprintf("MQTT connection error: %v", err))
		}
		defer publisher.Disconnect()
		coord.OnUpdate(publisher.PublishSnapshot)
	} else {
		logger.Info("no MQTT broker configured, publishing disabled")
	}

	tasks := task.NewTasks(db, cnfg)
	tasks.Run()
	defer tasks.Stop()

	server := www.StartServer(coord, db, cnfg)
	coord.OnUpdate(func(snap coordinator.Snapshot) {
		server.BroadcastSnapshot(snap, cnfg.EnergyPrice)
	})

	go coord.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("main context done")
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server.Run(ctx, cnfg.EnergyPrice)
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	time.Sleep(2 * time.Second)
	os.Exit(1)
}
