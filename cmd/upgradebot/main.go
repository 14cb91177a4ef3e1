package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/omarshaarawi/upgradebot/internal/api/raidbots"
	"github.com/omarshaarawi/upgradebot/internal/api/sims"
	"github.com/omarshaarawi/upgradebot/internal/bot"
	"github.com/omarshaarawi/upgradebot/internal/config"
	"github.com/omarshaarawi/upgradebot/internal/repository/memory"
	"github.com/omarshaarawi/upgradebot/internal/scheduler"
	"github.com/omarshaarawi/upgradebot/internal/service"
	"github.com/omarshaarawi/upgradebot/internal/sink"
	"github.com/omarshaarawi/upgradebot/internal/sink/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	raidbotsClient := raidbots.NewClient(cfg.Raidbots)
	simsAPI := sims.NewAPI(raidbotsClient, raidbots.ParseReport, cfg.Raidbots.Marker, cfg.Raidbots.Concurrency)

	repo := memory.NewRepository()

	var sinks sink.Multi
	if cfg.Output.CSVPath != "" {
		sinks = append(sinks, sink.NewCSVFile(cfg.Output.CSVPath))
	}
	if cfg.Output.SQLitePath != "" {
		store, err := sqlite.Open(cfg.Output.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close()

		matrix, ok, err := store.Latest(context.Background())
		if err != nil {
			slog.Error("Error loading saved matrix", "error", err)
		} else if ok {
			repo.SaveMatrix(matrix)
			slog.Info("Restored saved matrix", "players", len(matrix.Rows), "updated", matrix.UpdatedAt)
		}
		sinks = append(sinks, store)
	}

	upgradeService := service.NewUpgradeService(simsAPI, repo, sinks, cfg.Raidbots.Host)

	telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, upgradeService)
	if err != nil {
		return err
	}

	sched, err := scheduler.NewScheduler(cfg.Schedule, upgradeService, telegramBot.SendMessage)
	if err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	http.HandleFunc("/", healthCheckHandler)

	go func() {
		if err := http.ListenAndServe(cfg.HTTPAddr, nil); err != nil {
			slog.Error("Error starting HTTP server", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			slog.Error("Error running telegram bot", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	return nil
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
