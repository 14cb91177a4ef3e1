package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/omarshaarawi/upgradebot/internal/config"
)

// Refresher reloads the upgrade matrix from pasted report text.
type Refresher interface {
	Refresh(ctx context.Context, text string) (string, error)
}

type Scheduler struct {
	s           gocron.Scheduler
	cfg         config.Schedule
	refresher   Refresher
	sendMessage func(string) error
	refreshJob  gocron.Job
}

func NewScheduler(cfg config.Schedule, refresher Refresher, sendMessage func(string) error) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Error("Failed to load location", "timezone", cfg.Timezone, "error", err)
		location = time.UTC
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:           s,
		cfg:         cfg,
		refresher:   refresher,
		sendMessage: sendMessage,
	}, nil
}

func (s *Scheduler) Start() error {
	if s.cfg.Enabled() {
		job, err := s.s.NewJob(
			gocron.CronJob(s.cfg.Cron, false),
			gocron.NewTask(s.refreshFromFile),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create refresh job: %w", err)
		}
		s.refreshJob = job
		slog.Info("Scheduled sims refresh", "cron", s.cfg.Cron, "input", s.cfg.InputFile)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

// RunNow triggers the refresh job outside its schedule.
func (s *Scheduler) RunNow() error {
	if s.refreshJob == nil {
		return fmt.Errorf("refresh job is not scheduled")
	}
	return s.refreshJob.RunNow()
}

func (s *Scheduler) refreshFromFile() {
	input, err := os.ReadFile(s.cfg.InputFile)
	if err != nil {
		slog.Error("Failed to read sims input", "path", s.cfg.InputFile, "error", err)
		return
	}

	summary, err := s.refresher.Refresh(context.Background(), string(input))
	if err != nil {
		slog.Error("Failed to refresh sims", "error", err)
		return
	}
	if err := s.sendMessage(summary); err != nil {
		slog.Error("Failed to send refresh summary", "error", err)
	}
}
