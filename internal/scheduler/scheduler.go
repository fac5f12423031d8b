package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"DriftSentinel/internal/notifier"
	"DriftSentinel/internal/pipeline"
	"DriftSentinel/internal/report"
)

// Scheduler re-runs the drift analysis on a cron schedule, e.g. nightly
// after the close. Each run is a full batch pass; no streaming.
type Scheduler struct {
	Cron      *cron.Cron
	Runner    *pipeline.Runner
	Notifier  *notifier.TelegramNotifier // nil when Telegram is not configured
	StartYear int
	EndYear   int
	Ctx       context.Context
}

// NewScheduler creates a Scheduler around an existing Runner.
func NewScheduler(ctx context.Context, runner *pipeline.Runner, tn *notifier.TelegramNotifier, startYear, endYear int) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Runner:    runner,
		Notifier:  tn,
		StartYear: startYear,
		EndYear:   endYear,
		Ctx:       ctx,
	}
}

// Register adds the analysis task under the given cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runTask); err != nil {
		return fmt.Errorf("register drift task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the analysis task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.runTask()
}

func (s *Scheduler) runTask() {
	log.Println("[INFO] running drift analysis")
	res, err := s.Runner.Run(s.StartYear, s.EndYear)
	if err != nil {
		log.Printf("[ERROR] drift run: %v", err)
		return
	}

	summary := report.FormatDriftReport(res, s.StartYear, s.EndYear)
	fmt.Println(summary)

	if s.Notifier != nil {
		if err := s.Notifier.SendWithRetry(s.Ctx, summary, 3); err != nil {
			log.Printf("[ERROR] send notification: %v", err)
		}
	}
}
