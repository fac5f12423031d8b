package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"DriftSentinel/internal/cache"
	"DriftSentinel/internal/calculator"
	"DriftSentinel/internal/config"
	"DriftSentinel/internal/marketdata"
	"DriftSentinel/internal/notifier"
	"DriftSentinel/internal/pipeline"
	"DriftSentinel/internal/report"
	"DriftSentinel/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] DriftSentinel starting...")

	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] no .env file, relying on environment")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init bar source
	alpaca := marketdata.NewAlpacaSource(cfg.Alpaca.KeyID, cfg.Alpaca.SecretKey, cfg.Proxy)
	if cfg.Alpaca.DataURL != "" {
		alpaca.DataURL = cfg.Alpaca.DataURL
	}
	if cfg.Alpaca.CalendarURL != "" {
		alpaca.CalendarURL = cfg.Alpaca.CalendarURL
	}
	var source marketdata.BarSource = alpaca

	// Optional bar cache
	if cfg.Cache.SQLitePath != "" {
		sc, err := cache.NewSQLiteCache(cfg.Cache.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite cache failed, fetching uncached: %v", err)
		} else {
			defer sc.Close()
			source = cache.NewCachedSource(alpaca, sc)
		}
	}
	log.Printf("[INFO] bar source: %s", source.Name())

	tf, _ := marketdata.ParseTimeframe(cfg.Analysis.Timeframe)
	mode, _ := pipeline.ParseMode(cfg.Analysis.Mode)
	conv, _ := calculator.ParseCloseConvention(cfg.Analysis.CloseConvention)

	runner, err := pipeline.NewRunner(source, cfg.Analysis.Ticker, tf, mode, conv)
	if err != nil {
		log.Fatalf("[FATAL] init runner: %v", err)
	}

	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	startYear, endYear := cfg.Analysis.StartYear, cfg.Analysis.EndYear

	// One-shot mode
	if cfg.Schedule.Cron == "" {
		res, err := runner.Run(startYear, endYear)
		if err != nil {
			log.Fatalf("[FATAL] drift run: %v", err)
		}
		summary := report.FormatDriftReport(res, startYear, endYear)
		fmt.Println(summary)
		if cfg.Output.CSVDir != "" {
			if err := writeCSVs(cfg.Output.CSVDir, res); err != nil {
				log.Printf("[ERROR] write csv: %v", err)
			}
		}
		if tn != nil {
			if err := tn.SendWithRetry(context.Background(), summary, 3); err != nil {
				log.Printf("[ERROR] send notification: %v", err)
			}
		}
		return
	}

	// Scheduled mode
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, runner, tn, startYear, endYear)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing analysis now")
		go sched.RunNow()
	}

	log.Println("[INFO] DriftSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] DriftSentinel stopped")
}

// writeCSVs exports the growth and drift series for downstream plotting.
func writeCSVs(dir string, res *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	files := map[string]string{
		"intraday_growth.csv":  report.RenderGrowthCSV(res.IntradayGrowth),
		"overnight_growth.csv": report.RenderGrowthCSV(res.OvernightGrowth),
		"intraday_drift.csv":   report.RenderDriftCSV(res.Intraday),
		"overnight_drift.csv":  report.RenderDriftCSV(res.Overnight),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	log.Printf("[INFO] csv output written to %s", dir)
	return nil
}
