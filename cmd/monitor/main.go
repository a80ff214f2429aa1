package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockwatch/internal/config"
	"stockwatch/internal/logging"
	"stockwatch/internal/notifier"
	"stockwatch/internal/quote"
	"stockwatch/internal/recorder"
	"stockwatch/internal/scanner"
	"stockwatch/internal/scheduler"
	"stockwatch/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := logging.New(logging.Options{Level: "info"})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		FilePath:   cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	log.Info().Msg("stockwatch monitor starting")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mongo stores
	client, err := store.Connect(ctx, cfg.Mongo.URI, time.Duration(cfg.Mongo.ConnectTimeoutSec)*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.Mongo.Database)
	if err := store.EnsureAlertIndexes(ctx, db); err != nil {
		log.Warn().Err(err).Msg("ensure alert indexes")
	}
	alerts := store.NewMongoAlertStore(db)
	users := store.NewMongoUserStore(db)

	// Quote fetcher with a short-lived cache in front of Finnhub
	var fetcher quote.Fetcher = quote.NewFinnhubFetcher(quote.FinnhubOptions{
		APIKey:         cfg.Finnhub.APIKey,
		BaseURL:        cfg.Finnhub.BaseURL,
		Timeout:        time.Duration(cfg.Finnhub.TimeoutSec) * time.Second,
		RequestsPerSec: cfg.Finnhub.RequestsPerSec,
		Burst:          cfg.Finnhub.Burst,
	})
	if cfg.Finnhub.CacheTTLSec > 0 {
		fetcher = quote.NewCachedFetcher(fetcher, time.Duration(cfg.Finnhub.CacheTTLSec)*time.Second)
	}
	log.Info().Str("source", fetcher.Name()).Msg("quote source ready")

	// Notifier
	mailer := notifier.NewSendGridNotifier(cfg.SendGrid.APIKey, cfg.SendGrid.FromName, cfg.SendGrid.FromEmail)

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
			log.Info().Str("path", cfg.Database.SQLitePath).Msg("sqlite recorder opened")
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Scanner + scheduler
	sc := scanner.New(alerts, users, fetcher, mailer, rec, log)
	sc.BatchLimit = cfg.Finnhub.MaxConcurrency

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Schedule.Timezone).Msg("load timezone")
	}
	sched := scheduler.New(ctx, sc, loc, time.Duration(cfg.Schedule.ScanTimeoutSec)*time.Second, log)
	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing scan now")
		go sched.RunNow()
	}

	// SIGUSR1 is the on-demand trigger surface.
	runCh := make(chan os.Signal, 1)
	signal.Notify(runCh, syscall.SIGUSR1)
	go func() {
		for range runCh {
			log.Info().Msg("on-demand trigger received")
			sched.RunNow()
		}
	}()

	log.Info().Str("cron", cfg.Schedule.ScanCron).Str("timezone", cfg.Schedule.Timezone).
		Msg("stockwatch monitor is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("stockwatch monitor stopped")
}
