package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"stockwatch/internal/scanner"
)

// Scheduler runs the alert scan on a cron cadence. It also exposes RunNow
// for the on-demand trigger surface.
type Scheduler struct {
	Cron        *cron.Cron
	Scanner     *scanner.Scanner
	Ctx         context.Context
	ScanTimeout time.Duration

	log zerolog.Logger
}

// New creates a Scheduler whose cron expressions carry a seconds field and
// are evaluated in the given location (market hours are wall-clock bound).
func New(ctx context.Context, sc *scanner.Scanner, loc *time.Location, scanTimeout time.Duration, logger zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if scanTimeout <= 0 {
		scanTimeout = 5 * time.Minute
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Scanner:     sc,
		Ctx:         ctx,
		ScanTimeout: scanTimeout,
		log:         logger.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the scan task under the given cron spec.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes a scan pass immediately (on-demand trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	ctx, cancel := context.WithTimeout(s.Ctx, s.ScanTimeout)
	defer cancel()

	report, err := s.Scanner.Run(ctx)
	if errors.Is(err, scanner.ErrScanInFlight) {
		s.log.Warn().Msg("previous scan still running, skipping this tick")
		return
	}
	if err != nil {
		// Stage-level failure; the next cron tick is the retry.
		s.log.Error().Err(err).Msg("scan pass aborted")
		return
	}

	s.log.Info().
		Int("checked", report.AlertsChecked).
		Int("symbols", report.SymbolsFetched).
		Int("triggered", report.AlertsTriggered).
		Int("failures", report.Failures()).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("scan pass complete")
}
