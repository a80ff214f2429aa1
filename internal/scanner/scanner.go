// Package scanner drives one full evaluation pass of the alert pipeline:
// load candidates, fetch quotes for the distinct symbols, evaluate each
// alert, and notify+commit each triggered alert in isolation.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"stockwatch/internal/alert"
	"stockwatch/internal/model"
	"stockwatch/internal/notifier"
	"stockwatch/internal/quote"
	"stockwatch/internal/recorder"
	"stockwatch/internal/store"
)

// ErrScanInFlight is returned when Run is called while another pass is
// still running. Overlapping passes could double-notify an alert before
// either commits; rejecting the overlap is the primary safeguard, the
// store's conditional commit is the backstop.
var ErrScanInFlight = errors.New("scanner: pass already in flight")

// Scanner runs scan passes against injected collaborators.
type Scanner struct {
	Alerts   store.AlertStore
	Users    store.UserStore
	Quotes   quote.Fetcher
	Notifier notifier.Notifier
	Recorder recorder.Recorder

	// BatchLimit bounds concurrent quote lookups within a pass.
	BatchLimit int

	log zerolog.Logger
	now func() time.Time
	mu  sync.Mutex
}

// New wires a Scanner. All collaborators are required except the recorder,
// which defaults to a noop.
func New(alerts store.AlertStore, users store.UserStore, quotes quote.Fetcher, n notifier.Notifier, rec recorder.Recorder, logger zerolog.Logger) *Scanner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scanner{
		Alerts:     alerts,
		Users:      users,
		Quotes:     quotes,
		Notifier:   n,
		Recorder:   rec,
		BatchLimit: 8,
		log:        logger.With().Str("component", "scanner").Logger(),
		now:        time.Now,
	}
}

type candidate struct {
	alert model.Alert
	quote model.Quote
}

// Run executes one pass. A store failure loading candidates aborts the
// pass; every later failure is contained to its own alert or symbol.
func (s *Scanner) Run(ctx context.Context) (*model.ScanReport, error) {
	if !s.mu.TryLock() {
		return nil, ErrScanInFlight
	}
	defer s.mu.Unlock()

	report := &model.ScanReport{StartedAt: s.now()}

	alerts, err := s.Alerts.ListEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("list eligible alerts: %w", err)
	}
	report.AlertsChecked = len(alerts)
	if len(alerts) == 0 {
		report.FinishedAt = s.now()
		s.log.Info().Msg("no active alerts to check")
		return report, nil
	}

	symbols := distinctSymbols(alerts)
	quotes := quote.Batch(ctx, s.Quotes, symbols, s.BatchLimit)
	report.SymbolsFetched = len(quotes)
	if missing := len(symbols) - len(quotes); missing > 0 {
		s.log.Warn().Int("missing", missing).Int("requested", len(symbols)).
			Msg("some symbols returned no quote; their alerts stay eligible")
	}

	var triggered []candidate
	for i := range alerts {
		a := alerts[i]
		q, ok := quotes[a.Symbol]
		if !ok {
			s.log.Debug().Str("symbol", a.Symbol).Str("alert_id", a.ID).
				Msg("no quote this pass, skipping alert")
			continue
		}
		d := alert.Evaluate(&a, &q)
		if d.Reason != "" {
			s.log.Debug().Str("alert_id", a.ID).Str("type", string(a.Type)).
				Str("reason", string(d.Reason)).Msg("alert skipped")
			continue
		}
		if d.Triggered {
			triggered = append(triggered, candidate{alert: a, quote: q})
		}
	}
	report.AlertsTriggered = len(triggered)

	for _, c := range triggered {
		res := s.notifyAndCommit(ctx, c)
		report.Results = append(report.Results, res)
		s.recordTrigger(c, res)
	}

	report.FinishedAt = s.now()
	if err := s.Recorder.RecordScan(report); err != nil {
		s.log.Error().Err(err).Msg("record scan")
	}
	return report, nil
}

// notifyAndCommit runs the per-alert sequence: resolve recipient, send the
// email, then flip the alert to triggered. The commit comes strictly after
// a successful send, so a send failure leaves the alert eligible for the
// next pass. Any failure is recorded and does not affect sibling alerts.
func (s *Scanner) notifyAndCommit(ctx context.Context, c candidate) model.NotifyResult {
	a := c.alert
	res := model.NotifyResult{AlertID: a.ID, UserID: a.UserID, Symbol: a.Symbol}

	user, err := s.Users.GetByID(ctx, a.UserID)
	if err != nil {
		res.Reason = fmt.Sprintf("resolve user: %v", err)
		s.log.Error().Err(err).Str("alert_id", a.ID).Str("user_id", a.UserID).
			Msg("recipient unresolvable, alert stays eligible")
		return res
	}

	direction := notifier.DirectionUpper
	if a.Type == model.AlertTypePriceLower {
		direction = notifier.DirectionLower
	}
	err = s.Notifier.SendPriceAlert(ctx, notifier.PriceAlert{
		Email:        user.Email,
		Name:         user.Name,
		Symbol:       a.Symbol,
		Company:      a.Company,
		CurrentPrice: c.quote.CurrentPrice,
		TargetPrice:  *a.Condition.TargetPrice,
		Direction:    direction,
		Timestamp:    s.now(),
	})
	if err != nil {
		res.Reason = fmt.Sprintf("send notification: %v", err)
		s.log.Error().Err(err).Str("alert_id", a.ID).Str("symbol", a.Symbol).
			Msg("notification failed, alert stays eligible")
		return res
	}

	if _, err := s.Alerts.MarkTriggered(ctx, a.ID); err != nil {
		if errors.Is(err, store.ErrAlreadyTriggered) {
			// Lost a race with a concurrent trigger after our send.
			res.Reason = "already triggered by a concurrent pass"
			s.log.Warn().Str("alert_id", a.ID).Msg("mark-triggered lost race")
			return res
		}
		res.Reason = fmt.Sprintf("mark triggered: %v", err)
		s.log.Error().Err(err).Str("alert_id", a.ID).Msg("mark-triggered failed")
		return res
	}

	res.Success = true
	s.log.Info().Str("alert_id", a.ID).Str("symbol", a.Symbol).
		Float64("current", c.quote.CurrentPrice).Float64("target", *a.Condition.TargetPrice).
		Msg("alert triggered and notified")
	return res
}

func (s *Scanner) recordTrigger(c candidate, res model.NotifyResult) {
	evt := &recorder.TriggerEvent{
		AlertID:      c.alert.ID,
		UserID:       c.alert.UserID,
		Symbol:       c.alert.Symbol,
		AlertType:    string(c.alert.Type),
		CurrentPrice: c.quote.CurrentPrice,
		TriggeredAt:  s.now(),
		Success:      res.Success,
		Reason:       res.Reason,
	}
	if c.alert.Condition.TargetPrice != nil {
		evt.TargetPrice = *c.alert.Condition.TargetPrice
	}
	if err := s.Recorder.RecordTrigger(evt); err != nil {
		s.log.Error().Err(err).Str("alert_id", c.alert.ID).Msg("record trigger")
	}
}

// distinctSymbols returns the sorted set of symbols the candidates
// reference. The quote stage fans out per distinct symbol, never per
// alert, so many alerts on one symbol cost a single lookup.
func distinctSymbols(alerts []model.Alert) []string {
	set := make(map[string]struct{}, len(alerts))
	for i := range alerts {
		set[alerts[i].Symbol] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
