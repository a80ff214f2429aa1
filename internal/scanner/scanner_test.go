package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"stockwatch/internal/model"
	"stockwatch/internal/notifier"
	"stockwatch/internal/quote"
	"stockwatch/internal/store"
)

type fakeNotifier struct {
	mu      sync.Mutex
	failFor map[string]bool // keyed by recipient email
	sent    []notifier.PriceAlert
}

func (f *fakeNotifier) SendPriceAlert(_ context.Context, a notifier.PriceAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[a.Email] {
		return errors.New("smtp transport unavailable")
	}
	f.sent = append(f.sent, a)
	return nil
}

func (f *fakeNotifier) sentTo(email string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.sent {
		if a.Email == email {
			n++
		}
	}
	return n
}

func mustCreate(t *testing.T, s store.AlertStore, userID, symbol string, typ model.AlertType, target float64) string {
	t.Helper()
	a := &model.Alert{
		UserID:  userID,
		Symbol:  symbol,
		Company: symbol + " Inc",
		Type:    typ,
	}
	if typ == model.AlertTypeVolume {
		m := 2.0
		a.Condition.VolumeMultiplier = &m
	} else {
		a.Condition.TargetPrice = &target
	}
	require.NoError(t, s.Create(context.Background(), a))
	return a.ID
}

func testUsers() *store.MemoryUserStore {
	return store.NewMemoryUserStore(
		model.User{ID: "u1", Email: "u1@example.com", Name: "Alice"},
		model.User{ID: "u2", Email: "u2@example.com", Name: "Bob"},
	)
}

func newTestScanner(alerts store.AlertStore, users store.UserStore, f quote.Fetcher, n notifier.Notifier) *Scanner {
	return New(alerts, users, f, n, nil, zerolog.Nop())
}

func TestRunFetchesEachDistinctSymbolOnce(t *testing.T) {
	alerts := store.NewMemoryAlertStore()
	mustCreate(t, alerts, "u1", "AAPL", model.AlertTypePriceUpper, 500)
	mustCreate(t, alerts, "u2", "AAPL", model.AlertTypePriceLower, 10)
	mustCreate(t, alerts, "u1", "aapl", model.AlertTypePriceUpper, 600)
	mustCreate(t, alerts, "u2", "MSFT", model.AlertTypePriceUpper, 900)

	f := &quote.MockFetcher{Quotes: map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", CurrentPrice: 160},
		"MSFT": {Symbol: "MSFT", CurrentPrice: 410},
	}}
	sc := newTestScanner(alerts, testUsers(), f, &fakeNotifier{})

	report, err := sc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, report.AlertsChecked)
	require.Equal(t, 2, report.SymbolsFetched)
	require.Equal(t, 1, f.Calls("AAPL"), "four alerts on AAPL must cost one lookup")
	require.Equal(t, 1, f.Calls("MSFT"))
}

func TestRunEmptyCandidateSet(t *testing.T) {
	sc := newTestScanner(store.NewMemoryAlertStore(), testUsers(), &quote.MockFetcher{}, &fakeNotifier{})

	report, err := sc.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, report.AlertsChecked)
	require.Zero(t, report.AlertsTriggered)
	require.Empty(t, report.Results)
}

func TestRunNotifyFailureIsIsolated(t *testing.T) {
	alerts := store.NewMemoryAlertStore()
	idA := mustCreate(t, alerts, "u1", "AAPL", model.AlertTypePriceUpper, 150)
	idB := mustCreate(t, alerts, "u2", "MSFT", model.AlertTypePriceUpper, 400)

	f := &quote.MockFetcher{Quotes: map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", CurrentPrice: 160},
		"MSFT": {Symbol: "MSFT", CurrentPrice: 410},
	}}
	n := &fakeNotifier{failFor: map[string]bool{"u1@example.com": true}}
	sc := newTestScanner(alerts, testUsers(), f, n)

	report, err := sc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.AlertsTriggered)
	require.Len(t, report.Results, 2)
	require.Equal(t, 1, report.Failures())

	a, _ := alerts.Get(idA)
	require.False(t, a.IsTriggered, "failed notification must leave the alert eligible")
	require.True(t, a.IsActive)
	require.Nil(t, a.TriggeredAt)

	b, _ := alerts.Get(idB)
	require.True(t, b.IsTriggered)
	require.False(t, b.IsActive)
	require.NotNil(t, b.TriggeredAt)
}

func TestRunSecondPassIsIdempotent(t *testing.T) {
	alerts := store.NewMemoryAlertStore()
	mustCreate(t, alerts, "u1", "AAPL", model.AlertTypePriceUpper, 150)

	f := &quote.MockFetcher{Quotes: map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", CurrentPrice: 160},
	}}
	n := &fakeNotifier{}
	sc := newTestScanner(alerts, testUsers(), f, n)

	first, err := sc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.AlertsTriggered)

	second, err := sc.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, second.AlertsChecked, "triggered alert must not be re-selected")
	require.Equal(t, 1, n.sentTo("u1@example.com"), "no second notification")
}

func TestRunMissingQuoteSkipsAlert(t *testing.T) {
	alerts := store.NewMemoryAlertStore()
	id := mustCreate(t, alerts, "u1", "NVDA", model.AlertTypePriceUpper, 100)

	f := &quote.MockFetcher{} // no quotes resolve
	n := &fakeNotifier{}
	sc := newTestScanner(alerts, testUsers(), f, n)

	report, err := sc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.AlertsChecked)
	require.Zero(t, report.SymbolsFetched)
	require.Zero(t, report.AlertsTriggered)
	require.Empty(t, n.sent)

	a, _ := alerts.Get(id)
	require.True(t, a.Eligible(), "alert must stay eligible for the next pass")
}

func TestRunVolumeAlertNeverTriggers(t *testing.T) {
	alerts := store.NewMemoryAlertStore()
	id := mustCreate(t, alerts, "u1", "AAPL", model.AlertTypeVolume, 0)

	f := &quote.MockFetcher{Quotes: map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", CurrentPrice: 1e9},
	}}
	n := &fakeNotifier{}
	sc := newTestScanner(alerts, testUsers(), f, n)

	report, err := sc.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, report.AlertsTriggered)
	require.Empty(t, n.sent)

	a, _ := alerts.Get(id)
	require.True(t, a.Eligible())
}

func TestRunEndToEndTwoAlertsOneSymbol(t *testing.T) {
	alerts := store.NewMemoryAlertStore()
	idX := mustCreate(t, alerts, "u1", "AAPL", model.AlertTypePriceUpper, 150)
	idY := mustCreate(t, alerts, "u2", "AAPL", model.AlertTypePriceLower, 100)

	f := &quote.MockFetcher{Quotes: map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", CurrentPrice: 160},
	}}
	n := &fakeNotifier{}
	sc := newTestScanner(alerts, testUsers(), f, n)

	report, err := sc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.AlertsChecked)
	require.Equal(t, 1, report.AlertsTriggered)

	require.Equal(t, 1, n.sentTo("u1@example.com"))
	require.Zero(t, n.sentTo("u2@example.com"))

	x, _ := alerts.Get(idX)
	require.True(t, x.IsTriggered)
	y, _ := alerts.Get(idY)
	require.True(t, y.Eligible())
}

func TestRunUnresolvableUserRecordedAsFailure(t *testing.T) {
	alerts := store.NewMemoryAlertStore()
	id := mustCreate(t, alerts, "ghost", "AAPL", model.AlertTypePriceUpper, 150)

	f := &quote.MockFetcher{Quotes: map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", CurrentPrice: 160},
	}}
	n := &fakeNotifier{}
	sc := newTestScanner(alerts, testUsers(), f, n)

	report, err := sc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.AlertsTriggered)
	require.Equal(t, 1, report.Failures())
	require.Empty(t, n.sent)

	a, _ := alerts.Get(id)
	require.True(t, a.Eligible(), "unresolvable recipient leaves the alert for the next pass")
}

func TestRunStoreFailureAbortsPass(t *testing.T) {
	alerts := store.NewMemoryAlertStore()
	alerts.ListErr = errors.New("connection reset")
	sc := newTestScanner(alerts, testUsers(), &quote.MockFetcher{}, &fakeNotifier{})

	_, err := sc.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "list eligible alerts")
}

// raceStore simulates a concurrent pass winning the mark-triggered race.
type raceStore struct {
	*store.MemoryAlertStore
}

func (r *raceStore) MarkTriggered(_ context.Context, alertID string) (*model.Alert, error) {
	return nil, store.ErrAlreadyTriggered
}

func TestRunLostCommitRaceIsRecorded(t *testing.T) {
	mem := store.NewMemoryAlertStore()
	mustCreate(t, mem, "u1", "AAPL", model.AlertTypePriceUpper, 150)

	f := &quote.MockFetcher{Quotes: map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", CurrentPrice: 160},
	}}
	sc := newTestScanner(&raceStore{mem}, testUsers(), f, &fakeNotifier{})

	report, err := sc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	require.False(t, report.Results[0].Success)
	require.Contains(t, report.Results[0].Reason, "concurrent")
}

// blockingNotifier parks the pass inside the notify stage so an overlap
// can be provoked.
type blockingNotifier struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingNotifier) SendPriceAlert(context.Context, notifier.PriceAlert) error {
	b.entered <- struct{}{}
	<-b.release
	return nil
}

func TestRunRejectsOverlappingPass(t *testing.T) {
	alerts := store.NewMemoryAlertStore()
	mustCreate(t, alerts, "u1", "AAPL", model.AlertTypePriceUpper, 150)

	f := &quote.MockFetcher{Quotes: map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", CurrentPrice: 160},
	}}
	n := &blockingNotifier{entered: make(chan struct{}), release: make(chan struct{})}
	sc := newTestScanner(alerts, testUsers(), f, n)

	done := make(chan error, 1)
	go func() {
		_, err := sc.Run(context.Background())
		done <- err
	}()

	<-n.entered
	_, err := sc.Run(context.Background())
	require.ErrorIs(t, err, ErrScanInFlight)

	close(n.release)
	require.NoError(t, <-done)
}
