package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockwatch/internal/model"
)

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer r.Close()

	now := time.Now()
	report := &model.ScanReport{
		StartedAt:       now.Add(-2 * time.Second),
		FinishedAt:      now,
		AlertsChecked:   5,
		SymbolsFetched:  3,
		AlertsTriggered: 2,
		Results: []model.NotifyResult{
			{AlertID: "a1", Symbol: "AAPL", Success: true},
			{AlertID: "a2", Symbol: "MSFT", Success: false, Reason: "send notification: timeout"},
		},
	}
	require.NoError(t, r.RecordScan(report))
	require.NoError(t, r.RecordTrigger(&TriggerEvent{
		AlertID:      "a1",
		UserID:       "u1",
		Symbol:       "AAPL",
		AlertType:    "price_upper",
		CurrentPrice: 160,
		TargetPrice:  150,
		Success:      true,
	}))

	var scans, failures int
	require.NoError(t, r.db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(notify_failures),0) FROM scan_history").Scan(&scans, &failures))
	require.Equal(t, 1, scans)
	require.Equal(t, 1, failures)

	var symbol string
	var success int
	require.NoError(t, r.db.QueryRow(
		"SELECT symbol, success FROM trigger_events WHERE alert_id = 'a1'").Scan(&symbol, &success))
	require.Equal(t, "AAPL", symbol)
	require.Equal(t, 1, success)
}

func TestSQLiteRecorderMigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	r1, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r1.Close())

	r2, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r2.Close())
}
