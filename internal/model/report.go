package model

import "time"

// NotifyResult is the outcome of the notify+commit sequence for one
// triggered alert.
type NotifyResult struct {
	AlertID string
	UserID  string
	Symbol  string
	Success bool
	Reason  string
}

// ScanReport summarizes one complete pass of the alert scan pipeline.
type ScanReport struct {
	StartedAt       time.Time
	FinishedAt      time.Time
	AlertsChecked   int
	SymbolsFetched  int
	AlertsTriggered int
	Results         []NotifyResult
}

// Failures counts the notify-stage results that did not succeed.
func (r *ScanReport) Failures() int {
	n := 0
	for _, res := range r.Results {
		if !res.Success {
			n++
		}
	}
	return n
}
