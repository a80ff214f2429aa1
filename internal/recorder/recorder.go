package recorder

import (
	"time"

	"stockwatch/internal/model"
)

// TriggerEvent records the outcome of one triggered alert's notify+commit
// sequence.
type TriggerEvent struct {
	AlertID      string
	UserID       string
	Symbol       string
	AlertType    string
	CurrentPrice float64
	TargetPrice  float64
	TriggeredAt  time.Time
	Success      bool
	Reason       string
}

// Recorder persists scan history for dashboards and later analysis.
// Recording is best effort: the pipeline logs recorder failures but never
// fails a pass over them.
type Recorder interface {
	RecordScan(report *model.ScanReport) error
	RecordTrigger(evt *TriggerEvent) error
	Close() error
}
