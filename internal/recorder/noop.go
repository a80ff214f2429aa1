package recorder

import "stockwatch/internal/model"

// NoopRecorder discards all records. Used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScan(*model.ScanReport) error { return nil }
func (n *NoopRecorder) RecordTrigger(*TriggerEvent) error  { return nil }
func (n *NoopRecorder) Close() error                       { return nil }
