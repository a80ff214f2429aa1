// Package notifier delivers alert emails to users.
package notifier

import (
	"context"
	"time"
)

// Direction says which side of the target price the alert watches.
type Direction string

const (
	DirectionUpper Direction = "upper"
	DirectionLower Direction = "lower"
)

// PriceAlert carries everything needed to render one price-alert email.
type PriceAlert struct {
	Email        string
	Name         string
	Symbol       string
	Company      string
	CurrentPrice float64
	TargetPrice  float64
	Direction    Direction
	Timestamp    time.Time
}

// Notifier sends a formatted message for a triggered alert. A transport
// failure must surface as an error so the caller can record it without
// aborting the pass. Implementations do not retry; the next scan pass is
// the retry policy.
type Notifier interface {
	SendPriceAlert(ctx context.Context, alert PriceAlert) error
}
