package model

import "time"

// Quote is a snapshot of a symbol's price at fetch time. It is never
// persisted; it lives for one scan pass and is discarded.
type Quote struct {
	Symbol        string
	CurrentPrice  float64
	Change        float64
	PercentChange float64
	High          float64
	Low           float64
	Open          float64
	PreviousClose float64
	FetchedAt     time.Time
}
