// Package alert holds the pure trigger-condition evaluator.
package alert

import "stockwatch/internal/model"

// SkipReason explains why an alert was not evaluated to a trigger.
type SkipReason string

const (
	// ReasonNoTarget means a price alert has no target price. Such an
	// alert never triggers; a zero-threshold fallback would fire at
	// unreachable prices and silently disable the alert instead.
	ReasonNoTarget SkipReason = "no target price"
	// ReasonUnsupported marks volume alerts, which cannot be evaluated
	// because the quote source provides no volume field.
	ReasonUnsupported SkipReason = "volume alerts unsupported by quote source"
	// ReasonUnknownKind marks an alert type outside the known set.
	ReasonUnknownKind SkipReason = "unknown alert type"
)

// Decision is the outcome of evaluating one alert against one quote.
// A skipped alert has Triggered=false and a non-empty Reason.
type Decision struct {
	Triggered bool
	Reason    SkipReason
}

// Evaluate applies the alert's condition to the quote. A single sample
// crossing the threshold is sufficient; equality triggers.
func Evaluate(a *model.Alert, q *model.Quote) Decision {
	switch a.Type {
	case model.AlertTypePriceUpper:
		if a.Condition.TargetPrice == nil {
			return Decision{Reason: ReasonNoTarget}
		}
		return Decision{Triggered: q.CurrentPrice >= *a.Condition.TargetPrice}
	case model.AlertTypePriceLower:
		if a.Condition.TargetPrice == nil {
			return Decision{Reason: ReasonNoTarget}
		}
		return Decision{Triggered: q.CurrentPrice <= *a.Condition.TargetPrice}
	case model.AlertTypeVolume:
		return Decision{Reason: ReasonUnsupported}
	default:
		return Decision{Reason: ReasonUnknownKind}
	}
}
