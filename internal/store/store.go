// Package store holds the persistence contracts consumed by the scan
// pipeline and their MongoDB and in-memory implementations.
package store

import (
	"context"
	"errors"

	"stockwatch/internal/model"
)

var (
	// ErrNotFound means the requested document does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrAlreadyTriggered means a mark-triggered transition lost the race:
	// the alert exists but is no longer eligible.
	ErrAlreadyTriggered = errors.New("store: alert already triggered")
)

// AlertStore is the persistence contract for alert records.
type AlertStore interface {
	// Create validates, normalizes and stores a new alert.
	Create(ctx context.Context, a *model.Alert) error
	// ListEligible returns all alerts with isActive=true, isTriggered=false.
	ListEligible(ctx context.Context) ([]model.Alert, error)
	// ListByUser returns a user's alerts, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Alert, error)
	// ListBySymbol returns a user's alerts for one symbol, newest first.
	ListBySymbol(ctx context.Context, userID, symbol string) ([]model.Alert, error)
	// MarkTriggered atomically flips an eligible alert to triggered and
	// inactive, stamping triggeredAt. The update is conditional on the
	// alert still being eligible: a concurrent trigger yields
	// ErrAlreadyTriggered, a missing id yields ErrNotFound.
	MarkTriggered(ctx context.Context, alertID string) (*model.Alert, error)
}

// UserStore resolves notification recipients.
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*model.User, error)
}
