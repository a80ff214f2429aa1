package model

import (
	"fmt"
	"strings"
	"time"
)

// AlertType is the closed set of alert kinds.
type AlertType string

const (
	AlertTypePriceUpper AlertType = "price_upper"
	AlertTypePriceLower AlertType = "price_lower"
	AlertTypeVolume     AlertType = "volume"
)

// DefaultVolumeMultiplier is applied when a volume alert is created without one.
const DefaultVolumeMultiplier = 2.0

// AlertCondition holds the kind-gated parameters. Which field applies is
// determined by the alert type; the other one is absent.
type AlertCondition struct {
	TargetPrice      *float64 `bson:"targetPrice,omitempty" json:"targetPrice,omitempty"`
	VolumeMultiplier *float64 `bson:"volumeMultiplier,omitempty" json:"volumeMultiplier,omitempty"`
}

// Alert is a user-owned rule that watches one symbol and fires a notification
// when its condition is met. Triggering is one-way: it sets IsTriggered,
// clears IsActive and stamps TriggeredAt; the alert does not re-arm.
type Alert struct {
	ID          string         `bson:"_id,omitempty" json:"id"`
	UserID      string         `bson:"userId" json:"userId"`
	Symbol      string         `bson:"symbol" json:"symbol"`
	Company     string         `bson:"company" json:"company"`
	Type        AlertType      `bson:"alertType" json:"alertType"`
	Condition   AlertCondition `bson:"condition" json:"condition"`
	IsActive    bool           `bson:"isActive" json:"isActive"`
	IsTriggered bool           `bson:"isTriggered" json:"isTriggered"`
	TriggeredAt *time.Time     `bson:"triggeredAt,omitempty" json:"triggeredAt,omitempty"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// Eligible reports whether the alert is a candidate for a scan pass.
func (a *Alert) Eligible() bool {
	return a.IsActive && !a.IsTriggered
}

// Normalize uppercases the symbol and fills the volume multiplier default.
func (a *Alert) Normalize() {
	a.Symbol = strings.ToUpper(strings.TrimSpace(a.Symbol))
	if a.Type == AlertTypeVolume && a.Condition.VolumeMultiplier == nil {
		m := DefaultVolumeMultiplier
		a.Condition.VolumeMultiplier = &m
	}
}

// Validate checks the kind-gated condition invariant.
func (a *Alert) Validate() error {
	if a.UserID == "" {
		return fmt.Errorf("alert: user id is required")
	}
	if a.Symbol == "" {
		return fmt.Errorf("alert: symbol is required")
	}
	switch a.Type {
	case AlertTypePriceUpper, AlertTypePriceLower:
		if a.Condition.TargetPrice == nil || *a.Condition.TargetPrice <= 0 {
			return fmt.Errorf("alert: positive target price is required for %s alerts", a.Type)
		}
	case AlertTypeVolume:
		if a.Condition.VolumeMultiplier == nil || *a.Condition.VolumeMultiplier <= 0 {
			return fmt.Errorf("alert: positive volume multiplier is required for volume alerts")
		}
	default:
		return fmt.Errorf("alert: unknown alert type %q", a.Type)
	}
	return nil
}
