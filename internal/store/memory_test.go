package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stockwatch/internal/model"
)

func newPriceAlert(userID, symbol string, target float64) *model.Alert {
	return &model.Alert{
		UserID:    userID,
		Symbol:    symbol,
		Company:   symbol + " Inc",
		Type:      model.AlertTypePriceUpper,
		Condition: model.AlertCondition{TargetPrice: &target},
	}
}

func TestCreateNormalizesAndArms(t *testing.T) {
	s := NewMemoryAlertStore()
	a := newPriceAlert("u1", "aapl ", 150)
	require.NoError(t, s.Create(context.Background(), a))

	require.NotEmpty(t, a.ID)
	require.Equal(t, "AAPL", a.Symbol)
	require.True(t, a.IsActive)
	require.False(t, a.IsTriggered)
	require.Nil(t, a.TriggeredAt)
}

func TestCreateRejectsInvalidCondition(t *testing.T) {
	s := NewMemoryAlertStore()
	a := newPriceAlert("u1", "AAPL", 150)
	a.Condition.TargetPrice = nil
	require.Error(t, s.Create(context.Background(), a))

	v := &model.Alert{UserID: "u1", Symbol: "AAPL", Company: "Apple", Type: model.AlertTypeVolume}
	require.NoError(t, s.Create(context.Background(), v), "volume multiplier defaults")
	require.NotNil(t, v.Condition.VolumeMultiplier)
	require.Equal(t, model.DefaultVolumeMultiplier, *v.Condition.VolumeMultiplier)
}

func TestListEligibleExcludesTriggeredAndInactive(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAlertStore()

	armed := newPriceAlert("u1", "AAPL", 150)
	require.NoError(t, s.Create(ctx, armed))
	fired := newPriceAlert("u1", "MSFT", 400)
	require.NoError(t, s.Create(ctx, fired))
	_, err := s.MarkTriggered(ctx, fired.ID)
	require.NoError(t, err)

	eligible, err := s.ListEligible(ctx)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, armed.ID, eligible[0].ID)
}

func TestMarkTriggeredIsOneWayAndConditional(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAlertStore()
	a := newPriceAlert("u1", "AAPL", 150)
	require.NoError(t, s.Create(ctx, a))

	updated, err := s.MarkTriggered(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, updated.IsTriggered)
	require.False(t, updated.IsActive)
	require.NotNil(t, updated.TriggeredAt)

	_, err = s.MarkTriggered(ctx, a.ID)
	require.ErrorIs(t, err, ErrAlreadyTriggered)

	_, err = s.MarkTriggered(ctx, "missing-id")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListBySymbolNormalizesCase(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAlertStore()
	require.NoError(t, s.Create(ctx, newPriceAlert("u1", "AAPL", 150)))
	require.NoError(t, s.Create(ctx, newPriceAlert("u1", "MSFT", 400)))
	require.NoError(t, s.Create(ctx, newPriceAlert("u2", "AAPL", 155)))

	got, err := s.ListBySymbol(ctx, "u1", "aapl")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "AAPL", got[0].Symbol)

	mine, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
}

func TestMemoryUserStoreGetByID(t *testing.T) {
	s := NewMemoryUserStore(model.User{ID: "u1", Email: "u1@example.com", Name: "Alice"})

	u, err := s.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "u1@example.com", u.Email)

	_, err = s.GetByID(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}
