package database

import (
	"context"
	"testing"

	"asterbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	priceMax := int64(12_000_000)
	yearMin := 2018
	sub := &models.Subscription{UserID: 7, Model: "camry", PriceMax: &priceMax, YearMin: &yearMin}
	require.NoError(t, db.CreateSubscription(ctx, sub))
	require.NoError(t, db.CreateSubscription(ctx, &models.Subscription{UserID: 8}))

	t.Run("NilBoundsSurvive", func(t *testing.T) {
		subs, err := db.ListSubscriptions(ctx, 7)
		require.NoError(t, err)
		require.Len(t, subs, 1)

		got := subs[0]
		assert.Equal(t, "camry", got.Model)
		assert.Nil(t, got.PriceMin)
		require.NotNil(t, got.PriceMax)
		assert.Equal(t, priceMax, *got.PriceMax)
		require.NotNil(t, got.YearMin)
		assert.Equal(t, 2018, *got.YearMin)
		assert.Nil(t, got.YearMax)
	})

	t.Run("ListAll", func(t *testing.T) {
		subs, err := db.ListAllSubscriptions(ctx)
		require.NoError(t, err)
		assert.Len(t, subs, 2)
	})

	t.Run("DeleteScopedToOwner", func(t *testing.T) {
		assert.ErrorIs(t, db.DeleteSubscription(ctx, sub.ID, 8), ErrNotFound)

		require.NoError(t, db.DeleteSubscription(ctx, sub.ID, 7))
		subs, err := db.ListSubscriptions(ctx, 7)
		require.NoError(t, err)
		assert.Empty(t, subs)

		assert.ErrorIs(t, db.DeleteSubscription(ctx, sub.ID, 7), ErrNotFound)
	})
}
