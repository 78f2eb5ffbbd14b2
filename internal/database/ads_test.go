package database

import (
	"context"
	"testing"
	"time"

	"asterbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAd(title string) *models.Ad {
	return &models.Ad{
		Title:            title,
		Model:            "Camry",
		Year:             2020,
		Price:            10_000_000,
		Description:      "Один владелец",
		Photos:           []string{"p1", "p2"},
		InspectionPhotos: []string{"i1"},
	}
}

func TestAds(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ad := newTestAd("Toyota Camry 70")
	require.NoError(t, db.CreateAd(ctx, ad))
	require.NotZero(t, ad.ID)

	t.Run("GetAd", func(t *testing.T) {
		got, err := db.GetAd(ctx, ad.ID)
		require.NoError(t, err)
		assert.Equal(t, "Toyota Camry 70", got.Title)
		assert.Equal(t, []string{"p1", "p2"}, got.Photos)
		assert.Equal(t, []string{"i1"}, got.InspectionPhotos)
		assert.Empty(t, got.ThicknessPhotos)
		assert.NotNil(t, got.ThicknessPhotos)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := db.GetAd(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListAndCount", func(t *testing.T) {
		require.NoError(t, db.CreateAd(ctx, newTestAd("Kia K5")))

		ads, err := db.ListAds(ctx)
		require.NoError(t, err)
		require.Len(t, ads, 2)
		assert.Equal(t, ad.ID, ads[0].ID)

		n, err := db.CountAds(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = db.CountAdsSince(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestFavorites(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ad := newTestAd("Toyota Camry 70")
	require.NoError(t, db.CreateAd(ctx, ad))
	other := newTestAd("Kia K5")
	require.NoError(t, db.CreateAd(ctx, other))

	t.Run("AddIsIdempotent", func(t *testing.T) {
		require.NoError(t, db.AddFavorite(ctx, 1, ad.ID))
		require.NoError(t, db.AddFavorite(ctx, 1, ad.ID))

		fav, err := db.IsFavorite(ctx, 1, ad.ID)
		require.NoError(t, err)
		assert.True(t, fav)

		ads, err := db.ListFavoriteAds(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, ads, 1)
	})

	t.Run("RemoveIsIdempotent", func(t *testing.T) {
		require.NoError(t, db.RemoveFavorite(ctx, 1, ad.ID))
		require.NoError(t, db.RemoveFavorite(ctx, 1, ad.ID))

		fav, err := db.IsFavorite(ctx, 1, ad.ID)
		require.NoError(t, err)
		assert.False(t, fav)
	})

	t.Run("DeleteAdRemovesFavorites", func(t *testing.T) {
		require.NoError(t, db.AddFavorite(ctx, 1, other.ID))
		require.NoError(t, db.AddFavorite(ctx, 2, other.ID))

		require.NoError(t, db.DeleteAd(ctx, other.ID))

		for _, userID := range []int64{1, 2} {
			ads, err := db.ListFavoriteAds(ctx, userID)
			require.NoError(t, err)
			assert.Empty(t, ads)
		}
		_, err := db.GetAd(ctx, other.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteMissingAd", func(t *testing.T) {
		assert.ErrorIs(t, db.DeleteAd(ctx, 12345), ErrNotFound)
	})
}
