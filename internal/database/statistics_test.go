package database

import (
	"context"
	"testing"
	"time"

	"asterbot/internal/filters"
	"asterbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatistics(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)
	withClock(db, now)

	_, _ = db.CreateUser(ctx, &models.User{ID: 1})
	_, _ = db.CreateUser(ctx, &models.User{ID: 2})

	require.NoError(t, db.IncrementStat(ctx, StatMessagesSent, now))
	require.NoError(t, db.IncrementStat(ctx, StatMessagesSent, now))
	require.NoError(t, db.IncrementStat(ctx, StatLinksSent, now))
	require.NoError(t, db.IncrementStat(ctx, StatMessagesSent, now.AddDate(0, 0, 1)))

	t.Run("Daily", func(t *testing.T) {
		day, err := db.GetDailyStatistics(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, "2024-06-10", day.Date)
		assert.Equal(t, 2, day.MessagesSent)
		assert.Equal(t, 1, day.LinksSent)
		assert.Equal(t, 2, day.TotalUsers)
		assert.Equal(t, 2, day.NewUsers)

		_, err = db.GetDailyStatistics(ctx, now.AddDate(0, 0, -1))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Selection", func(t *testing.T) {
		stats, err := db.GetSelectionStats(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, models.SelectionStats{TotalUsers: 2, NewUsersToday: 2, MessagesSent: 3, LinksSent: 1}, *stats)

		stats, err = db.GetSelectionStats(ctx, now.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Zero(t, stats.NewUsersToday)
	})

	t.Run("UnknownCounter", func(t *testing.T) {
		assert.Error(t, db.IncrementStat(ctx, "users; DROP TABLE users", now))
	})

	t.Run("Sales", func(t *testing.T) {
		require.NoError(t, db.CreateAd(ctx, newTestAd("Camry")))

		stats, err := db.GetSalesStats(ctx, now.AddDate(0, 0, -7))
		require.NoError(t, err)
		assert.Equal(t, models.SalesStats{TotalUsers: 2, ActiveUsers: 2, Ads: 1}, *stats)
	})
}

func TestUserRequests(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.LatestPreferences(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.SaveUserRequest(ctx, 1, filters.Set{"body": "sedan"}))
	require.NoError(t, db.SaveUserRequest(ctx, 1, filters.Set{"body": "suv", "priceTo": int64(6000000)}))

	prefs, err := db.LatestPreferences(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "suv", prefs["body"])
	assert.EqualValues(t, 6000000, prefs["priceTo"])

	requests, err := db.ListUserRequests(ctx, 1)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "sedan", requests[0].Preferences["body"])
}
