package repository

import (
	"context"
	"testing"
	"time"

	"asterbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateRepository(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		state := &models.UserState{UserID: 123, Kind: models.SessionDialogue}
		require.NoError(t, repo.SetState(ctx, state))

		got, err := repo.GetState(ctx, 123)
		require.NoError(t, err)
		assert.Equal(t, state, got)
	})

	t.Run("StoredCopyIsIsolated", func(t *testing.T) {
		state := &models.UserState{UserID: 7, Kind: models.SessionWizard, Wizard: &models.WizardState{Kind: "ad"}}
		require.NoError(t, repo.SetState(ctx, state))
		state.Wizard.SetField("title", "changed")

		got, err := repo.GetState(ctx, 7)
		require.NoError(t, err)
		assert.Empty(t, got.Wizard.Field("title"))

		got.Kind = models.SessionIdle
		again, _ := repo.GetState(ctx, 7)
		assert.Equal(t, models.SessionWizard, again.Kind)
	})

	t.Run("Expiry", func(t *testing.T) {
		require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 8}))
		now = now.Add(2 * time.Hour)

		got, err := repo.GetState(ctx, 8)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearState", func(t *testing.T) {
		require.NoError(t, repo.ClearState(ctx, 123))
		got, _ := repo.GetState(ctx, 123)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		userID := int64(456)
		allowed, _ := repo.CheckRateLimit(ctx, userID, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, userID, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, userID, 2, time.Second)
		assert.False(t, allowed)

		now = now.Add(time.Second + time.Millisecond)
		allowed, _ = repo.CheckRateLimit(ctx, userID, 2, time.Second)
		assert.True(t, allowed)
	})
}
