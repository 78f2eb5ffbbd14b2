package repository

import (
	"context"
	"testing"
	"time"

	"asterbot/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStateRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisStateRepository(client, "selection", time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetWizardState", func(t *testing.T) {
		state := &models.UserState{
			UserID: 123,
			Kind:   models.SessionWizard,
			Wizard: &models.WizardState{Kind: "ad", Step: 2, Fields: map[string]string{"title": "Camry"}},
		}

		require.NoError(t, repo.SetState(ctx, state))
		assert.True(t, s.Exists("selection:session:123"))
		assert.Equal(t, time.Hour, s.TTL("selection:session:123"))

		got, err := repo.GetState(ctx, 123)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.InWizard("ad"))
		assert.Equal(t, 2, got.Wizard.Step)
		assert.Equal(t, "Camry", got.Wizard.Field("title"))
	})

	t.Run("DialogueSurvivesRoundTrip", func(t *testing.T) {
		state := &models.UserState{
			UserID:   124,
			Kind:     models.SessionDialogue,
			Dialogue: []models.DialogueMessage{{Role: models.RoleUser, Content: "седан до 6 млн"}},
		}
		require.NoError(t, repo.SetState(ctx, state))

		got, err := repo.GetState(ctx, 124)
		require.NoError(t, err)
		assert.Equal(t, state.Dialogue, got.Dialogue)
	})

	t.Run("PrefixIsolatesBots", func(t *testing.T) {
		sales := NewRedisStateRepository(client, "sales", time.Hour)
		got, err := sales.GetState(ctx, 123)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("GetNonExistentState", func(t *testing.T) {
		got, err := repo.GetState(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearState", func(t *testing.T) {
		require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 456, Kind: models.SessionDialogue}))
		require.NoError(t, repo.ClearState(ctx, 456))

		got, err := repo.GetState(ctx, 456)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("CorruptedState", func(t *testing.T) {
		require.NoError(t, s.Set("selection:session:500", "{not json"))
		_, err := repo.GetState(ctx, 500)
		assert.Error(t, err)
	})

	t.Run("RateLimit", func(t *testing.T) {
		userID := int64(789)
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, window, s.TTL("selection:rate:789"))

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisStateRepository(nil, "x", time.Hour)
		_, err := repo.GetState(ctx, 123)
		assert.Error(t, err)
		assert.ErrorIs(t, err, errNoClient)
		assert.Error(t, Ping(ctx, nil))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("ServerDown", func(t *testing.T) {
		s2, err := miniredis.Run()
		require.NoError(t, err)
		c2 := redis.NewClient(&redis.Options{Addr: s2.Addr(), MaxRetries: -1})
		defer c2.Close()
		s2.Close()

		repo := NewRedisStateRepository(c2, "x", time.Hour)
		_, err = repo.GetState(ctx, 1)
		assert.Error(t, err)
		assert.Error(t, Ping(ctx, c2))
	})

	t.Run("Close", func(t *testing.T) {
		assert.NoError(t, Close(client))
		assert.NoError(t, Close(nil))
	})
}
