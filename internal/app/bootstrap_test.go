package app

import (
	"context"
	"testing"

	"asterbot/internal/config"
	"asterbot/internal/database"
	"asterbot/internal/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSessions(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("MemoryOnly", func(t *testing.T) {
		client, sessions := InitSessions(ctx, &config.Config{}, "test", nil, &logger)
		assert.Nil(t, client)
		assert.Nil(t, RedisPinger(client))

		require.NoError(t, sessions.StartDialogue(ctx, 1))
		state, err := sessions.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), state.UserID)
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{Redis: config.RedisConfig{Address: mr.Addr()}}

		client, sessions := InitSessions(ctx, cfg, "test", nil, &logger)
		require.NotNil(t, client)
		t.Cleanup(func() { CloseRedis(client, &logger) })

		require.NoError(t, RedisPinger(client)(ctx))
		require.NoError(t, sessions.StartDialogue(ctx, 7))
		assert.NotEmpty(t, mr.Keys())
	})
}

func TestStartAPI(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(config.DatabaseConfig{Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	t.Run("Disabled", func(t *testing.T) {
		stop, err := StartAPI(&config.Config{}, config.KindSales, db, nil, &logger)
		require.NoError(t, err)
		assert.NotPanics(t, stop)
	})

	t.Run("GRPCOnly", func(t *testing.T) {
		cfg := &config.Config{API: config.APIConfig{
			Enabled: true,
			GRPC:    config.APIGRPCConfig{Enabled: true},
		}}
		stop, err := StartAPI(cfg, config.KindSales, db, nil, &logger)
		require.NoError(t, err)
		assert.NotPanics(t, stop)
	})
}

func TestSubscribeAudit(t *testing.T) {
	logger := zerolog.Nop()
	bus := events.NewEventBus()
	SubscribeAudit(bus, &logger, events.EventAdPublished)
	assert.NoError(t, bus.PublishJSON(events.EventAdPublished, events.AdEventPayload{AdID: 1}))
}
