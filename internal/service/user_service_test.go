package service

import (
	"context"
	"testing"

	"asterbot/internal/config"
	"asterbot/internal/database"
	"asterbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, cfg *config.Config) (*UserService, *database.DB) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(config.DatabaseConfig{Path: ":memory:"}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserService(db, cfg, &logger), db
}

func TestUserService_Roles(t *testing.T) {
	t.Run("ManagersFallBackToAdmins", func(t *testing.T) {
		s, _ := newUserService(t, &config.Config{Admins: []int64{1}})
		assert.True(t, s.IsAdmin(1))
		assert.True(t, s.IsManager(1))
		assert.False(t, s.IsAdmin(2))
		assert.Equal(t, []int64{1}, s.ManagerIDs())
	})

	t.Run("ExplicitManagers", func(t *testing.T) {
		s, _ := newUserService(t, &config.Config{Admins: []int64{1}, Managers: []int64{5, 6}})
		assert.True(t, s.IsManager(5))
		assert.True(t, s.IsManager(1))
		assert.False(t, s.IsAdmin(5))
		assert.Equal(t, []int64{5, 6}, s.ManagerIDs())
		assert.Equal(t, []int64{1}, s.AdminIDs())
	})
}

func TestUserService_Register(t *testing.T) {
	s, db := newUserService(t, &config.Config{})
	ctx := context.Background()
	from := &tgbotapi.User{ID: 42, UserName: "aset", FirstName: "Асет"}

	user, created, err := s.Register(ctx, from, models.UserStatusApproved)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.UserStatusApproved, user.Status)

	require.NoError(t, db.UpdateUserContact(ctx, 42, models.Contact{Name: "Асет", Phone: "7700", City: "Алматы"}))

	from.UserName = "aset_new"
	user, created, err = s.Register(ctx, from, models.UserStatusPending)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "aset_new", user.Username)
	assert.Equal(t, models.UserStatusApproved, user.Status, "status of an existing user is kept")
	assert.True(t, user.HasContact())
}

func TestUserService_Find(t *testing.T) {
	s, _ := newUserService(t, &config.Config{})
	ctx := context.Background()

	user, err := s.Find(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, user)

	_, _, err = s.Register(ctx, &tgbotapi.User{ID: 7}, "")
	require.NoError(t, err)

	user, err = s.Find(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusPending, user.Status)
	assert.NoError(t, s.UpdateUserActivity(ctx, 7))
}
