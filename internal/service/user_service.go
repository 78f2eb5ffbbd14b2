package service

import (
	"context"
	"errors"
	"fmt"

	"asterbot/internal/config"
	"asterbot/internal/database"
	"asterbot/internal/domain"
	"asterbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type UserService struct {
	repo        domain.UserRepository
	config      *config.Config
	logger      *zerolog.Logger
	adminsMap   map[int64]bool
	managersMap map[int64]bool
}

func NewUserService(repo domain.UserRepository, config *config.Config, logger *zerolog.Logger) *UserService {
	adminsMap := make(map[int64]bool)
	for _, id := range config.Admins {
		adminsMap[id] = true
	}

	managersMap := make(map[int64]bool)
	for _, id := range config.ManagerIDs() {
		managersMap[id] = true
	}

	return &UserService{
		repo:        repo,
		config:      config,
		logger:      logger,
		adminsMap:   adminsMap,
		managersMap: managersMap,
	}
}

func (s *UserService) IsAdmin(userID int64) bool {
	return s.adminsMap[userID]
}

// IsManager менеджеры получают заявки и обращения; администраторы тоже считаются менеджерами.
func (s *UserService) IsManager(userID int64) bool {
	return s.managersMap[userID] || s.adminsMap[userID]
}

func (s *UserService) AdminIDs() []int64 {
	return s.config.Admins
}

func (s *UserService) ManagerIDs() []int64 {
	return s.config.ManagerIDs()
}

// Register создает пользователя из профиля Telegram, если его еще нет.
// Возвращает сохраненную запись и признак того, что она создана сейчас.
func (s *UserService) Register(ctx context.Context, from *tgbotapi.User, status string) (*models.User, bool, error) {
	user := &models.User{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
		LastName:  from.LastName,
		Status:    status,
	}
	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, false, err
	}
	if !created {
		if err := s.repo.UpsertUser(ctx, user); err != nil {
			return nil, false, err
		}
	}

	stored, err := s.repo.GetUser(ctx, from.ID)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Info().Int64("user_id", from.ID).Str("status", stored.Status).Msg("user registered")
	}
	return stored, created, nil
}

// Find возвращает пользователя или nil, если он не зарегистрирован.
func (s *UserService) Find(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return user, nil
}

func (s *UserService) UpdateUserActivity(ctx context.Context, userID int64) error {
	return s.repo.TouchUser(ctx, userID)
}
