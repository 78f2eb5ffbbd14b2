package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asterbot/internal/domain"
	"asterbot/internal/models"

	"github.com/rs/zerolog"
)

var ErrNoWizard = errors.New("wizard state is required")

// SessionService хранит состояние пользователя как один из вариантов idle, dialogue или wizard.
// Все переходы между вариантами выполняются здесь: одновременно активен только один мастер,
// новый мастер вытесняет предыдущий, сброс отменяет таймер бездействия.
type SessionService struct {
	stateRepo domain.StateRepository
	timers    *IdleTimers
	logger    *zerolog.Logger
	now       func() time.Time
}

// NewSessionService создает сервис. timers может быть nil, если таймер бездействия не нужен.
func NewSessionService(stateRepo domain.StateRepository, timers *IdleTimers, logger *zerolog.Logger) *SessionService {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &SessionService{
		stateRepo: stateRepo,
		timers:    timers,
		logger:    logger,
		now:       time.Now,
	}
}

// Get возвращает состояние; отсутствующее состояние считается idle.
func (s *SessionService) Get(ctx context.Context, userID int64) (*models.UserState, error) {
	state, err := s.stateRepo.GetState(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get user state")
		return nil, err
	}
	if state == nil {
		return models.NewIdleState(userID), nil
	}
	return state, nil
}

// StartDialogue открывает диалог подбора с пустым буфером.
func (s *SessionService) StartDialogue(ctx context.Context, userID int64) error {
	state, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	s.logAbandoned(userID, state, models.SessionDialogue)

	state.Kind = models.SessionDialogue
	state.Dialogue = []models.DialogueMessage{}
	state.Wizard = nil
	return s.save(ctx, state)
}

// SaveDialogue сохраняет буфер после хода. nil буфер закрывает диалог.
func (s *SessionService) SaveDialogue(ctx context.Context, userID int64, buffer []models.DialogueMessage) error {
	state, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	state.Wizard = nil
	if buffer == nil {
		state.Kind = models.SessionIdle
		state.Dialogue = nil
	} else {
		state.Kind = models.SessionDialogue
		state.Dialogue = buffer
	}
	return s.save(ctx, state)
}

// StartWizard делает мастер активным. Незавершенный мастер или диалог теряются.
func (s *SessionService) StartWizard(ctx context.Context, userID int64, wizard *models.WizardState) error {
	if wizard == nil {
		return ErrNoWizard
	}
	state, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	s.logAbandoned(userID, state, models.SessionWizard)
	if state.InDialogue() {
		s.CancelIdle(userID)
	}

	state.Kind = models.SessionWizard
	state.Dialogue = nil
	state.Wizard = wizard
	return s.save(ctx, state)
}

// SaveWizard сохраняет курсор активного мастера после шага.
func (s *SessionService) SaveWizard(ctx context.Context, userID int64, wizard *models.WizardState) error {
	if wizard == nil {
		return ErrNoWizard
	}
	state, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	state.Kind = models.SessionWizard
	state.Dialogue = nil
	state.Wizard = wizard
	return s.save(ctx, state)
}

// SetBrowse сохраняет курсор каталога, не трогая вариант состояния.
func (s *SessionService) SetBrowse(ctx context.Context, userID int64, browse *models.BrowseState) error {
	state, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	state.Browse = browse
	return s.save(ctx, state)
}

// Reset возвращает пользователя в idle: собранные поля и буфер отбрасываются,
// таймер бездействия отменяется. Курсор каталога сохраняется.
func (s *SessionService) Reset(ctx context.Context, userID int64) error {
	s.CancelIdle(userID)

	state, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if state.Browse == nil {
		if err := s.stateRepo.ClearState(ctx, userID); err != nil {
			return fmt.Errorf("failed to clear state: %w", err)
		}
		return nil
	}

	state.Kind = models.SessionIdle
	state.Dialogue = nil
	state.Wizard = nil
	return s.save(ctx, state)
}

func (s *SessionService) Allow(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	return s.stateRepo.CheckRateLimit(ctx, userID, limit, window)
}

// ArmIdle заводит таймер бездействия заново.
func (s *SessionService) ArmIdle(userID int64, fire func()) {
	if s.timers == nil {
		return
	}
	s.timers.Arm(userID, fire)
}

func (s *SessionService) CancelIdle(userID int64) {
	if s.timers == nil {
		return
	}
	s.timers.Cancel(userID)
}

func (s *SessionService) save(ctx context.Context, state *models.UserState) error {
	state.UpdatedAt = s.now().UTC()
	if err := s.stateRepo.SetState(ctx, state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (s *SessionService) logAbandoned(userID int64, state *models.UserState, next models.SessionKind) {
	switch {
	case state.InWizard(""):
		s.logger.Info().
			Int64("user_id", userID).
			Str("wizard", state.Wizard.Kind).
			Int("step", state.Wizard.Step).
			Str("next", string(next)).
			Msg("wizard abandoned")
	case state.InDialogue() && next != models.SessionDialogue:
		s.logger.Info().
			Int64("user_id", userID).
			Int("messages", len(state.Dialogue)).
			Msg("dialogue abandoned")
	}
}
