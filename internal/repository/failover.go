package repository

import (
	"context"
	"sync/atomic"
	"time"

	"asterbot/internal/domain"
	"asterbot/internal/models"

	"github.com/rs/zerolog"
)

// recoveryInterval через сколько после сбоя снова пробовать основное хранилище.
const recoveryInterval = time.Minute

// FailoverStateRepository переключается на резервное хранилище, пока основное недоступно.
type FailoverStateRepository struct {
	primary   domain.StateRepository
	fallback  domain.StateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverStateRepository(primary, fallback domain.StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// IsDegraded сообщает, работает ли репозиторий на резервном хранилище.
func (r *FailoverStateRepository) IsDegraded() bool {
	return r.isDown.Load()
}

// usePrimary решает, идти ли в основное хранилище: оно здорово или пора пробовать восстановиться.
func (r *FailoverStateRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return r.now().Sub(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverStateRepository) markDown(err error, op string) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Str("op", op).Msg("Primary state repository failed, falling back to memory")
	}
	r.lastCheck.Store(r.now().UnixNano())
}

func (r *FailoverStateRepository) markUp() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary state repository recovered")
	}
}

func (r *FailoverStateRepository) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	if r.usePrimary() {
		state, err := r.primary.GetState(ctx, userID)
		if err == nil {
			r.markUp()
			return state, nil
		}
		r.markDown(err, "get")
	}
	return r.fallback.GetState(ctx, userID)
}

func (r *FailoverStateRepository) SetState(ctx context.Context, state *models.UserState) error {
	if r.usePrimary() {
		err := r.primary.SetState(ctx, state)
		if err == nil {
			r.markUp()
			return nil
		}
		r.markDown(err, "set")
	}
	return r.fallback.SetState(ctx, state)
}

func (r *FailoverStateRepository) ClearState(ctx context.Context, userID int64) error {
	if r.usePrimary() {
		err := r.primary.ClearState(ctx, userID)
		if err == nil {
			r.markUp()
			// Резервная копия могла остаться со времени сбоя.
			_ = r.fallback.ClearState(ctx, userID)
			return nil
		}
		r.markDown(err, "clear")
	}
	return r.fallback.ClearState(ctx, userID)
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			r.markUp()
			return allowed, nil
		}
		r.markDown(err, "rate_limit")
	}
	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}
