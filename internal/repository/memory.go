package repository

import (
	"context"
	"sync"
	"time"

	"asterbot/internal/models"
)

// MemoryStateRepository резервное хранилище состояний в памяти процесса.
// Состояния копируются на входе и выходе, поэтому вызывающий код не может изменить сохраненное.
type MemoryStateRepository struct {
	mu         sync.Mutex
	states     map[int64]memoryEntry
	rateLimits map[int64]*rateLimitEntry
	ttl        time.Duration
	now        func() time.Time
}

type memoryEntry struct {
	state     *models.UserState
	expiresAt time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		states:     make(map[int64]memoryEntry),
		rateLimits: make(map[int64]*rateLimitEntry),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (r *MemoryStateRepository) GetState(_ context.Context, userID int64) (*models.UserState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.states[userID]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		delete(r.states, userID)
		return nil, nil
	}
	return entry.state.Clone(), nil
}

func (r *MemoryStateRepository) SetState(_ context.Context, state *models.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := memoryEntry{state: state.Clone()}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.states[state.UserID] = entry
	return nil
}

func (r *MemoryStateRepository) ClearState(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, userID)
	return nil
}

func (r *MemoryStateRepository) CheckRateLimit(_ context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.rateLimits[userID]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		r.rateLimits[userID] = entry
	}
	entry.count++
	return entry.count <= limit, nil
}
