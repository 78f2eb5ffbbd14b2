package service

import (
	"sync"
	"time"
)

type idleTimer struct {
	timer *time.Timer
	gen   uint64
}

// IdleTimers реестр таймеров бездействия: не больше одного ожидающего таймера на пользователя.
type IdleTimers struct {
	mu      sync.Mutex
	timeout time.Duration
	timers  map[int64]*idleTimer
	gen     uint64
}

func NewIdleTimers(timeout time.Duration) *IdleTimers {
	return &IdleTimers{
		timeout: timeout,
		timers:  make(map[int64]*idleTimer),
	}
}

// Arm заводит таймер заново, предыдущий таймер пользователя отменяется.
// fire вызывается не более одного раза и только если таймер не был заменен или отменен.
func (t *IdleTimers) Arm(userID int64, fire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.timers[userID]; ok {
		cur.timer.Stop()
	}

	t.gen++
	gen := t.gen
	entry := &idleTimer{gen: gen}
	entry.timer = time.AfterFunc(t.timeout, func() {
		t.mu.Lock()
		cur, ok := t.timers[userID]
		if !ok || cur.gen != gen {
			t.mu.Unlock()
			return
		}
		delete(t.timers, userID)
		t.mu.Unlock()

		fire()
	})
	t.timers[userID] = entry
}

// Cancel отменяет ожидающий таймер. Возвращает true, если таймер был.
func (t *IdleTimers) Cancel(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.timers[userID]
	if !ok {
		return false
	}
	cur.timer.Stop()
	delete(t.timers, userID)
	return true
}

func (t *IdleTimers) Pending(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.timers[userID]
	return ok
}

// Stop отменяет все таймеры.
func (t *IdleTimers) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, cur := range t.timers {
		cur.timer.Stop()
		delete(t.timers, id)
	}
}
