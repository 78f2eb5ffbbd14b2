package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"asterbot/internal/bot/bottest"
	"asterbot/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu        sync.Mutex
	messages  []string
	callbacks []string
	panicOn   string
}

func (h *recordingHandler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Text == h.panicOn {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg.Text)
}

func (h *recordingHandler) HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks = append(h.callbacks, cq.Data)
}

func (h *recordingHandler) counts() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages), len(h.callbacks)
}

type fakeLimiter struct {
	allowed bool
	err     error
}

func (l *fakeLimiter) Allow(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	return l.allowed, l.err
}

type fakeUsers struct {
	mu       sync.Mutex
	managers map[int64]bool
	touched  []int64
}

func (u *fakeUsers) IsManager(userID int64) bool { return u.managers[userID] }

func (u *fakeUsers) UpdateUserActivity(ctx context.Context, userID int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.touched = append(u.touched, userID)
	return nil
}

func (u *fakeUsers) touchedCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.touched)
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}}
}

func newTestBot(limiter *fakeLimiter, users *fakeUsers, handler UpdateHandler) (*Bot, *bottest.Telegram, *Metrics) {
	tg := bottest.NewTelegram()
	logger := zerolog.Nop()
	metrics := NewMetrics(prometheus.NewRegistry())
	cfg := &config.Config{Bot: config.BotConfig{RateLimitMessages: 20, RateLimitWindow: 60}}
	return NewBot(tg, cfg, limiter, users, handler, metrics, &logger), tg, metrics
}

func TestBotStart(t *testing.T) {
	handler := &recordingHandler{}
	users := &fakeUsers{}
	b, tg, _ := newTestBot(&fakeLimiter{allowed: true}, users, handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Start(ctx)
		close(done)
	}()

	tg.Updates <- textUpdate(123, "/start")
	tg.Updates <- tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb", From: &tgbotapi.User{ID: 123}, Data: "menu:select_car"}}

	require.Eventually(t, func() bool {
		m, c := handler.counts()
		return m == 1 && c == 1
	}, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return users.touchedCount() == 2 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bot did not stop")
	}
}

// blockingHandler задерживает сообщение с текстом blockOn до release.
type blockingHandler struct {
	recordingHandler
	blockOn string
	started chan struct{}
	release chan struct{}
}

func (h *blockingHandler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Text == h.blockOn {
		close(h.started)
		<-h.release
	}
	h.recordingHandler.HandleMessage(ctx, msg)
}

func TestBotStart_SlowUserDoesNotBlockOthers(t *testing.T) {
	handler := &blockingHandler{blockOn: "долгий запрос", started: make(chan struct{}), release: make(chan struct{})}
	b, tg, _ := newTestBot(&fakeLimiter{allowed: true}, &fakeUsers{}, handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Start(ctx)
		close(done)
	}()

	tg.Updates <- textUpdate(1, "долгий запрос")
	<-handler.started
	tg.Updates <- textUpdate(1, "второе сообщение")
	tg.Updates <- textUpdate(2, "привет")

	require.Eventually(t, func() bool {
		m, _ := handler.counts()
		return m == 1
	}, time.Second, 10*time.Millisecond)
	handler.mu.Lock()
	assert.Equal(t, []string{"привет"}, handler.messages)
	handler.mu.Unlock()

	close(handler.release)
	cancel()
	<-done
	b.Stop()

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Equal(t, []string{"привет", "долгий запрос", "второе сообщение"}, handler.messages)
	assert.True(t, tg.Stopped)
}

func TestBotStart_ClosedChannel(t *testing.T) {
	b, tg, _ := newTestBot(&fakeLimiter{allowed: true}, &fakeUsers{}, &recordingHandler{})
	close(tg.Updates)

	done := make(chan struct{})
	go func() {
		b.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bot did not stop on closed updates channel")
	}
}

func TestProcessUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("IgnoresUpdatesWithoutUser", func(t *testing.T) {
		handler := &recordingHandler{}
		b, _, _ := newTestBot(&fakeLimiter{allowed: true}, &fakeUsers{}, handler)
		b.processUpdate(ctx, tgbotapi.Update{})
		m, c := handler.counts()
		assert.Zero(t, m+c)
	})

	t.Run("RateLimited", func(t *testing.T) {
		handler := &recordingHandler{}
		b, tg, metrics := newTestBot(&fakeLimiter{allowed: false}, &fakeUsers{}, handler)

		b.processUpdate(ctx, textUpdate(1, "привет"))

		m, _ := handler.counts()
		assert.Zero(t, m)
		assert.Equal(t, []string{TextRateLimited}, tg.Texts(1))
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RateLimited))
	})

	t.Run("ManagersAreNotLimited", func(t *testing.T) {
		handler := &recordingHandler{}
		users := &fakeUsers{managers: map[int64]bool{7: true}}
		b, tg, _ := newTestBot(&fakeLimiter{allowed: false}, users, handler)

		b.processUpdate(ctx, textUpdate(7, "/admin"))

		m, _ := handler.counts()
		assert.Equal(t, 1, m)
		assert.Empty(t, tg.Texts(7))
	})

	t.Run("LimiterErrorDoesNotBlock", func(t *testing.T) {
		handler := &recordingHandler{}
		b, _, _ := newTestBot(&fakeLimiter{err: errors.New("redis down")}, &fakeUsers{}, handler)

		b.processUpdate(ctx, textUpdate(1, "привет"))

		m, _ := handler.counts()
		assert.Equal(t, 1, m)
	})

	t.Run("RecoversFromPanic", func(t *testing.T) {
		handler := &recordingHandler{panicOn: "boom"}
		b, _, metrics := newTestBot(&fakeLimiter{allowed: true}, &fakeUsers{}, handler)

		assert.NotPanics(t, func() { b.processUpdate(ctx, textUpdate(1, "boom")) })
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ErrorsTotal))

		b.processUpdate(ctx, textUpdate(1, "после"))
		m, _ := handler.counts()
		assert.Equal(t, 1, m)
	})
}

func TestBotStop(t *testing.T) {
	b, tg, _ := newTestBot(&fakeLimiter{allowed: true}, &fakeUsers{}, &recordingHandler{})
	b.Stop()
	assert.True(t, tg.Stopped)

	var nilBot *Bot
	assert.NotPanics(t, nilBot.Stop)
}
