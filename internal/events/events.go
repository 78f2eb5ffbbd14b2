// Package events внутрипроцессная шина доменных событий ботов.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// EventLeadCaptured payload: models.Lead.
	EventLeadCaptured   = "lead_captured"
	EventAdPublished    = "ad_published"
	EventAccessApproved = "access_approved"
	EventAccessRejected = "access_rejected"
)

// AdEventPayload краткие данные нового объявления для подписчиков событий.
type AdEventPayload struct {
	AdID      int64  `json:"ad_id"`
	Title     string `json:"title"`
	Model     string `json:"model"`
	Year      int    `json:"year"`
	Price     int64  `json:"price"`
	Matched   int    `json:"matched"`
	Notified  int    `json:"notified"`
	CreatedBy int64  `json:"created_by"`
}

// AccessEventPayload решение администратора по заявке на доступ.
type AccessEventPayload struct {
	UserID    int64  `json:"user_id"`
	Status    string `json:"status"`
	DecidedBy int64  `json:"decided_by"`
}

type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler ошибка обработчика не мешает остальным подписчикам.
type EventHandler func(event *Event) error

type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish синхронно вызывает всех подписчиков типа события и собирает их ошибки.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, fmt.Errorf("%s handler: %w", event.Type, err))
		}
	}
	return errors.Join(errs...)
}

// PublishJSON сериализует payload и публикует событие. nil-шина ничего не делает.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
}

// Decode разбирает payload события в T.
func Decode[T any](event *Event) (T, error) {
	var out T
	if err := json.Unmarshal(event.Payload, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}
	return out, nil
}
