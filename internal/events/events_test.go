package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishJSON(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventAdPublished, func(event *Event) error {
		received = append(received, event)
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventAdPublished, AdEventPayload{AdID: 7, Title: "Kia K5", Matched: 3, Notified: 2}))
	require.Len(t, received, 1)
	assert.Equal(t, EventAdPublished, received[0].Type)
	assert.False(t, received[0].CreatedAt.IsZero())

	payload, err := Decode[AdEventPayload](received[0])
	require.NoError(t, err)
	assert.Equal(t, int64(7), payload.AdID)
	assert.Equal(t, 2, payload.Notified)
}

func TestEventBus_RoutesByType(t *testing.T) {
	bus := NewEventBus()
	var approved, rejected int
	bus.Subscribe(EventAccessApproved, func(*Event) error { approved++; return nil })
	bus.Subscribe(EventAccessApproved, func(*Event) error { approved++; return nil })
	bus.Subscribe(EventAccessRejected, func(*Event) error { rejected++; return nil })

	require.NoError(t, bus.PublishJSON(EventAccessApproved, AccessEventPayload{UserID: 1, Status: "approved"}))
	assert.Equal(t, 2, approved)
	assert.Zero(t, rejected)

	// без подписчиков ничего не происходит
	assert.NoError(t, bus.Publish(&Event{Type: EventLeadCaptured}))
}

func TestEventBus_HandlerErrors(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("boom")
	var calls int
	bus.Subscribe(EventLeadCaptured, func(*Event) error { calls++; return boom })
	bus.Subscribe(EventLeadCaptured, func(*Event) error { calls++; return nil })

	err := bus.PublishJSON(EventLeadCaptured, map[string]int64{"user_id": 1})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestEventBus_NilAndBadPayload(t *testing.T) {
	var nilBus *EventBus
	assert.NoError(t, nilBus.PublishJSON(EventAdPublished, AdEventPayload{}))

	bus := NewEventBus()
	assert.Error(t, bus.PublishJSON(EventAdPublished, make(chan int)))

	_, err := Decode[AccessEventPayload](&Event{Type: EventAccessApproved, Payload: []byte("{")})
	assert.Error(t, err)
}
