package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalBusDeliversByTopic(t *testing.T) {
	bus := NewLocalBus()
	var identity, storage []Event

	bus.Subscribe(TopicIdentityChanged, func(e Event) { identity = append(identity, e) })
	bus.Subscribe(TopicStorage, func(e Event) { storage = append(storage, e) })

	_ = bus.Publish(context.Background(), Event{Topic: TopicStorage, Key: "currentRole", Value: "铭"})

	assert.Empty(t, identity)
	if assert.Len(t, storage, 1) {
		assert.Equal(t, "铭", storage[0].Value)
	}
}

func TestLocalBusCancel(t *testing.T) {
	bus := NewLocalBus()
	calls := 0
	cancel := bus.Subscribe(TopicStorage, func(Event) { calls++ })
	other := bus.Subscribe(TopicStorage, func(Event) {})

	cancel()
	cancel()
	_ = bus.Publish(context.Background(), Event{Topic: TopicStorage})

	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, bus.Subscribers(TopicStorage))
	other()
	assert.Equal(t, 0, bus.Subscribers(TopicStorage))
}

func TestLocalBusHandlerMayCancelItself(t *testing.T) {
	bus := NewLocalBus()
	calls := 0
	var cancel func()
	cancel = bus.Subscribe(TopicStorage, func(Event) {
		calls++
		cancel()
	})

	_ = bus.Publish(context.Background(), Event{Topic: TopicStorage})
	_ = bus.Publish(context.Background(), Event{Topic: TopicStorage})
	assert.Equal(t, 1, calls)
}

func TestLocalBusClosed(t *testing.T) {
	bus := NewLocalBus()
	calls := 0
	bus.Subscribe(TopicStorage, func(Event) { calls++ })
	_ = bus.Close()

	assert.NoError(t, bus.Publish(context.Background(), Event{Topic: TopicStorage}))
	assert.Equal(t, 0, calls)
}
