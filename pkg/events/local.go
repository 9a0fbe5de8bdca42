package events

import (
	"context"
	"sync"
)

type subscription struct {
	id uint64
	h  Handler
}

// LocalBus dispatches synchronously inside the process
type LocalBus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID uint64
	closed bool
}

// NewLocalBus creates an empty bus
func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[string][]subscription)}
}

func (b *LocalBus) Publish(_ context.Context, e Event) error {
	b.dispatch(e)
	return nil
}

// dispatch copies the handler list so handlers may subscribe or cancel
func (b *LocalBus) dispatch(e Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	handlers := make([]Handler, 0, len(b.subs[e.Topic]))
	for _, s := range b.subs[e.Topic] {
		handlers = append(handlers, s.h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

func (b *LocalBus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, h: h})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

func (b *LocalBus) remove(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}

// Subscribers returns the handler count of a topic
func (b *LocalBus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.subs = make(map[string][]subscription)
	return nil
}
