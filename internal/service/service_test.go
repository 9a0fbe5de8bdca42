package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"team-dashboard/backend/internal/repository"
	"team-dashboard/backend/pkg/events"
	"team-dashboard/backend/pkg/storage"
)

// recorder collects events published on a bus
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func listen(bus events.Bus, topic string) *recorder {
	r := &recorder{}
	bus.Subscribe(topic, r.handle)
	return r
}

func fixedClock() func() time.Time {
	t := time.Date(2025, 1, 31, 14, 5, 9, 0, time.UTC)
	return func() time.Time { return t }
}

// sequenceIDs returns ids from the list, then numbered ids once it runs out
func sequenceIDs(ids ...string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		if n <= len(ids) {
			return ids[n-1]
		}
		return fmt.Sprintf("id-%d", n)
	}
}

type fixture struct {
	kv         *storage.MemoryKV
	pageBus    *events.LocalBus
	storageBus *events.LocalBus
	identity   *IdentityService
	messages   *MessageService
	resources  *ResourceService
}

func newFixture() *fixture {
	f := &fixture{
		kv:         storage.NewMemoryKV(),
		pageBus:    events.NewLocalBus(),
		storageBus: events.NewLocalBus(),
	}
	f.identity = NewIdentityService(repository.NewKVIdentityRepository(f.kv), f.pageBus, f.storageBus, nil, nil, nil)
	f.messages = NewMessageService(repository.NewKVMessageRepository(f.kv), f.storageBus, DefaultMessageServiceConfig(), nil, nil)
	f.resources = NewResourceService(repository.NewKVResourceRepository(f.kv), f.storageBus, DefaultResourceServiceConfig(), nil, nil)
	f.messages.now = fixedClock()
	f.resources.now = fixedClock()
	return f
}

func (f *fixture) seed(t *testing.T, key, raw string) {
	t.Helper()
	if err := f.kv.Set(context.Background(), key, raw); err != nil {
		t.Fatal(err)
	}
}
