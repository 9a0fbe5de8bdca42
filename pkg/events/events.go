// Package events delivers key-change notifications between the stores and
// the pages that display them.
package events

import (
	"context"
	"time"
)

const (
	// TopicIdentityChanged is raised on the page that changed the identity
	TopicIdentityChanged = "identityChanged"
	// TopicStorage is raised for every persisted key write
	TopicStorage = "storage"
)

// Event is a change notification. Value carries the new value for string keys
// and is empty for list keys.
type Event struct {
	Topic   string    `json:"topic"`
	Profile string    `json:"profile"`
	Page    string    `json:"page"`
	Key     string    `json:"key"`
	Value   string    `json:"value,omitempty"`
	At      time.Time `json:"at"`
}

// Handler receives events. It must not block for long.
type Handler func(Event)

// Bus fans events out to subscribers of a topic
type Bus interface {
	Publish(ctx context.Context, e Event) error
	// Subscribe registers h and returns a function that removes it
	Subscribe(topic string, h Handler) (cancel func())
	Close() error
}
