package shell

import (
	"sync"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/pkg/events"
)

// IdentityLabel tracks the identity shown on one page. It follows the in-page
// event raised by the page itself and storage changes raised by the other
// pages of the same profile, so both paths end on the same value.
type IdentityLabel struct {
	profileID string
	pageID    string
	onChange  func(string)

	mu      sync.Mutex
	text    string
	cancels []func()
}

// NewIdentityLabel starts from the identity read at page load. onChange is
// called whenever the shown text changes and may be nil.
func NewIdentityLabel(profileID, pageID, initial string, onChange func(string)) *IdentityLabel {
	return &IdentityLabel{
		profileID: profileID,
		pageID:    pageID,
		onChange:  onChange,
		text:      display(initial),
	}
}

func display(v string) string {
	if v == "" {
		return models.IdentityUnselected
	}
	return v
}

// Attach subscribes to both transports
func (l *IdentityLabel) Attach(pageBus, storageBus events.Bus) {
	own := pageBus.Subscribe(events.TopicIdentityChanged, func(e events.Event) {
		if e.Profile == l.profileID && e.Page == l.pageID {
			l.apply(e.Value)
		}
	})
	others := storageBus.Subscribe(events.TopicStorage, func(e events.Event) {
		if e.Key == models.KeyCurrentRole && e.Profile == l.profileID && e.Page != l.pageID {
			l.apply(e.Value)
		}
	})

	l.mu.Lock()
	l.cancels = append(l.cancels, own, others)
	l.mu.Unlock()
}

func (l *IdentityLabel) apply(v string) {
	v = display(v)

	l.mu.Lock()
	if v == l.text {
		l.mu.Unlock()
		return
	}
	l.text = v
	l.mu.Unlock()

	if l.onChange != nil {
		l.onChange(v)
	}
}

// Text returns the shown identity
func (l *IdentityLabel) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.text
}

// Close removes the subscriptions
func (l *IdentityLabel) Close() {
	l.mu.Lock()
	cancels := l.cancels
	l.cancels = nil
	l.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
