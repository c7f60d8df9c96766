package state

import (
	"sync"

	"github.com/google/uuid"

	"github.com/daylit-io/daylit-tray/internal/models"
)

// EventSettingsUpdated is broadcast after a successful settings save.
const EventSettingsUpdated = "settings-updated"

// Event is a broadcast to listening UI components.
type Event struct {
	Name     string
	Settings *models.Settings
}

// Bus fans events out to subscribers. Publish never blocks; a subscriber
// that falls behind misses events rather than stalling the publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[string]chan Event
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]chan Event)}
}

// Subscribe registers a new subscriber and returns its ID and channel.
func (b *Bus) Subscribe() (string, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan Event, 16)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers an event to all subscribers without blocking.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
