package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/pkg/logger"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls further behind than this loses events rather than blocking emitters.
const subscriberBuffer = 64

// Bus fans events out to subscribers. Emission never blocks: slow
// subscribers drop events.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
	log         zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[int]chan Event),
		log:         logger.ForComponent(log, "event_bus"),
	}
}

// Subscribe registers a new subscriber. The returned id is used to
// unsubscribe; the channel is closed on Unsubscribe.
func (b *Bus) Subscribe() (int, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, subscriberBuffer)
	b.subscribers[id] = ch

	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Emit publishes an event to all subscribers and logs it.
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	b.mu.RLock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber buffer full, drop rather than block the emitter.
		}
	}
	b.mu.RUnlock()

	eventJSON, _ := json.Marshal(event)
	b.log.Debug().
		Str("event_type", string(eventType)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")
}

// EmitTyped publishes an event whose payload is a typed struct.
func (b *Bus) EmitTyped(eventType EventType, module string, data interface{}) {
	b.Emit(eventType, module, structToMap(data))
}

// EmitError emits an error event
func (b *Bus) EmitError(module string, err error) {
	b.Emit(ErrorOccurred, module, map[string]interface{}{
		"error": err.Error(),
	})
}

// structToMap converts a typed payload to the map form carried by Event.
func structToMap(v interface{}) map[string]interface{} {
	if v == nil {
		return nil
	}

	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return nil
	}
	return result
}
