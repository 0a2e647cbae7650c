package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/estatehub/internal/domain"
)

// Event types published on the broker
const (
	EventOfferCreated  = "offer.created"
	EventStatusChanged = "offer.status_changed"
)

// Event describes an offer lifecycle change, scoped to a property
type Event struct {
	Type        string           `json:"type"`
	PropertyRef string           `json:"propertyRef"`
	Offer       domain.OfferView `json:"offer"`
	At          time.Time        `json:"at"`
}

type subscriber struct {
	propertyRef string
	ch          chan Event
}

// Broker fans out offer events to subscribers interested in a property.
// Delivery is best effort: a subscriber that cannot keep up has events
// dropped rather than blocking publishers.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]subscriber
	logger *slog.Logger
}

// NewBroker creates a new event broker
func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Broker{
		subs:   make(map[string]subscriber),
		logger: logger,
	}
}

// Subscribe registers interest in events for a property's native identifier.
// The returned cancel func must be called when the subscriber goes away.
func (b *Broker) Subscribe(propertyRef string) (<-chan Event, func()) {
	id := uuid.NewString()
	ch := make(chan Event, 16)

	b.mu.Lock()
	b.subs[id] = subscriber{propertyRef: propertyRef, ch: ch}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of its property
func (b *Broker) Publish(event Event) {
	event.At = time.Now()

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.subs {
		if s.propertyRef != event.PropertyRef {
			continue
		}
		select {
		case s.ch <- event:
		default:
			b.logger.Debug("dropping event for slow subscriber",
				slog.String("type", event.Type),
				slog.String("property_ref", event.PropertyRef),
			)
		}
	}
}
