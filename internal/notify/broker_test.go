package notify

import (
	"testing"
	"time"

	"github.com/yourorg/estatehub/internal/domain"
)

func TestPublishReachesMatchingSubscriber(t *testing.T) {
	b := NewBroker(nil)

	ch, cancel := b.Subscribe("aaaaaaaaaaaaaaaaaaaaaaaa")
	defer cancel()

	b.Publish(Event{
		Type:        EventOfferCreated,
		PropertyRef: "aaaaaaaaaaaaaaaaaaaaaaaa",
		Offer:       domain.OfferView{ID: "o1", Status: domain.StatusPending},
	})

	select {
	case ev := <-ch:
		if ev.Type != EventOfferCreated {
			t.Errorf("expected %s, got %s", EventOfferCreated, ev.Type)
		}
		if ev.Offer.ID != "o1" {
			t.Errorf("expected offer o1, got %s", ev.Offer.ID)
		}
		if ev.At.IsZero() {
			t.Errorf("expected publish timestamp to be set")
		}
	case <-time.After(time.Second):
		t.Fatalf("event not delivered")
	}
}

func TestPublishSkipsOtherProperties(t *testing.T) {
	b := NewBroker(nil)

	ch, cancel := b.Subscribe("aaaaaaaaaaaaaaaaaaaaaaaa")
	defer cancel()

	b.Publish(Event{Type: EventStatusChanged, PropertyRef: "bbbbbbbbbbbbbbbbbbbbbbbb"})

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b := NewBroker(nil)

	ch, cancel := b.Subscribe("aaaaaaaaaaaaaaaaaaaaaaaa")
	cancel()

	if _, open := <-ch; open {
		t.Fatalf("expected channel closed after cancel")
	}

	// Publishing after cancel must not panic
	b.Publish(Event{Type: EventOfferCreated, PropertyRef: "aaaaaaaaaaaaaaaaaaaaaaaa"})
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := NewBroker(nil)

	_, cancel := b.Subscribe("aaaaaaaaaaaaaaaaaaaaaaaa")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(Event{Type: EventOfferCreated, PropertyRef: "aaaaaaaaaaaaaaaaaaaaaaaa"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on slow subscriber")
	}
}
