package sync

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func testEnvelope(coupleID uuid.UUID, table string) ChangeEnvelope {
	return ChangeEnvelope{
		Table:    table,
		Kind:     "insert",
		CoupleID: coupleID,
		Row:      json.RawMessage(`{}`),
	}
}

func TestHubDeliversToCoupleSubscribers(t *testing.T) {
	hub := NewHub(nil)
	coupleID := uuid.New()
	otherID := uuid.New()

	ch, cancel := hub.Subscribe(coupleID)
	defer cancel()
	otherCh, otherCancel := hub.Subscribe(otherID)
	defer otherCancel()

	hub.Broadcast(coupleID, testEnvelope(coupleID, "todos"))

	select {
	case env := <-ch:
		if env.Table != "todos" {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	default:
		t.Fatalf("expected envelope for subscribed couple")
	}

	select {
	case env := <-otherCh:
		t.Fatalf("unexpected cross-couple delivery: %+v", env)
	default:
	}
}

func TestHubCancelClosesChannelAndReleasesSlot(t *testing.T) {
	hub := NewHub(nil)
	coupleID := uuid.New()

	ch, cancel := hub.Subscribe(coupleID)
	if hub.SubscriberCount(coupleID) != 1 {
		t.Fatalf("expected one subscriber")
	}

	cancel()
	cancel() // second call is a no-op

	if hub.SubscriberCount(coupleID) != 0 {
		t.Fatalf("expected subscriber released")
	}
	if _, open := <-ch; open {
		t.Fatalf("expected channel closed after cancel")
	}

	// broadcast after teardown must not panic
	hub.Broadcast(coupleID, testEnvelope(coupleID, "todos"))
}

func TestHubBroadcastRacingCancelDoesNotPanic(t *testing.T) {
	hub := NewHub(nil)
	coupleID := uuid.New()

	cancels := make([]func(), 0, 128)
	for i := 0; i < 128; i++ {
		_, cancel := hub.Subscribe(coupleID)
		cancels = append(cancels, cancel)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, cancel := range cancels {
			cancel()
		}
	}()
	for i := 0; i < 512; i++ {
		hub.Broadcast(coupleID, testEnvelope(coupleID, "events"))
	}
	<-done

	if hub.SubscriberCount(coupleID) != 0 {
		t.Fatalf("expected all subscribers released")
	}
}

func TestHubSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(nil)
	coupleID := uuid.New()

	ch, cancel := hub.Subscribe(coupleID)
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Broadcast(coupleID, testEnvelope(coupleID, "bills"))
	}

	if got := len(ch); got != subscriberBuffer {
		t.Fatalf("expected buffer capped at %d, got %d", subscriberBuffer, got)
	}
}
