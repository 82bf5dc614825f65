package events

import (
	"errors"
	"testing"
)

func TestInMemoryEventStore_AppendAndRead(t *testing.T) {
	store := NewInMemoryEventStore()

	for i := 0; i < 3; i++ {
		if _, err := store.AppendEvent(NewEvent(AssumptionChangedEvent, "session-a", i)); err != nil {
			t.Fatalf("AppendEvent failed: %v", err)
		}
	}
	appended, err := store.AppendEvent(NewEvent(ResultComputedEvent, "session-b", nil))
	if err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}
	if appended.Version != 1 {
		t.Errorf("Expected first event of session-b to be version 1, got %d", appended.Version)
	}

	streamA, _ := store.ReadEvents("session-a", 2)
	if len(streamA) != 2 {
		t.Fatalf("Expected 2 events from version 2, got %d", len(streamA))
	}
	if streamA[0].Version != 2 || streamA[1].Data != 2 {
		t.Errorf("Unexpected events %+v", streamA)
	}

	if events, _ := store.ReadEvents("session-a", 9); len(events) != 0 {
		t.Errorf("Expected no events past the end, got %d", len(events))
	}
	if events, _ := store.ReadEvents("missing", 0); len(events) != 0 {
		t.Errorf("Expected no events for unknown stream, got %d", len(events))
	}

	all, _ := store.ReadAllEvents(0)
	if len(all) != 4 {
		t.Errorf("Expected 4 events in total, got %d", len(all))
	}
	if tail, _ := store.ReadAllEvents(3); len(tail) != 1 || tail[0].StreamID != "session-b" {
		t.Errorf("Expected session-b event at position 3, got %+v", tail)
	}
}

func TestInMemoryEventStore_Subscribe(t *testing.T) {
	store := NewInMemoryEventStore()

	var received []Event
	unsubscribe := store.Subscribe([]string{ResultComputedEvent}, HandlerFunc(func(e Event) error {
		received = append(received, e)
		return nil
	}))

	store.AppendEvent(NewEvent(AssumptionChangedEvent, "s", nil))
	store.AppendEvent(NewEvent(ResultComputedEvent, "s", nil))

	// Delivery is synchronous
	if len(received) != 1 || received[0].Type != ResultComputedEvent {
		t.Fatalf("Expected one result event, got %+v", received)
	}
	if received[0].Version != 2 {
		t.Errorf("Expected handler to see the stored version 2, got %d", received[0].Version)
	}

	unsubscribe()
	store.AppendEvent(NewEvent(ResultComputedEvent, "s", nil))
	if len(received) != 1 {
		t.Errorf("Expected no delivery after unsubscribe, got %d events", len(received))
	}
}

func TestInMemoryEventStore_HandlerErrorDoesNotFailAppend(t *testing.T) {
	store := NewInMemoryEventStore()
	store.Subscribe([]string{InputRejectedEvent}, HandlerFunc(func(Event) error {
		return errors.New("handler failed")
	}))

	if _, err := store.AppendEvent(NewInputRejectedEvent("s", "growthRate", "x", errors.New("bad"))); err != nil {
		t.Errorf("Expected append to succeed despite handler error, got %v", err)
	}
}
