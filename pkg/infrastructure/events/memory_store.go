package events

import (
	"sync"

	"k8s.io/klog/v2"
)

type subscription struct {
	id      int
	handler EventHandler
}

// InMemoryEventStore keeps every event in memory and delivers them to
// subscribers synchronously, in append order, after the store lock is released.
type InMemoryEventStore struct {
	streams     map[string][]Event
	allEvents   []Event
	subscribers map[string][]subscription
	nextSubID   int
	mutex       sync.RWMutex
}

// NewInMemoryEventStore creates an empty store
func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		allEvents:   make([]Event, 0),
		subscribers: make(map[string][]subscription),
	}
}

// Verify interface compliance
var _ EventStore = (*InMemoryEventStore)(nil)

// AppendEvent versions the event within its stream, stores it and notifies subscribers
func (s *InMemoryEventStore) AppendEvent(event Event) (Event, error) {
	s.mutex.Lock()
	event.Version = len(s.streams[event.StreamID]) + 1
	s.streams[event.StreamID] = append(s.streams[event.StreamID], event)
	s.allEvents = append(s.allEvents, event)
	handlers := make([]subscription, len(s.subscribers[event.Type]))
	copy(handlers, s.subscribers[event.Type])
	s.mutex.Unlock()

	for _, sub := range handlers {
		if err := sub.handler.Handle(event); err != nil {
			klog.ErrorS(err, "Event handler failed", "type", event.Type, "stream", event.StreamID)
		}
	}
	return event, nil
}

// ReadEvents returns the events of one stream starting at fromVersion (1-based)
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stream := s.streams[streamID]
	if fromVersion < 1 {
		fromVersion = 1
	}
	if fromVersion > len(stream) {
		return []Event{}, nil
	}

	result := make([]Event, len(stream)-fromVersion+1)
	copy(result, stream[fromVersion-1:])
	return result, nil
}

// ReadAllEvents returns every event from fromPosition (0-based) onward
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	result := make([]Event, len(s.allEvents)-fromPosition)
	copy(result, s.allEvents[fromPosition:])
	return result, nil
}

// Subscribe registers handler for the given event types and returns a function that removes it
func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) func() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextSubID++
	id := s.nextSubID
	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], subscription{id: id, handler: handler})
	}

	return func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		for _, eventType := range eventTypes {
			subs := s.subscribers[eventType]
			kept := make([]subscription, 0, len(subs))
			for _, sub := range subs {
				if sub.id != id {
					kept = append(kept, sub)
				}
			}
			s.subscribers[eventType] = kept
		}
	}
}
