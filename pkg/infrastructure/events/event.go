package events

import (
	"time"
)

// Event is a recorded change in a planning session
type Event struct {
	Type      string      `json:"type"`
	StreamID  string      `json:"stream_id"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
	// Version is the 1-based position within the stream, assigned on append
	Version int `json:"version"`
}

// EventHandler receives events of the types it subscribed to
type EventHandler interface {
	Handle(event Event) error
}

// HandlerFunc adapts a function to EventHandler
type HandlerFunc func(event Event) error

// Handle calls f(event)
func (f HandlerFunc) Handle(event Event) error {
	return f(event)
}

// EventStore appends and replays session events
type EventStore interface {
	AppendEvent(event Event) (Event, error)
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) (unsubscribe func())
}

// NewEvent creates an unversioned event stamped with the current time
func NewEvent(eventType, streamID string, data interface{}) Event {
	return Event{
		Type:      eventType,
		StreamID:  streamID,
		Data:      data,
		Timestamp: time.Now(),
	}
}
