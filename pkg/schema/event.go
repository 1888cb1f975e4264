package schema

import (
	"encoding/json"
	"fmt"
)

// Push channel event names. A new subscriber receives one EventSnapshot and
// thereafter only incremental events, in the order the mutations committed.
const (
	EventSnapshot = "books:initial"
	EventAdded    = "book:added"
	EventUpdated  = "book:updated"
	EventDeleted  = "book:deleted"
)

// Event is the envelope carried over the push channel. Data holds the full
// catalog for a snapshot, a single record for added/updated, and the removed
// record's id for deleted.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewEvent wraps a payload in an Event envelope.
func NewEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Data: data}, nil
}

// Book decodes the payload of an added or updated event.
func (e Event) Book() (Book, error) {
	var b Book
	if err := json.Unmarshal(e.Data, &b); err != nil {
		return Book{}, fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return b, nil
}

// Books decodes the payload of a snapshot event.
func (e Event) Books() ([]Book, error) {
	var books []Book
	if err := json.Unmarshal(e.Data, &books); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return books, nil
}

// BookID decodes the payload of a deleted event.
func (e Event) BookID() (string, error) {
	var id string
	if err := json.Unmarshal(e.Data, &id); err != nil {
		return "", fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return id, nil
}
