// Package events consumes practice lifecycle events from RabbitMQ.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventPracticeCreated is the only event type that triggers validation.
const EventPracticeCreated = "practice.created"

var (
	// ErrUnsupportedEvent marks events that are acknowledged and skipped.
	ErrUnsupportedEvent = errors.New("unsupported event type")
	// ErrMalformedEvent marks bodies that can never be processed.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrPermanent marks handler errors that a redelivery cannot fix.
	ErrPermanent = errors.New("permanent failure")
)

// Event is the message envelope published by the practice service.
type Event struct {
	Type    string  `json:"type"`
	Payload Payload `json:"payload"`
}

// Payload carries the id of the practice the event refers to.
type Payload struct {
	PracticeID string `json:"practice_id"`
}

// Decode parses body and returns the id of a created practice.
// Other event types yield ErrUnsupportedEvent.
func Decode(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.Type != EventPracticeCreated {
		return ev, fmt.Errorf("%w: %q", ErrUnsupportedEvent, ev.Type)
	}
	if ev.Payload.PracticeID == "" {
		return ev, fmt.Errorf("%w: missing practice_id", ErrMalformedEvent)
	}
	return ev, nil
}
