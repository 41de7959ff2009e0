package services

import (
	"encoding/json"
	"log"
	"time"
)

// EventsExchange is the topic exchange domain events are published to.
const EventsExchange = "notes.events"

// Routing keys of the published domain events.
const (
	EventUserRegistered = "user.registered"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
	EventNoteCreated    = "note.created"
	EventNoteUpdated    = "note.updated"
	EventNoteDeleted    = "note.deleted"
)

// EventPublisher sends a message to a broker. *rabbitmq.Client implements it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// Event is the JSON body of a domain event.
type Event struct {
	Event  string    `json:"event"`
	ID     string    `json:"id"`
	UserID string    `json:"userId,omitempty"`
	At     time.Time `json:"at"`
}

// publishEvent is fire-and-forget: a broker failure is logged and never
// fails the request that caused the event.
func publishEvent(p EventPublisher, name, id, userID string) {
	if p == nil {
		return
	}
	body, err := json.Marshal(Event{Event: name, ID: id, UserID: userID, At: time.Now().UTC()})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", name, err)
		return
	}
	if err := p.Publish(EventsExchange, name, body); err != nil {
		log.Printf("Warning: failed to publish %s event for %s: %v", name, id, err)
	}
}
