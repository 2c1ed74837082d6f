package service

import "time"

type EventType string

const (
	EventBusinessCreated EventType = "business.created"
	EventBusinessUpdated EventType = "business.updated"
	EventBusinessDeleted EventType = "business.deleted"
	EventReviewCreated   EventType = "review.created"
	EventReviewUpdated   EventType = "review.updated"
	EventReviewDeleted   EventType = "review.deleted"
)

// Event describes a committed change to a business or review.
type Event struct {
	Type      EventType   `json:"type"`
	ID        int64       `json:"id"`
	Data      interface{} `json:"data,omitempty"`
	Cascaded  []int64     `json:"cascaded_review_ids,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// EventPublisher receives events after the store write succeeded. Publish
// must not block the request.
type EventPublisher interface {
	Publish(event Event)
}

// Publishers fans an event out to several publishers.
type Publishers []EventPublisher

func (p Publishers) Publish(event Event) {
	for _, publisher := range p {
		if publisher != nil {
			publisher.Publish(event)
		}
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func newEvent(t EventType, id int64, data interface{}) Event {
	return Event{Type: t, ID: id, Data: data, Timestamp: time.Now().UTC()}
}
