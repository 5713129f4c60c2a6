package publishers

import (
	"time"

	"github.com/google/uuid"
)

// Event is one API snapshot published downstream.
type Event struct {
	ID          string    `json:"id"`
	FeedID      string    `json:"feed_id"`
	Endpoint    string    `json:"endpoint"`
	Payload     any       `json:"payload"`
	CollectedAt time.Time `json:"collected_at"`
}

// NewEvent constructs an Event for the given feed and decoded payload.
func NewEvent(feedID, endpoint string, payload any) Event {
	return Event{
		ID:          uuid.New().String(),
		FeedID:      feedID,
		Endpoint:    endpoint,
		Payload:     payload,
		CollectedAt: time.Now().UTC(),
	}
}

// attributes returns the routing metadata attached to queue messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_id": e.ID,
		"feed_id":  e.FeedID,
		"endpoint": e.Endpoint,
	}
}
