package audit

import (
	"time"

	"github.com/google/uuid"
)

// Log is one persisted event-trail entry.
type Log struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	EventType string    `json:"event_type"`
	Subject   string    `json:"subject"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows an audit listing.
type Filter struct {
	EventType string
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}
