package models

import "time"

// Chatroom is the discussion channel of exactly one event. The event_id
// column carries a unique constraint, so a second chatroom for the same
// event can never exist.
type Chatroom struct {
	ID        int       `db:"id" json:"id"`
	EventID   int       `db:"event_id" json:"event_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
