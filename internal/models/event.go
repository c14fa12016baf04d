package models

import "time"

// Event is owned by the event-management service; this service only reads it
// to validate existence and to resolve the event's chatroom.
type Event struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	BeginsAt    time.Time `db:"begins_at" json:"begins_at"`
	EndsAt      time.Time `db:"ends_at" json:"ends_at"`
	Address     string    `db:"address" json:"address"`
	City        string    `db:"city" json:"city"`
	Category    string    `db:"category" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
