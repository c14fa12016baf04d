package models

import "time"

// Message is a chat utterance. Immutable once stored except for the pinned
// flag, which is toggled by privileged roles.
type Message struct {
	ID         int       `db:"id" json:"id"`
	ChatroomID int       `db:"chatroom_id" json:"chatroom_id"`
	UserID     int       `db:"user_id" json:"user_id"`
	Content    string    `db:"content" json:"content"`
	Pinned     bool      `db:"pinned" json:"pinned"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// MessageView is a message annotated with the author's current username.
// The username is resolved at read time and never stored on the message.
type MessageView struct {
	Message  Message `json:"message"`
	Username string  `json:"username"`
}
