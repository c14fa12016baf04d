package models

// Access grants a user a role within a chatroom. (user_id, chatroom_id) is
// unique, so a user holds at most one role per chatroom.
type Access struct {
	ID         int  `db:"id" json:"id"`
	UserID     int  `db:"user_id" json:"user_id"`
	ChatroomID int  `db:"chatroom_id" json:"chatroom_id"`
	Role       Role `db:"role" json:"role"`
}

// Participant is an access grant joined with the holder's identity, as
// returned by the participants read path.
type Participant struct {
	UserID   int    `db:"user_id" json:"user_id"`
	Username string `db:"username" json:"username"`
	Role     Role   `db:"role" json:"role"`
}
