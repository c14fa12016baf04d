package models

// Role governs what a user may do inside a chatroom. The set is closed;
// anything outside it is rejected at the boundary.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleWrite     Role = "write"
	RoleRead      Role = "read"
	RoleNone      Role = "none"
)

// ParseRole validates a raw role value against the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleOrganizer, RoleWrite, RoleRead, RoleNone:
		return Role(s), true
	}
	return "", false
}

// CanRead reports whether the role may fetch message history.
func (r Role) CanRead() bool {
	return r == RoleAdmin || r == RoleOrganizer || r == RoleWrite || r == RoleRead
}

// CanSend reports whether the role may post messages.
func (r Role) CanSend() bool {
	return r == RoleAdmin || r == RoleOrganizer || r == RoleWrite
}

// CanModerate reports whether the role may toggle pins and manage access
// grants for other users.
func (r Role) CanModerate() bool {
	return r == RoleAdmin || r == RoleOrganizer
}

// Assignable reports whether the role may be handed out through a grant or
// role update. Organizer is set when the event is created and is never
// assignable afterwards.
func (r Role) Assignable() bool {
	return r == RoleAdmin || r == RoleWrite || r == RoleRead || r == RoleNone
}
