package ws

import "event-chat-service/internal/models"

// Inbound event types.
const (
	EventJoin         = "join"
	EventLeave        = "leave"
	EventSend         = "send"
	EventPin          = "pin"
	EventParticipants = "participants"
)

// Outbound event types.
const (
	EventMessage         = "message"
	EventPinned          = "pinned"
	EventJoined          = "joined"
	EventParticipantList = "participant_list"
	EventError           = "error"
)

// ClientEvent is a single inbound frame from a connection.
type ClientEvent struct {
	Type      string `json:"type"`
	Token     string `json:"token,omitempty"`
	EventID   int    `json:"event_id,omitempty"`
	MessageID int    `json:"message_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// ServerEvent is an outbound frame, either broadcast to a room or sent to a
// single connection.
type ServerEvent struct {
	Type         string               `json:"type"`
	EventID      int                  `json:"event_id,omitempty"`
	Message      *models.Message      `json:"message,omitempty"`
	Username     string               `json:"username,omitempty"`
	Participants []models.Participant `json:"participants,omitempty"`
	Error        string               `json:"error,omitempty"`
}
