package chat

import (
	"context"
	"errors"

	"event-chat-service/internal/models"
	"event-chat-service/internal/repositories"
)

// ChatroomService manages the 1:1 event-chatroom lifecycle.
type ChatroomService struct {
	events    repositories.EventRepository
	chatrooms repositories.ChatroomRepository
}

// NewChatroomService constructs a ChatroomService.
func NewChatroomService(events repositories.EventRepository, chatrooms repositories.ChatroomRepository) *ChatroomService {
	return &ChatroomService{events: events, chatrooms: chatrooms}
}

// Ensure creates the chatroom for an event. A second attempt for the same
// event surfaces as AlreadyExists, backed by the unique constraint on
// event_id.
func (s *ChatroomService) Ensure(ctx context.Context, eventID int) (models.Chatroom, error) {
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return models.Chatroom{}, NotFound("event not found")
		}
		return models.Chatroom{}, StorageFailure(err)
	}

	room, err := s.chatrooms.CreateChatroom(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatroomExists) {
			return models.Chatroom{}, AlreadyExists("event already has a chatroom")
		}
		return models.Chatroom{}, StorageFailure(err)
	}
	return room, nil
}

// GetByEvent is a side-effect free lookup. Absence is reported as a nil
// chatroom, never as an error.
func (s *ChatroomService) GetByEvent(ctx context.Context, eventID int) (*models.Chatroom, error) {
	room, err := s.chatrooms.GetChatroomByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatroomNotFound) {
			return nil, nil
		}
		return nil, StorageFailure(err)
	}
	return &room, nil
}
