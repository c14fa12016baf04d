package chat

import (
	"context"
	"errors"
	"unicode/utf8"

	"event-chat-service/internal/auth"
	"event-chat-service/internal/models"
	"event-chat-service/internal/repositories"
)

const maxContentLength = 150

// MessageService validates, persists and reads chatroom messages.
type MessageService struct {
	verifier  auth.TokenVerifier
	access    *AccessService
	chatrooms repositories.ChatroomRepository
	messages  repositories.MessageRepository
	users     repositories.UserRepository
}

// NewMessageService constructs a MessageService.
func NewMessageService(verifier auth.TokenVerifier, access *AccessService, chatrooms repositories.ChatroomRepository, messages repositories.MessageRepository, users repositories.UserRepository) *MessageService {
	return &MessageService{
		verifier:  verifier,
		access:    access,
		chatrooms: chatrooms,
		messages:  messages,
		users:     users,
	}
}

// Create persists a new message for the event's chatroom. The boundary
// validator already checks length, but this path is reachable from both the
// HTTP and the websocket surface, so the limit is enforced here again.
func (s *MessageService) Create(ctx context.Context, token string, eventID int, content string) (models.MessageView, error) {
	res, err := s.access.ResolveAccess(ctx, token, eventID)
	if err != nil {
		return models.MessageView{}, err
	}
	if res.Access == nil || !res.Access.Role.CanSend() {
		return models.MessageView{}, Deny()
	}

	if n := utf8.RuneCountInString(content); n < 1 || n > maxContentLength {
		return models.MessageView{}, InvalidInput("content must be between 1 and 150 characters")
	}

	msg, err := s.messages.CreateMessage(ctx, res.Chatroom.ID, res.Identity.UserID, content)
	if err != nil {
		return models.MessageView{}, StorageFailure(err)
	}

	return models.MessageView{Message: msg, Username: res.Identity.Username}, nil
}

// TogglePin flips the pinned flag of a message. Only admins and organizers
// of the message's chatroom may do this. The caller names the event it is
// acting on; a message that does not belong to that event is denied before
// anything is written, so pinned broadcasts can never be routed into a
// foreign room.
func (s *MessageService) TogglePin(ctx context.Context, token string, messageID, eventID int) (models.MessageView, error) {
	identity, err := s.verifier.ResolveIdentity(ctx, token)
	if err != nil {
		return models.MessageView{}, Unauthenticated(err)
	}

	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return models.MessageView{}, NotFound("message not found")
		}
		return models.MessageView{}, StorageFailure(err)
	}

	room, err := s.chatrooms.GetChatroom(ctx, msg.ChatroomID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatroomNotFound) {
			return models.MessageView{}, NotFound("chatroom not found")
		}
		return models.MessageView{}, StorageFailure(err)
	}
	if room.EventID != eventID {
		return models.MessageView{}, Deny()
	}

	grant, err := s.access.RoleFor(ctx, identity.UserID, msg.ChatroomID)
	if err != nil {
		return models.MessageView{}, err
	}
	if grant == nil || !grant.Role.CanModerate() {
		return models.MessageView{}, Deny()
	}

	updated, err := s.messages.UpdateMessagePinned(ctx, messageID, !msg.Pinned)
	if err != nil {
		return models.MessageView{}, StorageFailure(err)
	}

	author, err := s.users.GetUser(ctx, updated.UserID)
	if err != nil {
		return models.MessageView{}, StorageFailure(err)
	}

	return models.MessageView{Message: updated, Username: author.Username}, nil
}

// History returns the chatroom's full message log ordered by creation time,
// each entry annotated with the author's current username. An event without
// a chatroom is indistinguishable from one the caller may not read.
func (s *MessageService) History(ctx context.Context, eventID int) ([]models.MessageView, error) {
	room, err := s.chatrooms.GetChatroomByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatroomNotFound) {
			return nil, Deny()
		}
		return nil, StorageFailure(err)
	}

	msgs, err := s.messages.ListMessagesByChatroom(ctx, room.ID)
	if err != nil {
		return nil, StorageFailure(err)
	}

	authorIDs := make([]int, 0, len(msgs))
	seen := map[int]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.UserID]; !ok {
			seen[m.UserID] = struct{}{}
			authorIDs = append(authorIDs, m.UserID)
		}
	}

	usernameByID := map[int]string{}
	if len(authorIDs) > 0 {
		users, err := s.users.GetUsersByIDs(ctx, authorIDs)
		if err != nil {
			return nil, StorageFailure(err)
		}
		for _, u := range users {
			usernameByID[u.ID] = u.Username
		}
	}

	views := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, models.MessageView{Message: m, Username: usernameByID[m.UserID]})
	}
	return views, nil
}
