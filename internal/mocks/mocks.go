package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"event-chat-service/internal/auth"
	"event-chat-service/internal/models"
	"event-chat-service/internal/repositories"
	"event-chat-service/internal/telemetry"
)

// UserRepository mocks repositories.UserRepository.
type UserRepository struct {
	mock.Mock
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepository) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepository) GetUsersByIDs(ctx context.Context, ids []int) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var users []models.User
	if args.Get(0) != nil {
		users = args.Get(0).([]models.User)
	}
	return users, args.Error(1)
}

// EventRepository mocks repositories.EventRepository.
type EventRepository struct {
	mock.Mock
}

var _ repositories.EventRepository = (*EventRepository)(nil)

func (m *EventRepository) GetEvent(ctx context.Context, eventID int) (models.Event, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(models.Event), args.Error(1)
}

// ChatroomRepository mocks repositories.ChatroomRepository.
type ChatroomRepository struct {
	mock.Mock
}

var _ repositories.ChatroomRepository = (*ChatroomRepository)(nil)

func (m *ChatroomRepository) CreateChatroom(ctx context.Context, eventID int) (models.Chatroom, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(models.Chatroom), args.Error(1)
}

func (m *ChatroomRepository) GetChatroom(ctx context.Context, chatroomID int) (models.Chatroom, error) {
	args := m.Called(ctx, chatroomID)
	return args.Get(0).(models.Chatroom), args.Error(1)
}

func (m *ChatroomRepository) GetChatroomByEvent(ctx context.Context, eventID int) (models.Chatroom, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(models.Chatroom), args.Error(1)
}

// AccessRepository mocks repositories.AccessRepository.
type AccessRepository struct {
	mock.Mock
}

var _ repositories.AccessRepository = (*AccessRepository)(nil)

func (m *AccessRepository) GetAccess(ctx context.Context, userID, chatroomID int) (models.Access, error) {
	args := m.Called(ctx, userID, chatroomID)
	return args.Get(0).(models.Access), args.Error(1)
}

func (m *AccessRepository) CreateAccess(ctx context.Context, userID, chatroomID int, role models.Role) (models.Access, error) {
	args := m.Called(ctx, userID, chatroomID, role)
	return args.Get(0).(models.Access), args.Error(1)
}

func (m *AccessRepository) UpdateAccessRole(ctx context.Context, accessID int, role models.Role) (models.Access, error) {
	args := m.Called(ctx, accessID, role)
	return args.Get(0).(models.Access), args.Error(1)
}

func (m *AccessRepository) DeleteAccess(ctx context.Context, accessID int) error {
	args := m.Called(ctx, accessID)
	return args.Error(0)
}

func (m *AccessRepository) ListParticipants(ctx context.Context, chatroomID int) ([]models.Participant, error) {
	args := m.Called(ctx, chatroomID)
	var participants []models.Participant
	if args.Get(0) != nil {
		participants = args.Get(0).([]models.Participant)
	}
	return participants, args.Error(1)
}

// MessageRepository mocks repositories.MessageRepository.
type MessageRepository struct {
	mock.Mock
}

var _ repositories.MessageRepository = (*MessageRepository)(nil)

func (m *MessageRepository) CreateMessage(ctx context.Context, chatroomID, userID int, content string) (models.Message, error) {
	args := m.Called(ctx, chatroomID, userID, content)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *MessageRepository) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *MessageRepository) UpdateMessagePinned(ctx context.Context, messageID int, pinned bool) (models.Message, error) {
	args := m.Called(ctx, messageID, pinned)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *MessageRepository) ListMessagesByChatroom(ctx context.Context, chatroomID int) ([]models.Message, error) {
	args := m.Called(ctx, chatroomID)
	var messages []models.Message
	if args.Get(0) != nil {
		messages = args.Get(0).([]models.Message)
	}
	return messages, args.Error(1)
}

// TokenVerifier mocks auth.TokenVerifier.
type TokenVerifier struct {
	mock.Mock
}

var _ auth.TokenVerifier = (*TokenVerifier)(nil)

func (m *TokenVerifier) ResolveIdentity(ctx context.Context, token string) (auth.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.Identity), args.Error(1)
}

// Publisher mocks telemetry.Publisher.
type Publisher struct {
	mock.Mock
}

var _ telemetry.Publisher = (*Publisher)(nil)

func (m *Publisher) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *Publisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
