package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"event-chat-service/internal/auth"
	"event-chat-service/internal/mocks"
	"event-chat-service/internal/models"
	"event-chat-service/internal/repositories"
)

type messageFixture struct {
	verifier  *mocks.TokenVerifier
	events    *mocks.EventRepository
	chatrooms *mocks.ChatroomRepository
	accesses  *mocks.AccessRepository
	messages  *mocks.MessageRepository
	users     *mocks.UserRepository
	service   *MessageService
}

func newMessageFixture() *messageFixture {
	f := &messageFixture{
		verifier:  new(mocks.TokenVerifier),
		events:    new(mocks.EventRepository),
		chatrooms: new(mocks.ChatroomRepository),
		accesses:  new(mocks.AccessRepository),
		messages:  new(mocks.MessageRepository),
		users:     new(mocks.UserRepository),
	}
	access := NewAccessService(f.verifier, f.events, f.chatrooms, f.accesses, f.users)
	f.service = NewMessageService(f.verifier, access, f.chatrooms, f.messages, f.users)
	return f
}

func (f *messageFixture) expectResolution(userID int, role models.Role) {
	f.verifier.On("ResolveIdentity", mock.Anything, "token").Return(auth.Identity{UserID: userID, Username: "alice"}, nil)
	f.events.On("GetEvent", mock.Anything, 7).Return(models.Event{ID: 7}, nil)
	f.chatrooms.On("GetChatroomByEvent", mock.Anything, 7).Return(models.Chatroom{ID: 3, EventID: 7}, nil)
	if role == "" {
		f.accesses.On("GetAccess", mock.Anything, userID, 3).Return(models.Access{}, repositories.ErrAccessNotFound)
	} else {
		f.accesses.On("GetAccess", mock.Anything, userID, 3).Return(models.Access{ID: 11, UserID: userID, ChatroomID: 3, Role: role}, nil)
	}
}

func TestCreateMessage(t *testing.T) {
	f := newMessageFixture()
	f.expectResolution(1, models.RoleWrite)
	f.messages.On("CreateMessage", mock.Anything, 3, 1, "hello").Return(models.Message{ID: 21, ChatroomID: 3, UserID: 1, Content: "hello"}, nil)

	view, err := f.service.Create(context.Background(), "token", 7, "hello")

	assert.NoError(t, err)
	assert.Equal(t, "hello", view.Message.Content)
	assert.Equal(t, "alice", view.Username)
}

func TestCreateMessageRequiresSendRole(t *testing.T) {
	for _, role := range []models.Role{models.RoleRead, models.RoleNone} {
		t.Run(string(role), func(t *testing.T) {
			f := newMessageFixture()
			f.expectResolution(1, role)

			_, err := f.service.Create(context.Background(), "token", 7, "hello")

			assert.Equal(t, KindForbidden, KindOf(err))
			f.messages.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateMessageWithoutGrant(t *testing.T) {
	f := newMessageFixture()
	f.expectResolution(1, "")

	_, err := f.service.Create(context.Background(), "token", 7, "hello")

	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCreateMessageContentBounds(t *testing.T) {
	cases := []struct {
		name    string
		content string
		ok      bool
	}{
		{"empty", "", false},
		{"single rune", "a", true},
		{"at limit", strings.Repeat("x", 150), true},
		{"over limit", strings.Repeat("x", 151), false},
		{"multibyte at limit", strings.Repeat("é", 150), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newMessageFixture()
			f.expectResolution(1, models.RoleAdmin)
			if tc.ok {
				f.messages.On("CreateMessage", mock.Anything, 3, 1, tc.content).Return(models.Message{ID: 21, ChatroomID: 3, UserID: 1, Content: tc.content}, nil)
			}

			_, err := f.service.Create(context.Background(), "token", 7, tc.content)

			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, KindInvalidInput, KindOf(err))
			}
		})
	}
}

func TestTogglePin(t *testing.T) {
	f := newMessageFixture()
	f.verifier.On("ResolveIdentity", mock.Anything, "token").Return(auth.Identity{UserID: 1, Username: "alice"}, nil)
	f.messages.On("GetMessage", mock.Anything, 21).Return(models.Message{ID: 21, ChatroomID: 3, UserID: 2, Pinned: false}, nil)
	f.chatrooms.On("GetChatroom", mock.Anything, 3).Return(models.Chatroom{ID: 3, EventID: 7}, nil)
	f.accesses.On("GetAccess", mock.Anything, 1, 3).Return(models.Access{ID: 11, UserID: 1, ChatroomID: 3, Role: models.RoleAdmin}, nil)
	f.messages.On("UpdateMessagePinned", mock.Anything, 21, true).Return(models.Message{ID: 21, ChatroomID: 3, UserID: 2, Pinned: true}, nil)
	f.users.On("GetUser", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil)

	view, err := f.service.TogglePin(context.Background(), "token", 21, 7)

	assert.NoError(t, err)
	assert.True(t, view.Message.Pinned)
	assert.Equal(t, "bob", view.Username)
}

func TestTogglePinWrongEventDenied(t *testing.T) {
	f := newMessageFixture()
	f.verifier.On("ResolveIdentity", mock.Anything, "token").Return(auth.Identity{UserID: 1, Username: "alice"}, nil)
	f.messages.On("GetMessage", mock.Anything, 21).Return(models.Message{ID: 21, ChatroomID: 3, UserID: 2, Pinned: false}, nil)
	f.chatrooms.On("GetChatroom", mock.Anything, 3).Return(models.Chatroom{ID: 3, EventID: 7}, nil)
	f.accesses.On("GetAccess", mock.Anything, 1, 3).Return(models.Access{ID: 11, UserID: 1, ChatroomID: 3, Role: models.RoleAdmin}, nil)

	_, err := f.service.TogglePin(context.Background(), "token", 21, 99)

	assert.Equal(t, KindForbidden, KindOf(err))
	f.messages.AssertNotCalled(t, "UpdateMessagePinned", mock.Anything, mock.Anything, mock.Anything)
}

func TestTogglePinUnpins(t *testing.T) {
	f := newMessageFixture()
	f.verifier.On("ResolveIdentity", mock.Anything, "token").Return(auth.Identity{UserID: 1, Username: "alice"}, nil)
	f.messages.On("GetMessage", mock.Anything, 21).Return(models.Message{ID: 21, ChatroomID: 3, UserID: 2, Pinned: true}, nil)
	f.chatrooms.On("GetChatroom", mock.Anything, 3).Return(models.Chatroom{ID: 3, EventID: 7}, nil)
	f.accesses.On("GetAccess", mock.Anything, 1, 3).Return(models.Access{ID: 11, UserID: 1, ChatroomID: 3, Role: models.RoleOrganizer}, nil)
	f.messages.On("UpdateMessagePinned", mock.Anything, 21, false).Return(models.Message{ID: 21, ChatroomID: 3, UserID: 2, Pinned: false}, nil)
	f.users.On("GetUser", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil)

	view, err := f.service.TogglePin(context.Background(), "token", 21, 7)

	assert.NoError(t, err)
	assert.False(t, view.Message.Pinned)
}

func TestTogglePinRequiresModerator(t *testing.T) {
	f := newMessageFixture()
	f.verifier.On("ResolveIdentity", mock.Anything, "token").Return(auth.Identity{UserID: 1, Username: "alice"}, nil)
	f.messages.On("GetMessage", mock.Anything, 21).Return(models.Message{ID: 21, ChatroomID: 3, UserID: 2}, nil)
	f.chatrooms.On("GetChatroom", mock.Anything, 3).Return(models.Chatroom{ID: 3, EventID: 7}, nil)
	f.accesses.On("GetAccess", mock.Anything, 1, 3).Return(models.Access{ID: 11, UserID: 1, ChatroomID: 3, Role: models.RoleWrite}, nil)

	_, err := f.service.TogglePin(context.Background(), "token", 21, 7)

	assert.Equal(t, KindForbidden, KindOf(err))
	f.messages.AssertNotCalled(t, "UpdateMessagePinned", mock.Anything, mock.Anything, mock.Anything)
}

func TestTogglePinMissingMessage(t *testing.T) {
	f := newMessageFixture()
	f.verifier.On("ResolveIdentity", mock.Anything, "token").Return(auth.Identity{UserID: 1, Username: "alice"}, nil)
	f.messages.On("GetMessage", mock.Anything, 21).Return(models.Message{}, repositories.ErrMessageNotFound)

	_, err := f.service.TogglePin(context.Background(), "token", 21, 7)

	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestHistory(t *testing.T) {
	f := newMessageFixture()
	f.chatrooms.On("GetChatroomByEvent", mock.Anything, 7).Return(models.Chatroom{ID: 3, EventID: 7}, nil)
	f.messages.On("ListMessagesByChatroom", mock.Anything, 3).Return([]models.Message{
		{ID: 1, ChatroomID: 3, UserID: 1, Content: "first"},
		{ID: 2, ChatroomID: 3, UserID: 2, Content: "second"},
		{ID: 3, ChatroomID: 3, UserID: 1, Content: "third"},
	}, nil)
	f.users.On("GetUsersByIDs", mock.Anything, []int{1, 2}).Return([]models.User{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
	}, nil)

	views, err := f.service.History(context.Background(), 7)

	assert.NoError(t, err)
	assert.Len(t, views, 3)
	assert.Equal(t, "first", views[0].Message.Content)
	assert.Equal(t, "alice", views[0].Username)
	assert.Equal(t, "bob", views[1].Username)
	assert.Equal(t, "alice", views[2].Username)
}

func TestHistoryEmpty(t *testing.T) {
	f := newMessageFixture()
	f.chatrooms.On("GetChatroomByEvent", mock.Anything, 7).Return(models.Chatroom{ID: 3, EventID: 7}, nil)
	f.messages.On("ListMessagesByChatroom", mock.Anything, 3).Return([]models.Message{}, nil)

	views, err := f.service.History(context.Background(), 7)

	assert.NoError(t, err)
	assert.Empty(t, views)
	f.users.AssertNotCalled(t, "GetUsersByIDs", mock.Anything, mock.Anything)
}

func TestHistoryMissingChatroomIsForbidden(t *testing.T) {
	f := newMessageFixture()
	f.chatrooms.On("GetChatroomByEvent", mock.Anything, 7).Return(models.Chatroom{}, repositories.ErrChatroomNotFound)

	_, err := f.service.History(context.Background(), 7)

	assert.Equal(t, KindForbidden, KindOf(err))
}
