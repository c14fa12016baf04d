package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"event-chat-service/internal/auth"
	"event-chat-service/internal/chat"
	"event-chat-service/internal/middleware"
	"event-chat-service/internal/mocks"
	"event-chat-service/internal/models"
	"event-chat-service/internal/repositories"
	"event-chat-service/internal/ws"
)

type handlerFixture struct {
	verifier  *mocks.TokenVerifier
	events    *mocks.EventRepository
	chatrooms *mocks.ChatroomRepository
	accesses  *mocks.AccessRepository
	messages  *mocks.MessageRepository
	users     *mocks.UserRepository
	router    *gin.Engine
}

func newHandlerFixture() *handlerFixture {
	gin.SetMode(gin.TestMode)

	f := &handlerFixture{
		verifier:  new(mocks.TokenVerifier),
		events:    new(mocks.EventRepository),
		chatrooms: new(mocks.ChatroomRepository),
		accesses:  new(mocks.AccessRepository),
		messages:  new(mocks.MessageRepository),
		users:     new(mocks.UserRepository),
	}

	accessService := chat.NewAccessService(f.verifier, f.events, f.chatrooms, f.accesses, f.users)
	chatroomService := chat.NewChatroomService(f.events, f.chatrooms)
	messageService := chat.NewMessageService(f.verifier, accessService, f.chatrooms, f.messages, f.users)

	hub := ws.NewHub()
	chatHandler := NewChatHandler(chatroomService, messageService, accessService, hub, nil)
	accessHandler := NewAccessHandler(accessService, nil)

	router := gin.New()
	authMiddleware := middleware.Auth(f.verifier)
	events := router.Group("/events/:event_id", authMiddleware)
	{
		events.POST("/chat", chatHandler.CreateChatroom)
		events.GET("/chat/messages", chatHandler.GetHistory)
		events.POST("/chat/messages", chatHandler.PostMessage)
		events.POST("/chat/messages/:message_id/pin", chatHandler.TogglePin)
		events.GET("/chat/access", accessHandler.GetAccess)
		events.POST("/chat/access", accessHandler.GrantAccess)
		events.PATCH("/chat/access/:user_id", accessHandler.UpdateAccessRole)
		events.DELETE("/chat/access", accessHandler.RevokeAccess)
		events.GET("/chat/participants", accessHandler.GetParticipants)
	}
	f.router = router
	return f
}

func (f *handlerFixture) authenticate(userID int, username string) {
	f.verifier.On("ResolveIdentity", mock.Anything, "token").Return(auth.Identity{UserID: userID, Username: username}, nil)
}

func (f *handlerFixture) expectResolution(userID int, role models.Role) {
	f.events.On("GetEvent", mock.Anything, 7).Return(models.Event{ID: 7}, nil)
	f.chatrooms.On("GetChatroomByEvent", mock.Anything, 7).Return(models.Chatroom{ID: 3, EventID: 7}, nil)
	if role == "" {
		f.accesses.On("GetAccess", mock.Anything, userID, 3).Return(models.Access{}, repositories.ErrAccessNotFound)
	} else {
		f.accesses.On("GetAccess", mock.Anything, userID, 3).Return(models.Access{ID: 11, UserID: userID, ChatroomID: 3, Role: role}, nil)
	}
}

func (f *handlerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer token")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestCreateChatroomEndpoint(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")
	f.events.On("GetEvent", mock.Anything, 7).Return(models.Event{ID: 7}, nil)
	f.chatrooms.On("CreateChatroom", mock.Anything, 7).Return(models.Chatroom{ID: 3, EventID: 7}, nil)

	w := f.do(http.MethodPost, "/events/7/chat", "")

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateChatroomEndpointConflict(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")
	f.events.On("GetEvent", mock.Anything, 7).Return(models.Event{ID: 7}, nil)
	f.chatrooms.On("CreateChatroom", mock.Anything, 7).Return(models.Chatroom{}, repositories.ErrChatroomExists)

	w := f.do(http.MethodPost, "/events/7/chat", "")

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateChatroomEndpointMissingEvent(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")
	f.events.On("GetEvent", mock.Anything, 7).Return(models.Event{}, repositories.ErrEventNotFound)

	w := f.do(http.MethodPost, "/events/7/chat", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostMessageEndpoint(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")
	f.expectResolution(1, models.RoleWrite)
	f.messages.On("CreateMessage", mock.Anything, 3, 1, "hello").Return(models.Message{ID: 21, ChatroomID: 3, UserID: 1, Content: "hello"}, nil)

	w := f.do(http.MethodPost, "/events/7/chat/messages", `{"content":"hello"}`)

	assert.Equal(t, http.StatusCreated, w.Code)

	var view models.MessageView
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "hello", view.Message.Content)
	assert.Equal(t, "alice", view.Username)
}

func TestPostMessageEndpointForbiddenForReader(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")
	f.expectResolution(1, models.RoleRead)

	w := f.do(http.MethodPost, "/events/7/chat/messages", `{"content":"hello"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPostMessageEndpointEmptyContent(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")

	w := f.do(http.MethodPost, "/events/7/chat/messages", `{"content":""}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistoryEndpoint(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")
	f.expectResolution(1, models.RoleRead)
	f.messages.On("ListMessagesByChatroom", mock.Anything, 3).Return([]models.Message{
		{ID: 1, ChatroomID: 3, UserID: 1, Content: "hi"},
	}, nil)
	f.users.On("GetUsersByIDs", mock.Anything, []int{1}).Return([]models.User{{ID: 1, Username: "alice"}}, nil)

	w := f.do(http.MethodGet, "/events/7/chat/messages", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Messages []models.MessageView `json:"messages"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Messages, 1)
}

func TestGetHistoryEndpointDeniedWithoutGrant(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")
	f.expectResolution(1, "")

	w := f.do(http.MethodGet, "/events/7/chat/messages", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetHistoryEndpointMissingChatroomLooksForbidden(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")
	f.events.On("GetEvent", mock.Anything, 7).Return(models.Event{ID: 7}, nil)
	f.chatrooms.On("GetChatroomByEvent", mock.Anything, 7).Return(models.Chatroom{}, repositories.ErrChatroomNotFound)

	w := f.do(http.MethodGet, "/events/7/chat/messages", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTogglePinEndpoint(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")
	f.messages.On("GetMessage", mock.Anything, 21).Return(models.Message{ID: 21, ChatroomID: 3, UserID: 2, Pinned: false}, nil)
	f.chatrooms.On("GetChatroom", mock.Anything, 3).Return(models.Chatroom{ID: 3, EventID: 7}, nil)
	f.accesses.On("GetAccess", mock.Anything, 1, 3).Return(models.Access{ID: 11, UserID: 1, ChatroomID: 3, Role: models.RoleAdmin}, nil)
	f.messages.On("UpdateMessagePinned", mock.Anything, 21, true).Return(models.Message{ID: 21, ChatroomID: 3, UserID: 2, Pinned: true}, nil)
	f.users.On("GetUser", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil)

	w := f.do(http.MethodPost, "/events/7/chat/messages/21/pin", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var view models.MessageView
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.True(t, view.Message.Pinned)
}

func TestTogglePinEndpointForbidden(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")
	f.messages.On("GetMessage", mock.Anything, 21).Return(models.Message{ID: 21, ChatroomID: 3, UserID: 2}, nil)
	f.chatrooms.On("GetChatroom", mock.Anything, 3).Return(models.Chatroom{ID: 3, EventID: 7}, nil)
	f.accesses.On("GetAccess", mock.Anything, 1, 3).Return(models.Access{ID: 11, UserID: 1, ChatroomID: 3, Role: models.RoleWrite}, nil)

	w := f.do(http.MethodPost, "/events/7/chat/messages/21/pin", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTogglePinEndpointWrongEvent(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")
	f.messages.On("GetMessage", mock.Anything, 21).Return(models.Message{ID: 21, ChatroomID: 3, UserID: 2}, nil)
	f.chatrooms.On("GetChatroom", mock.Anything, 3).Return(models.Chatroom{ID: 3, EventID: 7}, nil)

	w := f.do(http.MethodPost, "/events/8/chat/messages/21/pin", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	f.messages.AssertNotCalled(t, "UpdateMessagePinned", mock.Anything, mock.Anything, mock.Anything)
}

func TestEndpointsRejectMissingAuth(t *testing.T) {
	f := newHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/events/7/chat/messages", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvalidEventIDParam(t *testing.T) {
	f := newHandlerFixture()
	f.authenticate(1, "alice")

	w := f.do(http.MethodPost, "/events/abc/chat", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
