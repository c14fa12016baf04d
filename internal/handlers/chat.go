package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"event-chat-service/internal/chat"
	"event-chat-service/internal/middleware"
	"event-chat-service/internal/telemetry"
	"event-chat-service/internal/ws"
)

// ChatHandler exposes the chat core over HTTP.
type ChatHandler struct {
	chatrooms *chat.ChatroomService
	messages  *chat.MessageService
	access    *chat.AccessService
	hub       *ws.Hub
	audit     *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chatrooms *chat.ChatroomService, messages *chat.MessageService, access *chat.AccessService, hub *ws.Hub, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		chatrooms: chatrooms,
		messages:  messages,
		access:    access,
		hub:       hub,
		audit:     audit,
	}
}

// CreateChatroom opts an event into chat. A second call for the same event
// returns 409.
func (h *ChatHandler) CreateChatroom(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	room, err := h.chatrooms.Ensure(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, telemetry.AuditPayload{Action: "chatroom_created", EventID: eventID})
	c.JSON(http.StatusCreated, room)
}

// GetHistory returns the full ordered message log of the event's chatroom.
// An event without a chatroom, or one the caller holds no readable role in,
// is answered with the same denial.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	res, err := h.access.ResolveAccess(c.Request.Context(), tokenFromContext(c), eventID)
	if err != nil {
		respondDenying(c, err)
		return
	}
	if res.Access == nil || !res.Access.Role.CanRead() {
		respondError(c, chat.Deny())
		return
	}

	views, err := h.messages.History(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": views})
}

// PostMessage stores a message and broadcasts it to the event's room.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,min=1,max=150"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.messages.Create(c.Request.Context(), tokenFromContext(c), eventID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Broadcast(eventID, ws.ServerEvent{
		Type:     ws.EventMessage,
		EventID:  eventID,
		Message:  &view.Message,
		Username: view.Username,
	})
	c.JSON(http.StatusCreated, view)
}

// TogglePin flips the pinned flag of a message and broadcasts the updated
// message.
func (h *ChatHandler) TogglePin(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	view, err := h.messages.TogglePin(c.Request.Context(), tokenFromContext(c), messageID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Broadcast(eventID, ws.ServerEvent{
		Type:     ws.EventPinned,
		EventID:  eventID,
		Message:  &view.Message,
		Username: view.Username,
	})
	h.emitAudit(c, telemetry.AuditPayload{Action: "pin_toggled", EventID: eventID, Detail: strconv.Itoa(messageID)})
	c.JSON(http.StatusOK, view)
}

func (h *ChatHandler) emitAudit(c *gin.Context, payload telemetry.AuditPayload) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), payload, requestIDFromContext(c), actorIDFromContext(c))
}

func eventIDParam(c *gin.Context) (int, bool) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return 0, false
	}
	return eventID, true
}

func tokenFromContext(c *gin.Context) string {
	return c.GetString(middleware.ContextToken)
}
