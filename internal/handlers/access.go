package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"event-chat-service/internal/chat"
	"event-chat-service/internal/models"
	"event-chat-service/internal/telemetry"
)

// AccessHandler exposes access-grant operations over HTTP.
type AccessHandler struct {
	access *chat.AccessService
	audit  *telemetry.AuditEmitter
}

// NewAccessHandler builds an AccessHandler.
func NewAccessHandler(access *chat.AccessService, audit *telemetry.AuditEmitter) *AccessHandler {
	return &AccessHandler{access: access, audit: audit}
}

// GetAccess resolves the caller's grant for the event's chatroom. A caller
// without a grant gets a null access, not an error.
func (h *AccessHandler) GetAccess(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	res, err := h.access.ResolveAccess(c.Request.Context(), tokenFromContext(c), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": res.Identity.Username, "access": res.Access})
}

// GetParticipants returns the current grant holders of the event's chatroom.
func (h *AccessHandler) GetParticipants(c *gin.Context) {
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

	participants, err := h.access.Participants(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// GrantAccess hands a role to another user, named by id or by username.
func (h *AccessHandler) GrantAccess(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req struct {
		UserID   int    `json:"user_id"`
		Username string `json:"username"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	var (
		access models.Access
		err    error
	)
	switch {
	case req.UserID != 0:
		access, err = h.access.Grant(c.Request.Context(), tokenFromContext(c), eventID, req.UserID, role)
	case req.Username != "":
		access, err = h.access.GrantByUsername(c.Request.Context(), tokenFromContext(c), eventID, req.Username, role)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id or username is required"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, telemetry.AuditPayload{Action: "access_granted", EventID: eventID, TargetUserID: access.UserID, Detail: string(role)})
	c.JSON(http.StatusCreated, access)
}

// UpdateAccessRole replaces another user's role.
func (h *AccessHandler) UpdateAccessRole(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	targetUserID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	access, err := h.access.UpdateRole(c.Request.Context(), tokenFromContext(c), eventID, targetUserID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, telemetry.AuditPayload{Action: "role_updated", EventID: eventID, TargetUserID: targetUserID, Detail: string(role)})
	c.JSON(http.StatusOK, access)
}

// RevokeAccess removes the caller's own grant.
func (h *AccessHandler) RevokeAccess(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	if err := h.access.Revoke(c.Request.Context(), tokenFromContext(c), eventID); err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, telemetry.AuditPayload{Action: "access_revoked", EventID: eventID})
	c.Status(http.StatusNoContent)
}

func (h *AccessHandler) emitAudit(c *gin.Context, payload telemetry.AuditPayload) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), payload, requestIDFromContext(c), actorIDFromContext(c))
}
