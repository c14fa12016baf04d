package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"event-chat-service/internal/chat"
)

// respondError maps a chat core error to an HTTP response. Denials stay
// generic; storage detail is logged but never exposed.
func respondError(c *gin.Context, err error) {
	switch chat.KindOf(err) {
	case chat.KindUnauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case chat.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	case chat.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case chat.KindInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case chat.KindAlreadyExists:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case chat.KindRateLimited:
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("chat operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// respondDenying is respondError with the uniform collapse applied: a
// missing event or chatroom answers exactly like a missing permission.
func respondDenying(c *gin.Context, err error) {
	if chat.KindOf(err) == chat.KindNotFound {
		respondError(c, chat.Deny())
		return
	}
	respondError(c, err)
}
