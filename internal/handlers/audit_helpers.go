package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"event-chat-service/internal/middleware"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func actorIDFromContext(c *gin.Context) *int64 {
	if userID := c.GetInt(middleware.ContextUserID); userID != 0 {
		value := int64(userID)
		return &value
	}
	return nil
}
