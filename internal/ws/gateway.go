package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"event-chat-service/internal/chat"
	"event-chat-service/internal/observability"
	"event-chat-service/internal/ratelimit"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Gateway owns the websocket surface: it upgrades connections and routes
// inbound events to the chat core, fanning results out through the hub.
// Authorization happens per event, not per connection; every send and pin
// frame carries its own token.
type Gateway struct {
	hub      *Hub
	messages *chat.MessageService
	access   *chat.AccessService
	limiter  *ratelimit.Limiter
}

// NewGateway constructs a Gateway.
func NewGateway(hub *Hub, messages *chat.MessageService, access *chat.AccessService, limiter *ratelimit.Limiter) *Gateway {
	return &Gateway{hub: hub, messages: messages, access: access, limiter: limiter}
}

// Handle upgrades the connection and starts its pumps.
func (g *Gateway) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("event-chat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      uuid.NewString(),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	client := newClient(conn, g, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	log.Info().Str("conn_id", info.ConnID).Str("ip", info.IP).Msg("websocket connected")
	_ = observability.PublishEvent(ctx, "ws_events.chat", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload(info, 0, ""),
	}, observability.BuildHeaders(info.RequestID, info.TraceID))

	go client.writePump()
	go func() {
		client.readPump()
		duration := time.Since(info.ConnectedAt)
		log.Info().Str("conn_id", info.ConnID).Dur("duration", duration).Msg("websocket disconnected")
		_ = observability.PublishEvent(context.Background(), "ws_events.chat", observability.EventEnvelope{
			EventType: "ws_events",
			EventName: "ws_disconnect",
			Payload:   wsEventPayload(info, duration.Milliseconds(), ""),
		}, observability.BuildHeaders(info.RequestID, info.TraceID))
	}()
}

// dispatch routes one inbound frame. Errors are reported to the sending
// connection only, never broadcast.
func (g *Gateway) dispatch(c *Client, ev ClientEvent) {
	ctx := context.Background()
	observability.IncWSEvent(ev.Type)

	switch ev.Type {
	case EventJoin:
		g.hub.Join(ev.EventID, c)
		// The joined notice goes to the whole room, the joiner included.
		g.hub.Broadcast(ev.EventID, ServerEvent{Type: EventJoined, EventID: ev.EventID})

	case EventLeave:
		g.hub.Leave(ev.EventID, c)

	case EventSend:
		view, err := g.messages.Create(ctx, ev.Token, ev.EventID, ev.Content)
		if err != nil {
			g.reportError(c, err)
			return
		}
		observability.IncBroadcast()
		g.hub.Broadcast(ev.EventID, ServerEvent{
			Type:     EventMessage,
			EventID:  ev.EventID,
			Message:  &view.Message,
			Username: view.Username,
		})

	case EventPin:
		// The inbound event_id is validated against the message's own
		// chatroom before the toggle, so it is safe as a broadcast target.
		view, err := g.messages.TogglePin(ctx, ev.Token, ev.MessageID, ev.EventID)
		if err != nil {
			g.reportError(c, err)
			return
		}
		observability.IncBroadcast()
		g.hub.Broadcast(ev.EventID, ServerEvent{
			Type:     EventPinned,
			EventID:  ev.EventID,
			Message:  &view.Message,
			Username: view.Username,
		})

	case EventParticipants:
		// Over the limit the trigger is dropped silently; the connection
		// stays open.
		if !g.limiter.Allow(c.id) {
			observability.IncRateLimited("ws")
			return
		}
		participants, err := g.access.Participants(ctx, ev.EventID)
		if err != nil {
			g.reportError(c, err)
			return
		}
		g.hub.Broadcast(ev.EventID, ServerEvent{
			Type:         EventParticipantList,
			EventID:      ev.EventID,
			Participants: participants,
		})

	default:
		c.trySend(ServerEvent{Type: EventError, Error: "unknown event type"})
	}
}

func (g *Gateway) reportError(c *Client, err error) {
	reason := "not allowed"
	switch chat.KindOf(err) {
	case chat.KindUnauthenticated:
		reason = "invalid token"
	case chat.KindInvalidInput:
		reason = err.Error()
	case chat.KindNotFound:
		reason = "not found"
	case chat.KindForbidden:
		reason = "not allowed"
	default:
		log.Error().Err(err).Str("conn_id", c.id).Msg("chat operation failed")
		reason = "internal error"
	}
	c.trySend(ServerEvent{Type: EventError, Error: reason})
}

// disconnect tears the client down exactly once: membership, limiter state
// and metrics all go with it.
func (g *Gateway) disconnect(c *Client) {
	g.hub.LeaveAll(c)
	g.limiter.Forget(c.id)
	observability.DecWSActive()
	observability.IncWSEvent("ws_disconnect")
	c.close()
}

func wsEventPayload(info ConnInfo, durationMS int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"conn_id":     info.ConnID,
		"ip":          info.IP,
		"duration_ms": durationMS,
		"reason":      reason,
	}
}
