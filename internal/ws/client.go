package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendQueueSize  = 256
)

// Client is one websocket connection known to the hub.
type Client struct {
	id      string
	conn    *websocket.Conn
	gateway *Gateway
	send    chan ServerEvent
	done    chan struct{}
	closer  sync.Once
}

func newClient(conn *websocket.Conn, gw *Gateway, info ConnInfo) *Client {
	return &Client{
		id:      info.ConnID,
		conn:    conn,
		gateway: gw,
		send:    make(chan ServerEvent, sendQueueSize),
		done:    make(chan struct{}),
	}
}

// trySend queues an event for delivery without blocking. A false return
// means the queue is full and the client should be dropped.
func (c *Client) trySend(ev ServerEvent) bool {
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closer.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) readPump() {
	defer c.gateway.disconnect(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("conn_id", c.id).Msg("websocket read error")
			}
			return
		}

		var ev ClientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.trySend(ServerEvent{Type: EventError, Error: "malformed event"})
			continue
		}
		c.gateway.dispatch(c, ev)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev := <-c.send:
			payload, err := json.Marshal(ev)
			if err != nil {
				log.Error().Err(err).Str("conn_id", c.id).Msg("failed to serialize event")
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
