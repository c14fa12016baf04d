package ws

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub is the room membership registry: event id → set of clients. It is
// independent of the transport so the realtime layer is testable without a
// live network stack. Join, leave and broadcast are atomic with respect to
// one another for the same room.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[int]map[*Client]struct{}
	joined map[*Client]map[int]struct{}
	bridge *Bridge
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[int]map[*Client]struct{}),
		joined: make(map[*Client]map[int]struct{}),
	}
}

// AttachBridge mirrors future broadcasts across instances.
func (h *Hub) AttachBridge(b *Bridge) {
	h.bridge = b
}

// Join adds the client to the event's room. Re-joining is a no-op.
func (h *Hub) Join(eventID int, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[eventID]; !ok {
		h.rooms[eventID] = make(map[*Client]struct{})
	}
	h.rooms[eventID][c] = struct{}{}
	if _, ok := h.joined[c]; !ok {
		h.joined[c] = make(map[int]struct{})
	}
	h.joined[c][eventID] = struct{}{}
}

// Leave removes the client from the event's room.
func (h *Hub) Leave(eventID int, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(eventID, c)
}

// LeaveAll removes the client from every room it joined, typically on
// disconnect.
func (h *Hub) LeaveAll(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for eventID := range h.joined[c] {
		h.remove(eventID, c)
	}
}

// remove must be called with the write lock held.
func (h *Hub) remove(eventID int, c *Client) {
	if conns, ok := h.rooms[eventID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, eventID)
		}
	}
	if rooms, ok := h.joined[c]; ok {
		delete(rooms, eventID)
		if len(rooms) == 0 {
			delete(h.joined, c)
		}
	}
}

// Broadcast delivers the event to every client currently joined to the room
// and mirrors it through the bridge when one is attached. Delivery is
// best-effort: a client whose queue is full is disconnected rather than
// blocking the room.
func (h *Hub) Broadcast(eventID int, ev ServerEvent) {
	h.deliverLocal(eventID, ev)
	if h.bridge != nil {
		if err := h.bridge.publish(context.Background(), eventID, ev); err != nil {
			log.Error().Err(err).Int("event_id", eventID).Msg("bridge publish failed")
		}
	}
}

func (h *Hub) deliverLocal(eventID int, ev ServerEvent) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[eventID]))
	for c := range h.rooms[eventID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	var stalled []*Client
	for _, c := range targets {
		if !c.trySend(ev) {
			stalled = append(stalled, c)
		}
	}
	for _, c := range stalled {
		log.Warn().Str("conn_id", c.id).Msg("send queue full, dropping client")
		h.LeaveAll(c)
		c.close()
	}
}

// RoomSize returns the number of clients currently joined to the room.
func (h *Hub) RoomSize(eventID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[eventID])
}
