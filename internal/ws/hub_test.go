package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testClient(id string) *Client {
	return &Client{
		id:   id,
		send: make(chan ServerEvent, sendQueueSize),
		done: make(chan struct{}),
	}
}

func drain(c *Client) []ServerEvent {
	var events []ServerEvent
	for {
		select {
		case ev := <-c.send:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := testClient("a")

	hub.Join(42, c)
	hub.Join(42, c)

	assert.Equal(t, 1, hub.RoomSize(42))
}

func TestBroadcastReachesRoomMembers(t *testing.T) {
	hub := NewHub()
	a := testClient("a")
	b := testClient("b")
	hub.Join(42, a)
	hub.Join(42, b)

	hub.Broadcast(42, ServerEvent{Type: EventMessage, EventID: 42})

	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
}

func TestBroadcastIsScopedToRoom(t *testing.T) {
	hub := NewHub()
	a := testClient("a")
	b := testClient("b")
	hub.Join(42, a)
	hub.Join(43, b)

	hub.Broadcast(42, ServerEvent{Type: EventMessage, EventID: 42})

	assert.Len(t, drain(a), 1)
	assert.Empty(t, drain(b))
}

func TestLeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	c := testClient("a")
	hub.Join(42, c)
	hub.Leave(42, c)

	hub.Broadcast(42, ServerEvent{Type: EventMessage, EventID: 42})

	assert.Empty(t, drain(c))
	assert.Equal(t, 0, hub.RoomSize(42))
}

func TestLeaveAll(t *testing.T) {
	hub := NewHub()
	c := testClient("a")
	hub.Join(42, c)
	hub.Join(43, c)

	hub.LeaveAll(c)

	assert.Equal(t, 0, hub.RoomSize(42))
	assert.Equal(t, 0, hub.RoomSize(43))
}

func TestBroadcastToEmptyRoom(t *testing.T) {
	hub := NewHub()

	hub.Broadcast(99, ServerEvent{Type: EventMessage, EventID: 99})

	assert.Equal(t, 0, hub.RoomSize(99))
}
