package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const bridgeChannel = "chat:broadcast"

// Bridge mirrors room broadcasts across service instances through Redis
// pub/sub, so clients joined to the same room on different instances see
// the same traffic. Frames originating from this instance are skipped on
// receipt.
type Bridge struct {
	rdb    *redis.Client
	origin string
}

type bridgeFrame struct {
	Origin  string      `json:"origin"`
	EventID int         `json:"event_id"`
	Event   ServerEvent `json:"event"`
}

// NewBridge constructs a Bridge.
func NewBridge(rdb *redis.Client) *Bridge {
	return &Bridge{rdb: rdb, origin: uuid.NewString()}
}

func (b *Bridge) publish(ctx context.Context, eventID int, ev ServerEvent) error {
	payload, err := json.Marshal(bridgeFrame{Origin: b.origin, EventID: eventID, Event: ev})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, bridgeChannel, payload).Err()
}

// Run subscribes to the bridge channel and delivers remote broadcasts into
// the local hub until the context is cancelled.
func (b *Bridge) Run(ctx context.Context, hub *Hub) {
	pubsub := b.rdb.Subscribe(ctx, bridgeChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var frame bridgeFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				log.Error().Err(err).Msg("malformed bridge frame")
				continue
			}
			if frame.Origin == b.origin {
				continue
			}
			hub.deliverLocal(frame.EventID, frame.Event)
		case <-ctx.Done():
			return
		}
	}
}
