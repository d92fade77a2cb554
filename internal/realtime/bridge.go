package realtime

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
)

// Publisher is the side of the bridge the notification writer and the
// read-state synchronizer talk to.
type Publisher interface {
	Publish(ctx context.Context, userID uint, ev Event) error
}

// Bridge connects the per-user relay channels to Redis pub/sub. Events
// published on any instance reach every instance's hub, so all of a
// user's sessions converge regardless of which instance they are
// attached to. Delivery is at-most-once; offline subscribers are not
// replayed to.
type Bridge struct {
	rdb *redis.Client
	hub *Hub
}

// NewBridge creates a bridge over the given Redis client and hub.
func NewBridge(rdb *redis.Client, hub *Hub) *Bridge {
	return &Bridge{rdb: rdb, hub: hub}
}

// Publish encodes the event and pushes it onto the user's channel.
func (b *Bridge) Publish(ctx context.Context, userID uint, ev Event) error {
	payload, err := Encode(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, ChannelFor(userID), payload).Err()
}

// Run subscribes to every per-user channel and forwards payloads to the
// local hub. Blocks until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	pubsub := b.rdb.PSubscribe(ctx, "notifications:user:*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID, err := userIDFromChannel(msg.Channel)
			if err != nil {
				log.Printf("realtime: ignoring message on malformed channel %q", msg.Channel)
				continue
			}
			b.hub.Deliver(userID, []byte(msg.Payload))
		}
	}
}

func userIDFromChannel(channel string) (uint, error) {
	idx := strings.LastIndex(channel, ":")
	id, err := strconv.ParseUint(channel[idx+1:], 10, 32)
	return uint(id), err
}
