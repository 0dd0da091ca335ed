package realtime

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/wachat/wachat-backend/models"
)

// RedisBridge relays events through a Redis pub/sub channel so that every
// instance of the service delivers them to its own websocket clients.
//
// Emit publishes to Redis only; local delivery happens when the
// subscription (including this instance's own) receives the event. Each
// event is therefore delivered to local clients exactly once whether it
// originated here or on another instance.
type RedisBridge struct {
	rdb     *redis.Client
	hub     *Hub
	channel string
}

// NewRedisBridge wires a Redis client to the local hub.
func NewRedisBridge(rdb *redis.Client, hub *Hub, channel string) *RedisBridge {
	return &RedisBridge{rdb: rdb, hub: hub, channel: channel}
}

// Emit implements Notifier by publishing the event to the Redis channel.
// Publish failures are logged and the event is delivered to local clients
// directly, so a Redis outage degrades to in-process fan-out.
func (b *RedisBridge) Emit(event string, msg *models.Message) {
	data, err := marshalEnvelope(event, msg)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", event, err)
		return
	}
	if err := b.rdb.Publish(context.Background(), b.channel, data).Err(); err != nil {
		log.Printf("Redis publish failed, falling back to local fan-out: %v", err)
		b.hub.BroadcastRaw(event, data)
	}
}

// Listen subscribes to the relay channel and delivers every received event
// to the local hub. It blocks until ctx is cancelled.
func (b *RedisBridge) Listen(ctx context.Context) error {
	pubsub := b.rdb.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	// Fail fast if the subscription could not be established.
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var env Envelope
			if err := unmarshalEnvelope([]byte(m.Payload), &env); err != nil {
				log.Printf("Dropping malformed relay event: %v", err)
				continue
			}
			b.hub.BroadcastRaw(env.Event, []byte(m.Payload))
		}
	}
}
