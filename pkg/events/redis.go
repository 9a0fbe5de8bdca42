package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"team-dashboard/backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBus publishes through a redis channel so every server process sees
// every event. Local subscribers are only invoked for messages read back from
// redis, which keeps delivery single even for the publishing process.
type RedisBus struct {
	client  *redis.Client
	channel string
	local   *LocalBus
	pubsub  *redis.PubSub
	log     *logger.Logger
	done    chan struct{}
	once    sync.Once
}

// NewRedisBus subscribes to channel and starts the receive loop
func NewRedisBus(ctx context.Context, client *redis.Client, channel string, log *logger.Logger) (*RedisBus, error) {
	if log == nil {
		log = logger.Discard()
	}
	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	b := &RedisBus{
		client:  client,
		channel: channel,
		local:   NewLocalBus(),
		pubsub:  pubsub,
		log:     log,
		done:    make(chan struct{}),
	}
	go b.receive()
	return b, nil
}

func (b *RedisBus) receive() {
	defer close(b.done)

	for msg := range b.pubsub.Channel() {
		var e Event
		if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
			b.log.Warn("Dropping undecodable event", "channel", b.channel, "error", err.Error())
			continue
		}
		b.local.dispatch(e)
	}
}

func (b *RedisBus) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBus) Subscribe(topic string, h Handler) func() {
	return b.local.Subscribe(topic, h)
}

func (b *RedisBus) Close() error {
	var err error
	b.once.Do(func() {
		err = b.pubsub.Close()
		<-b.done
		_ = b.local.Close()
	})
	return err
}
