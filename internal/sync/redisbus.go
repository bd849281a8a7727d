package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/tabvault/tabvault/internal/logger"
)

// Channel is the Redis pub/sub channel all reconciliation signals
// travel on.
const Channel = "tabvault:signals"

// RedisBus broadcasts signals over Redis pub/sub so clients in
// different processes (or on different machines) converge on the same
// view of a shared scope.
type RedisBus struct {
	client *redis.Client
	logger logger.Logger

	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler

	pubsub *redis.PubSub
	done   chan struct{}
}

// NewRedisBus creates a bus on the given client and starts the
// receive loop.
func NewRedisBus(ctx context.Context, client *redis.Client, log logger.Logger) (*RedisBus, error) {
	pubsub := client.Subscribe(ctx, Channel)
	// Force the subscription to be established before returning so a
	// Publish right after NewRedisBus is not lost locally.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", Channel, err)
	}

	b := &RedisBus{
		client:   client,
		logger:   log,
		handlers: make(map[int]Handler),
		pubsub:   pubsub,
		done:     make(chan struct{}),
	}
	go b.receive()
	return b, nil
}

// Publish sends the signal to every subscribed client, including this
// process.
func (b *RedisBus) Publish(ctx context.Context, s Signal) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal signal: %w", err)
	}
	if err := b.client.Publish(ctx, Channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish signal: %w", err)
	}
	return nil
}

// Subscribe registers a handler for every incoming signal.
func (b *RedisBus) Subscribe(handler Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}, nil
}

func (b *RedisBus) receive() {
	defer close(b.done)
	ch := b.pubsub.Channel()
	for msg := range ch {
		var s Signal
		if err := json.Unmarshal([]byte(msg.Payload), &s); err != nil {
			b.logger.Warn("dropping malformed signal",
				logger.String("payload", msg.Payload),
				logger.Error(err))
			continue
		}

		b.mu.Lock()
		hs := make([]Handler, 0, len(b.handlers))
		for _, h := range b.handlers {
			hs = append(hs, h)
		}
		b.mu.Unlock()

		for _, h := range hs {
			h(s)
		}
	}
}

// Close stops the receive loop and the underlying subscription.
func (b *RedisBus) Close() error {
	err := b.pubsub.Close()
	<-b.done
	return err
}
