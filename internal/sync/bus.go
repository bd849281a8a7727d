package sync

import (
	"context"
	"sync"
)

// Handler consumes one delivered signal.
type Handler func(Signal)

// Bus carries reconciliation signals between clients sharing a
// persisted store. Delivery is best effort: publishing never blocks a
// persist path on a slow subscriber, and there is no replay.
type Bus interface {
	Publish(ctx context.Context, s Signal) error
	// Subscribe registers a handler and returns a function that
	// removes it again.
	Subscribe(handler Handler) (unsubscribe func(), err error)
	Close() error
}

// MemoryBus is the in-process Bus used by tests and by single-process
// setups where every view shares one address space.
type MemoryBus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
	closed   bool
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[int]Handler)}
}

// Publish delivers the signal synchronously to every subscriber.
func (b *MemoryBus) Publish(_ context.Context, s Signal) error {
	b.mu.Lock()
	hs := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.Unlock()

	for _, h := range hs {
		h(s)
	}
	return nil
}

// Subscribe registers a handler.
func (b *MemoryBus) Subscribe(handler Handler) (func(), error) {
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

// Close drops all subscribers.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[int]Handler)
	b.closed = true
	return nil
}
