package pubsub

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// plog is resolved per call so that it follows log.Logger after the
// program replaces it.
func plog() *zerolog.Logger {
	l := log.With().Str("component", "pubsub").Logger()
	return &l
}

type SubscriptionID int64

// Broker fans messages out to any number of channel subscribers.
// Publish never blocks: a subscriber whose buffer is full misses the message.
type Broker[T any] struct {
	nextID      SubscriptionID
	subscribers map[SubscriptionID]chan T
	closed      bool
	mu          sync.RWMutex
}

func New[T any]() *Broker[T] {
	return &Broker[T]{
		subscribers: make(map[SubscriptionID]chan T),
	}
}

// Subscribe returns a channel that receives every message published after
// this call. buffer is the number of messages that can queue up before
// the subscriber starts missing them.
func (b *Broker[T]) Subscribe(buffer int) (SubscriptionID, <-chan T) {
	if buffer < 0 {
		buffer = 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, buffer)
	id := b.nextID
	b.nextID++

	if b.closed {
		close(ch)
		plog().Debug().Int64("subscription_id", int64(id)).Msg("Subscribed after close")
		return id, ch
	}

	b.subscribers[id] = ch

	plog().Debug().Int64("subscription_id", int64(id)).Msg("Subscribed")

	return id, ch
}

// Unsubscribe closes the subscriber's channel. Unknown ids are ignored.
func (b *Broker[T]) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[id]
	if !ok {
		return
	}

	delete(b.subscribers, id)
	close(ch)

	plog().Debug().Int64("subscription_id", int64(id)).Msg("Unsubscribed")
}

func (b *Broker[T]) Publish(msg T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			plog().Warn().
				Int64("subscription_id", int64(id)).
				Interface("message", msg).
				Msg("Message dropped, channel full")
		}
	}
}

// Len is the number of active subscribers.
func (b *Broker[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers)
}

// Close unsubscribes everyone. Channels handed out by later Subscribe
// calls come back already closed.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true

	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
