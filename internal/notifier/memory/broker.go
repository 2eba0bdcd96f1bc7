// Package memory implements the notifier contract with an in-process broker.
// Fan-out work is handed to a worker pool so a slow subscriber cannot stall
// the publisher; a subscriber whose buffer is full loses the event.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/McBride-Ryan/websocket-hss/internal/notifier"
)

// Broker is an in-memory fan-out channel.
type Broker struct {
	logger *slog.Logger
	pool   *ants.Pool
	buffer int

	mu     sync.RWMutex
	topics map[string]map[string]*subscription
	closed bool
}

// Config controls broker sizing.
type Config struct {
	Workers int // size of the delivery worker pool
	Buffer  int // per-subscriber event buffer
}

// NewBroker creates a broker with a delivery worker pool of the configured
// size.
func NewBroker(logger *slog.Logger, cfg Config) (*Broker, error) {
	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create fan-out worker pool: %w", err)
	}

	return &Broker{
		logger: logger,
		pool:   pool,
		buffer: cfg.Buffer,
		topics: make(map[string]map[string]*subscription),
	}, nil
}

// Publish fans evt out to every current subscriber of topic except the one
// named by evt.ExcludeID. Publishing to a topic with no subscribers is a
// no-op; nothing is buffered for subscribers that arrive later.
//
// Events enqueue into each subscriber's FIFO before Publish returns, and one
// drain task at a time empties it, so sequential publishes from one caller
// arrive at every subscriber in publish order.
func (b *Broker) Publish(_ context.Context, topic string, evt notifier.Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("broker is closed")
	}
	subs := make([]*subscription, 0, len(b.topics[topic]))
	for _, sub := range b.topics[topic] {
		if sub.id == evt.ExcludeID {
			continue
		}
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		if !sub.enqueue(evt) {
			continue
		}
		sub := sub
		if err := b.pool.Submit(sub.drain); err != nil {
			// Pool saturated or released; drain inline rather than drop.
			b.logger.Warn("Fan-out pool rejected drain task, draining inline",
				"topic", topic, "subscriber", sub.id, "error", err)
			sub.drain()
		}
	}
	return nil
}

// Subscribe registers a new subscriber on topic and returns its handle.
func (b *Broker) Subscribe(_ context.Context, topic string) (notifier.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("broker is closed")
	}

	sub := &subscription{
		id:     uuid.New().String(),
		topic:  topic,
		broker: b,
		events: make(chan notifier.Event, b.buffer),
	}

	if b.topics[topic] == nil {
		b.topics[topic] = make(map[string]*subscription)
	}
	b.topics[topic][sub.id] = sub

	b.logger.Debug("Subscriber registered", "topic", topic, "subscriber", sub.id)
	return sub, nil
}

// Close releases the worker pool and closes every open subscription.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*subscription, 0)
	for _, topicSubs := range b.topics {
		for _, sub := range topicSubs {
			subs = append(subs, sub)
		}
	}
	b.topics = make(map[string]map[string]*subscription)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.shutdown()
	}
	b.pool.Release()
	return nil
}

func (b *Broker) remove(topic, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.topics[topic]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(b.topics, topic)
		}
	}
}

type subscription struct {
	id     string
	topic  string
	broker *Broker
	events chan notifier.Event

	mu       sync.Mutex
	closed   bool
	queue    []notifier.Event
	draining bool
}

func (s *subscription) ID() string { return s.id }

func (s *subscription) Events() <-chan notifier.Event { return s.events }

// Close unregisters the subscriber and closes its event channel. Safe to
// call more than once.
func (s *subscription) Close() error {
	s.broker.remove(s.topic, s.id)
	s.shutdown()
	return nil
}

func (s *subscription) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.queue = nil
		close(s.events)
	}
}

// enqueue appends evt to the subscriber's FIFO in the publisher's call order.
// It reports whether the caller must schedule a drain; while one drain is
// running, further enqueues ride on it.
func (s *subscription) enqueue(evt notifier.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.queue = append(s.queue, evt)
	if s.draining {
		return false
	}
	s.draining = true
	return true
}

// drain moves queued events onto the buffered channel, oldest first, without
// blocking. A full buffer drops the event: the channel gives no delivery
// guarantee and payloads carry their own timestamp.
func (s *subscription) drain() {
	for {
		s.mu.Lock()
		if s.closed || len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		evt := s.queue[0]
		s.queue = s.queue[1:]
		select {
		case s.events <- evt:
		default:
			s.broker.logger.Warn("Subscriber buffer full, dropping event",
				"topic", s.topic, "subscriber", s.id, "event", evt.Name)
		}
		s.mu.Unlock()
	}
}
