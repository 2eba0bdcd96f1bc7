// Package notifier provides the publish/subscribe primitive used to fan out
// transaction-creation events. Delivery is best effort: a subscriber that is
// not connected at publish time never sees the event, and nothing is buffered
// on its behalf. The concrete transport is swappable; the system ships an
// in-process broker and a Kafka-backed one.
package notifier

import (
	"context"

	"github.com/McBride-Ryan/websocket-hss/internal/domain/transaction"
)

// TopicTransactions is the single topic used by this system.
const TopicTransactions = "transactions"

// EventTransactionCreated is the canonical name for a transaction-creation
// event.
const EventTransactionCreated = "transaction.created"

// Event is the payload fanned out to subscribers.
type Event struct {
	Name        string                   `json:"event"`
	Transaction *transaction.Transaction `json:"transaction"`

	// ExcludeID names one subscriber that must not receive this event.
	// Used to suppress the echo of a manual add back to its creator.
	ExcludeID string `json:"excludeId,omitempty"`
}

// Subscription is a scoped handle on a topic. Events arrive on Events until
// Close is called; Close must run on every exit path of the consumer.
type Subscription interface {
	// ID uniquely identifies this subscriber for the lifetime of the
	// subscription.
	ID() string

	// Events returns the stream of published events. The channel is closed
	// when the subscription is closed.
	Events() <-chan Event

	Close() error
}

// Notifier is the fan-out channel contract: one named topic, any number of
// concurrent subscribers, each receiving an independent copy of every
// publish made while it is connected.
type Notifier interface {
	Publish(ctx context.Context, topic string, evt Event) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
	Close() error
}
