// Package feed maintains the server-held copy of recent transactions: a
// bounded, newest-first sequence derived from the record store and kept
// fresh by creation events. The held sequence is eventually consistent with
// the store and never authoritative.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/McBride-Ryan/websocket-hss/internal/domain/transaction"
	"github.com/McBride-Ryan/websocket-hss/internal/notifier"
)

// Feed is a single-writer state cell with two entry points: Hydrate replaces
// the sequence wholesale from the store, OnNotification prepends one record.
// All access to the sequence goes through one mutex, so a hydrate and a
// notification landing together are applied as whole steps.
type Feed struct {
	repo     transaction.Repository
	notifier notifier.Notifier
	logger   *slog.Logger
	topic    string
	limit    int

	mu      sync.Mutex
	entries []transaction.Transaction
}

// New creates an empty feed capped at limit entries.
func New(logger *slog.Logger, repo transaction.Repository, n notifier.Notifier, topic string, limit int) *Feed {
	return &Feed{
		repo:     repo,
		notifier: n,
		logger:   logger,
		topic:    topic,
		limit:    limit,
		entries:  make([]transaction.Transaction, 0, limit),
	}
}

// Hydrate pulls a snapshot of the most recent transactions from the store
// and replaces the held sequence wholesale. Called once at startup and
// whenever push connectivity is known to be absent.
func (f *Feed) Hydrate(ctx context.Context) error {
	txns, err := f.repo.ListRecent(ctx, f.limit)
	if err != nil {
		return fmt.Errorf("failed to hydrate feed: %w", err)
	}

	f.mu.Lock()
	f.entries = txns
	f.mu.Unlock()

	f.logger.Info("Feed hydrated", "count", len(txns))
	return nil
}

// OnNotification prepends txn and truncates the sequence to the cap. A
// record already present from a hydrate is prepended again; the feed does
// not de-duplicate.
func (f *Feed) OnNotification(txn transaction.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = append([]transaction.Transaction{txn}, f.entries...)
	if len(f.entries) > f.limit {
		f.entries = f.entries[:f.limit]
	}
}

// Run subscribes to the notifier's topic and merges each creation event into
// the held sequence until ctx ends. The subscription is released on every
// exit path.
func (f *Feed) Run(ctx context.Context) error {
	sub, err := f.notifier.Subscribe(ctx, f.topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe feed to %s: %w", f.topic, err)
	}
	defer func() {
		if err := sub.Close(); err != nil {
			f.logger.Error("Failed to close feed subscription", "error", err)
		}
	}()

	f.logger.Info("Feed subscribed", "topic", f.topic, "subscriber", sub.ID())

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if evt.Transaction == nil {
				continue
			}
			f.OnNotification(*evt.Transaction)
		}
	}
}

// Snapshot returns a copy of the held sequence, newest arrival first.
func (f *Feed) Snapshot() []transaction.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]transaction.Transaction, len(f.entries))
	copy(out, f.entries)
	return out
}

// Total returns the formatted sum of the held sequence's amounts.
func (f *Feed) Total() string {
	return FormatUSD(Sum(f.Snapshot()))
}
