// Package producer runs the periodic transaction generator: every tick it
// synthesizes one transaction, persists it, and publishes a creation event.
package producer

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/McBride-Ryan/websocket-hss/internal/config"
	"github.com/McBride-Ryan/websocket-hss/internal/domain/transaction"
	"github.com/McBride-Ryan/websocket-hss/internal/notifier"
)

var (
	descriptions = []string{"Online Purchase", "Utility Payment", "Salary Payment"}
	accountTypes = []string{"checking", "savings", "credit"}
)

// Generator synthesizes transactions on a fixed interval.
type Generator struct {
	repo     transaction.Repository
	notifier notifier.Notifier
	logger   *slog.Logger
	topic    string

	interval       time.Duration
	minAmountCents int64
	maxAmountCents int64
	rnd            *rand.Rand
}

// NewGenerator creates a generator publishing to topic. Amount bounds are in
// cents so every generated amount has at most two fractional digits.
func NewGenerator(logger *slog.Logger, cfg *config.ProducerConfig, repo transaction.Repository, n notifier.Notifier, topic string) *Generator {
	return &Generator{
		repo:           repo,
		notifier:       n,
		logger:         logger,
		topic:          topic,
		interval:       cfg.Interval,
		minAmountCents: cfg.MinAmountCents,
		maxAmountCents: cfg.MaxAmountCents,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run executes one tick per interval until ctx is canceled. Ticks are
// serialized; a failed tick is logged and the schedule continues untouched.
func (g *Generator) Run(ctx context.Context) {
	g.logger.Info("Starting transaction generator",
		"interval", g.interval.String(),
		"min_amount_cents", g.minAmountCents,
		"max_amount_cents", g.maxAmountCents,
	)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("Transaction generator stopping due to context cancellation.")
			return
		case <-ticker.C:
			g.tick(ctx)
		}
	}
}

// tick creates and persists one synthetic transaction, then publishes its
// creation event. The publish only happens after a durable write; a persist
// failure suppresses it and is not retried.
func (g *Generator) tick(ctx context.Context) {
	txn := g.synthesize()

	if err := g.repo.Create(ctx, txn); err != nil {
		g.logger.Error("Failed to persist generated transaction",
			"description", txn.Description,
			"amount", txn.Amount.String(),
			"error", err,
		)
		return
	}

	evt := notifier.Event{
		Name:        notifier.EventTransactionCreated,
		Transaction: txn,
	}
	if err := g.notifier.Publish(ctx, g.topic, evt); err != nil {
		// The record is already committed; the publish is best effort.
		g.logger.Error("Failed to publish transaction event",
			"transaction_id", txn.ID,
			"error", err,
		)
		return
	}

	g.logger.Info("Transaction broadcasted", "transaction_id", txn.ID, "amount", txn.Amount.String())
}

// synthesize builds one transaction with a uniformly random amount within
// the configured bounds and attributes drawn from the fixed sets.
func (g *Generator) synthesize() *transaction.Transaction {
	cents := g.minAmountCents + g.rnd.Int63n(g.maxAmountCents-g.minAmountCents+1)

	return &transaction.Transaction{
		Amount:      decimal.New(cents, -2),
		Description: descriptions[g.rnd.Intn(len(descriptions))],
		AccountType: accountTypes[g.rnd.Intn(len(accountTypes))],
		Timestamp:   time.Now().UTC(),
	}
}
