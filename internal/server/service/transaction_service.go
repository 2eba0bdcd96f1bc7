// Package service implements the operations behind the HTTP handlers.
package service

import (
	"context"
	"log/slog"

	"github.com/McBride-Ryan/websocket-hss/internal/domain/transaction"
	"github.com/McBride-Ryan/websocket-hss/internal/notifier"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	repo     transaction.Repository
	notifier notifier.Notifier
	logger   *slog.Logger
	topic    string
	limit    int
}

// NewTransactionService creates a new transaction service. limit caps the
// snapshot pull.
func NewTransactionService(logger *slog.Logger, repo transaction.Repository, n notifier.Notifier, topic string, limit int) TransactionService {
	return &TransactionServiceImpl{
		repo:     repo,
		notifier: n,
		logger:   logger,
		topic:    topic,
		limit:    limit,
	}
}

// Create persists the transaction and, only after the durable write,
// publishes the creation event. A publish failure is logged and swallowed:
// the record is already committed and the channel gives no delivery
// guarantee anyway.
func (s *TransactionServiceImpl) Create(ctx context.Context, txn *transaction.Transaction, excludeSocket string) (*transaction.Transaction, error) {
	if err := s.repo.Create(ctx, txn); err != nil {
		s.logger.Error("Failed to create transaction",
			"description", txn.Description,
			"error", err,
		)
		return nil, err
	}

	evt := notifier.Event{
		Name:        notifier.EventTransactionCreated,
		Transaction: txn,
		ExcludeID:   excludeSocket,
	}
	if err := s.notifier.Publish(ctx, s.topic, evt); err != nil {
		s.logger.Error("Failed to publish transaction event",
			"transaction_id", txn.ID,
			"error", err,
		)
	}

	s.logger.Info("Transaction created",
		"transaction_id", txn.ID,
		"amount", txn.Amount.String(),
		"account_type", txn.AccountType,
	)
	return txn, nil
}

// ListRecent returns the most recent transactions, capped at the configured
// snapshot limit.
func (s *TransactionServiceImpl) ListRecent(ctx context.Context) ([]transaction.Transaction, error) {
	return s.repo.ListRecent(ctx, s.limit)
}

// ListAfter returns transactions past the given cursor.
func (s *TransactionServiceImpl) ListAfter(ctx context.Context, lastID int64) ([]transaction.Transaction, error) {
	return s.repo.ListAfter(ctx, lastID)
}
