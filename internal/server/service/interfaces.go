package service

import (
	"context"

	"github.com/McBride-Ryan/websocket-hss/internal/domain/transaction"
)

// TransactionService defines the operations the HTTP surface needs: manual
// creation (sharing the producer's persist-then-publish path) and the two
// pull shapes.
type TransactionService interface {
	// Create persists txn and publishes its creation event to everyone except
	// the subscriber named by excludeSocket. An empty excludeSocket excludes
	// no one.
	Create(ctx context.Context, txn *transaction.Transaction, excludeSocket string) (*transaction.Transaction, error)

	// ListRecent returns the snapshot pull: the most recent transactions
	// ordered by timestamp descending.
	ListRecent(ctx context.Context) ([]transaction.Transaction, error)

	// ListAfter returns transactions with identity strictly greater than
	// lastID, ordered by timestamp descending.
	ListAfter(ctx context.Context, lastID int64) ([]transaction.Transaction, error)
}
