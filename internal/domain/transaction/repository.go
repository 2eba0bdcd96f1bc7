package transaction

import "context"

// Repository defines transaction persistence operations. The store is
// append-only from this system's perspective: records are created, never
// updated or deleted.
type Repository interface {
	// Create persists a new transaction and fills in the store-assigned
	// identity and created/updated times on the given record.
	Create(ctx context.Context, txn *Transaction) error

	// ListRecent returns at most limit transactions ordered by timestamp
	// descending (most recent first).
	ListRecent(ctx context.Context, limit int) ([]Transaction, error)

	// ListAfter returns all transactions with identity strictly greater than
	// lastID, ordered by timestamp descending. lastID 0 means from the
	// beginning.
	ListAfter(ctx context.Context, lastID int64) ([]Transaction, error)
}
