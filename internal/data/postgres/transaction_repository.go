// Package postgres provides the PostgreSQL implementation of the transaction
// repository. The transactions table is append-only; identity is a BIGSERIAL
// so the streaming endpoint's cursor comparison is a plain integer check.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/McBride-Ryan/websocket-hss/internal/domain/transaction"
	"github.com/McBride-Ryan/websocket-hss/internal/platform/persistence"
)

// TransactionRepository implements the transaction.Repository interface for
// PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create inserts a new transaction and fills in the store-assigned identity
// and timestamps on txn.
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (amount, description, account_type, occurred_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.querier.QueryRow(ctx, query,
		txn.Amount,
		txn.Description,
		txn.AccountType,
		txn.Timestamp,
	).Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create transaction", "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// ListRecent returns the most recent transactions ordered by occurrence time
// descending, capped at limit.
func (r *TransactionRepository) ListRecent(ctx context.Context, limit int) ([]transaction.Transaction, error) {
	query := `
		SELECT id, amount, description, account_type, occurred_at, created_at, updated_at
		FROM transactions
		ORDER BY occurred_at DESC
		LIMIT $1
	`

	rows, err := r.querier.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list recent transactions", "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListAfter returns every transaction with identity strictly greater than
// lastID, ordered by occurrence time descending.
func (r *TransactionRepository) ListAfter(ctx context.Context, lastID int64) ([]transaction.Transaction, error) {
	query := `
		SELECT id, amount, description, account_type, occurred_at, created_at, updated_at
		FROM transactions
		WHERE id > $1
		ORDER BY occurred_at DESC
	`

	rows, err := r.querier.Query(ctx, query, lastID)
	if err != nil {
		r.logger.Error("Failed to list transactions after cursor", "last_id", lastID, "error", err)
		return nil, fmt.Errorf("failed to list transactions after id %d: %w", lastID, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTransactions(rows rowScanner) ([]transaction.Transaction, error) {
	txns := make([]transaction.Transaction, 0)
	for rows.Next() {
		var txn transaction.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.Amount,
			&txn.Description,
			&txn.AccountType,
			&txn.Timestamp,
			&txn.CreatedAt,
			&txn.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction rows: %w", err)
	}
	return txns, nil
}
