// Package transaction defines the single persistent entity of the system:
// a synthetic financial transaction. The record store assigns the identity;
// everything else is set at creation and never mutated.
package transaction

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrNegativeAmount   = errors.New("amount cannot be negative")
)

// Transaction represents one transaction row. Timestamp is when the
// transaction occurred; CreatedAt/UpdatedAt are storage-assigned.
type Transaction struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	AccountType string          `json:"accountType"`
	Timestamp   time.Time       `json:"timestamp"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// New creates a transaction with the given attributes. The identity is left
// zero until the record store assigns it. A zero timestamp defaults to now.
func New(amount decimal.Decimal, description, accountType string, timestamp time.Time) (*Transaction, error) {
	if description == "" {
		return nil, ErrEmptyDescription
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	return &Transaction{
		Amount:      amount.Round(2),
		Description: description,
		AccountType: accountType,
		Timestamp:   timestamp,
	}, nil
}

// UnmarshalJSON decodes a transaction, tolerating a malformed amount.
// A record arriving over the wire with a non-numeric amount keeps its other
// fields and contributes zero to any aggregate instead of failing the decode.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	aux := struct {
		Amount json.RawMessage `json:"amount"`
		*alias
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.Amount = decimal.Zero
	if len(aux.Amount) > 0 {
		var amount decimal.Decimal
		if err := json.Unmarshal(aux.Amount, &amount); err == nil {
			t.Amount = amount
		}
	}
	return nil
}
