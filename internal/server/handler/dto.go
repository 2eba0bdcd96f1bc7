package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransactionRequest represents a request to create a new transaction.
// Amount tolerates both numeric and quoted-numeric JSON. A missing timestamp
// defaults to the time of creation.
type CreateTransactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"required"`
	AccountType string          `json:"accountType"`
	Timestamp   *time.Time      `json:"timestamp"`
}

// SocketIDHeader carries the creator's push-subscription identity on manual
// adds so the creation event is not echoed back to them.
const SocketIDHeader = "X-Socket-ID"
