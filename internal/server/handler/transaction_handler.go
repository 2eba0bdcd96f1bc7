package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/McBride-Ryan/websocket-hss/internal/domain/transaction"
	"github.com/McBride-Ryan/websocket-hss/internal/server/service"
)

// TransactionHandler handles HTTP requests for transaction operations
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
	streamInterval     time.Duration
}

// NewTransactionHandler creates a new transaction handler. streamInterval is
// the store-poll cadence of the event-stream endpoint.
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService, streamInterval time.Duration) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
		streamInterval:     streamInterval,
	}
}

// List returns the snapshot pull: the most recent transactions ordered by
// timestamp descending.
func (h *TransactionHandler) List(c *gin.Context) {
	txns, err := h.transactionService.ListRecent(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list transactions", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, txns)
}

// Create stores a manually added transaction and broadcasts it to every
// push subscriber except the creator's own socket.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var timestamp time.Time
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	txn, err := transaction.New(req.Amount, req.Description, req.AccountType, timestamp)
	if err != nil {
		if errors.Is(err, transaction.ErrEmptyDescription) || errors.Is(err, transaction.ErrNegativeAmount) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to build transaction", "error", err)
		RespondInternalError(c)
		return
	}

	created, err := h.transactionService.Create(c.Request.Context(), txn, c.GetHeader(SocketIDHeader))
	if err != nil {
		h.logger.Error("Failed to create transaction", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, created)
}
