package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Stream serves the long-lived pull: a text/event-stream response on which
// the server periodically emits every transaction with identity greater than
// the client's cursor, or a heartbeat comment when there is nothing new.
// The loop only ends when the peer goes away; there is no other termination
// condition.
func (h *TransactionHandler) Stream(c *gin.Context) {
	lastID, err := strconv.ParseInt(c.DefaultQuery("last_id", "0"), 10, 64)
	if err != nil {
		RespondBadRequest(c, "last_id must be an integer")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	for {
		txns, err := h.transactionService.ListAfter(ctx, lastID)
		if err != nil {
			// The store hiccuped; keep the connection and try again next tick.
			h.logger.Error("Failed to poll for new transactions", "last_id", lastID, "error", err)
		} else if len(txns) > 0 {
			payload, err := json.Marshal(txns)
			if err != nil {
				h.logger.Error("Failed to encode stream frame", "error", err)
			} else {
				for _, txn := range txns {
					if txn.ID > lastID {
						lastID = txn.ID
					}
				}
				if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
					return
				}
			}
		} else {
			if _, err := fmt.Fprint(c.Writer, ": heartbeat\n\n"); err != nil {
				return
			}
		}
		c.Writer.Flush()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
