package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/McBride-Ryan/websocket-hss/internal/feed"
)

// DashboardHandler exposes the server-held feed: the bounded list of recent
// transactions and its running total.
type DashboardHandler struct {
	feed   *feed.Feed
	logger *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(logger *slog.Logger, f *feed.Feed) *DashboardHandler {
	return &DashboardHandler{feed: f, logger: logger}
}

// Get returns the current feed snapshot and the formatted amount total.
func (h *DashboardHandler) Get(c *gin.Context) {
	RespondOK(c, gin.H{
		"transactions": h.feed.Snapshot(),
		"total":        h.feed.Total(),
	})
}
