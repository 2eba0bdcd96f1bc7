package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/McBride-Ryan/websocket-hss/internal/server/handler"
	"github.com/McBride-Ryan/websocket-hss/internal/server/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	transactionHandler *handler.TransactionHandler,
	dashboardHandler *handler.DashboardHandler,
	socketHandler *handler.SocketHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	api := r.Group("/api")
	{
		transactions := api.Group("/transactions")
		{
			transactions.GET("", transactionHandler.List)
			transactions.POST("", transactionHandler.Create)
			transactions.GET("/stream", transactionHandler.Stream)
		}

		api.GET("/dashboard", dashboardHandler.Get)
	}

	// Push subscription endpoint
	r.GET("/ws", socketHandler.Serve)

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
