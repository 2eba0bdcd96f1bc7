// Package server wires the HTTP surface: REST endpoints for the snapshot
// pull and manual adds, the event-stream fallback, the WebSocket push
// subscription, and the dashboard view over the held feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/McBride-Ryan/websocket-hss/internal/config"
	"github.com/McBride-Ryan/websocket-hss/internal/feed"
	"github.com/McBride-Ryan/websocket-hss/internal/notifier"
	"github.com/McBride-Ryan/websocket-hss/internal/server/handler"
	"github.com/McBride-Ryan/websocket-hss/internal/server/service"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer creates and configures a new HTTP server with the given
// collaborators
func NewServer(log *slog.Logger, cfg *config.Config, transactionService service.TransactionService, f *feed.Feed, n notifier.Notifier) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	transactionHandler := handler.NewTransactionHandler(log, transactionService, cfg.Stream.PollInterval)
	dashboardHandler := handler.NewDashboardHandler(log, f)
	socketHandler := handler.NewSocketHandler(log, n, cfg.Notifier.Topic)

	setupRouter(log, httpRouter, transactionHandler, dashboardHandler, socketHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
