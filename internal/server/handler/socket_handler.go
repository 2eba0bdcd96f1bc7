package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/McBride-Ryan/websocket-hss/internal/domain/transaction"
	"github.com/McBride-Ryan/websocket-hss/internal/notifier"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// connectionEstablished is the first frame sent on a new socket; it carries
// the socket ID the client echoes back on manual adds.
type connectionEstablished struct {
	Event    string `json:"event"`
	SocketID string `json:"socket_id"`
}

// eventFrame is what goes over the wire to a socket. The envelope's exclusion
// field is routing metadata and never leaves the server.
type eventFrame struct {
	Event       string                   `json:"event"`
	Transaction *transaction.Transaction `json:"transaction"`
}

// SocketHandler serves the push subscription: each WebSocket connection is
// one subscriber on the transactions topic.
type SocketHandler struct {
	notifier notifier.Notifier
	logger   *slog.Logger
	topic    string
	upgrader websocket.Upgrader
}

// NewSocketHandler creates a handler subscribing sockets to topic.
func NewSocketHandler(logger *slog.Logger, n notifier.Notifier, topic string) *SocketHandler {
	return &SocketHandler{
		notifier: n,
		logger:   logger,
		topic:    topic,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from arbitrary origins in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the connection, subscribes it, and relays creation events
// until either side goes away. The subscription is released on every exit
// path.
func (h *SocketHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	sub, err := h.notifier.Subscribe(c.Request.Context(), h.topic)
	if err != nil {
		h.logger.Error("Failed to subscribe socket", "error", err)
		return
	}
	defer func() {
		if err := sub.Close(); err != nil {
			h.logger.Error("Failed to close socket subscription", "socket_id", sub.ID(), "error", err)
		}
	}()

	h.logger.Info("Socket connected", "socket_id", sub.ID())

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(connectionEstablished{Event: "connection_established", SocketID: sub.ID()}); err != nil {
		h.logger.Error("Failed to send connection frame", "socket_id", sub.ID(), "error", err)
		return
	}

	// Read pump: the client never sends application data, but reading is how
	// we notice the peer closing and keep pong handling alive.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pinger := time.NewTicker(pingPeriod)
	defer pinger.Stop()

	for {
		select {
		case <-closed:
			h.logger.Info("Socket disconnected", "socket_id", sub.ID())
			return
		case <-c.Request.Context().Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			if evt.ExcludeID == sub.ID() {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(eventFrame{Event: evt.Name, Transaction: evt.Transaction}); err != nil {
				h.logger.Warn("Failed to write event to socket", "socket_id", sub.ID(), "error", err)
				return
			}
		case <-pinger.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
