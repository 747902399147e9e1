package feed

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests to feed subscriptions
type Handler struct {
	hub *Hub
	ctx context.Context
}

// NewHandler creates a handler whose client pumps stop when ctx is cancelled
func NewHandler(ctx context.Context, hub *Hub) *Handler {
	return &Handler{hub: hub, ctx: ctx}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := newClient(uuid.New().String(), conn, h.hub)
	h.hub.Register(c)

	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}
