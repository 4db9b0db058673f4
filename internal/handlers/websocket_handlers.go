package handlers

import (
	"errors"
	"net/http"

	"blog-platform/internal/auth"
	"blog-platform/internal/chat"
	"blog-platform/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	gateway  *chat.Gateway
	upgrader websocket.Upgrader
}

func NewWebSocketHandlers(gateway *chat.Gateway) *WebSocketHandlers {
	return &WebSocketHandlers{
		gateway: gateway,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket authenticates the handshake before upgrading; a rejected
// handshake never reaches a room join or history replay.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, username, err := h.gateway.Authenticate(r.Context(), r)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, auth.ErrMissingToken) && !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrExpiredToken) {
			status = http.StatusInternalServerError
		}
		http.Error(w, err.Error(), status)
		return
	}

	room := r.URL.Query().Get("room")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	c, err := h.gateway.Register(conn, userID, username)
	if err != nil {
		logger.Error("Error registering connection: %v", err)
		conn.Close()
		return
	}

	go c.WritePump()
	h.gateway.OnConnect(c, room)
	go c.ReadPump()
}
