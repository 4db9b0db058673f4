package chat

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"blog-platform/internal/models"
	"blog-platform/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Conn is one authenticated websocket connection. Outbound envelopes go
// through a buffered send channel so per-connection delivery order matches
// enqueue order; the channel is only ever closed by the gateway while it
// holds its lock.
type Conn struct {
	id       string
	userID   string
	username string
	ws       *websocket.Conn
	send     chan []byte
	closed   bool
	gw       *Gateway
}

func (c *Conn) ID() string       { return c.id }
func (c *Conn) Username() string { return c.username }

// enqueueLocked pushes an already-framed envelope. The caller holds the
// gateway lock. A connection that cannot keep up is dropped rather than
// allowed to stall the room.
func (c *Conn) enqueueLocked(data []byte) {
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.closed = true
		close(c.send)
	}
}

func (c *Conn) ReadPump() {
	defer func() {
		c.gw.OnDisconnect(c, "read loop closed")
		c.ws.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error: %v", err)
			}
			break
		}

		var env models.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logger.Warn("Dropping malformed frame from %s: %v", c.id, err)
			continue
		}
		c.gw.handleEnvelope(c, env)
	}
}

func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func newConnID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", bytes), nil
}
