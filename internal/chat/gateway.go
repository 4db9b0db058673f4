package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"blog-platform/internal/auth"
	"blog-platform/internal/config"
	"blog-platform/internal/database"
	"blog-platform/internal/models"
	"blog-platform/pkg/logger"

	"github.com/gorilla/websocket"
)

// Gateway authenticates real-time connections, routes their messages
// through the room registry and fans out broadcasts. Store failures on the
// persistence side are logged and swallowed; they never block or retract
// an in-memory broadcast.
type Gateway struct {
	mu       sync.Mutex
	conns    map[string]*Conn
	registry *Registry
	store    database.MessageStore
	users    database.UserRepository
	auth     *auth.Service
	cfg      config.ChatConfig
}

func NewGateway(registry *Registry, store database.MessageStore, users database.UserRepository, authService *auth.Service, cfg config.ChatConfig) *Gateway {
	return &Gateway{
		conns:    make(map[string]*Conn),
		registry: registry,
		store:    store,
		users:    users,
		auth:     authService,
		cfg:      cfg,
	}
}

// Authenticate verifies the handshake credentials and resolves the display
// name for the connection. The token is taken from the auth payload (query
// parameter) first, then from the Authorization header. Display name falls
// back from the store to the token's username claim to "unknown".
func (g *Gateway) Authenticate(ctx context.Context, r *http.Request) (userID, username string, err error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		header := r.Header.Get("Authorization")
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 {
			token = parts[1]
		}
	}
	if token == "" {
		return "", "", auth.ErrMissingToken
	}

	claims, err := g.auth.ValidateToken(token)
	if err != nil {
		return "", "", err
	}

	username = claims.Username
	user, err := g.users.GetUserByID(ctx, claims.Subject)
	switch {
	case err == nil:
		username = user.Username
	case errors.Is(err, database.ErrNotFound):
	default:
		logger.Warn("User lookup failed during handshake: %v", err)
	}
	if username == "" {
		username = "unknown"
	}

	return claims.Subject, username, nil
}

// Register creates a connection record for an upgraded websocket. The
// connection is not in any room until OnConnect runs.
func (g *Gateway) Register(ws *websocket.Conn, userID, username string) (*Conn, error) {
	id, err := newConnID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate connection id: %w", err)
	}

	c := &Conn{
		id:       id,
		userID:   userID,
		username: username,
		ws:       ws,
		send:     make(chan []byte, sendBuffer),
		gw:       g,
	}

	g.mu.Lock()
	g.conns[c.id] = c
	g.mu.Unlock()

	return c, nil
}

// OnConnect puts the connection into its requested room (default room when
// none was asked for), replays recent history to it, welcomes it, and
// tells the rest of the room. History failures never block the welcome.
func (g *Gateway) OnConnect(c *Conn, requestedRoom string) {
	room := strings.TrimSpace(requestedRoom)
	if room == "" {
		room = g.cfg.DefaultRoom
	}

	g.registry.Join(c.id, room)
	logger.Info("%s connected to room %q (%s)", c.username, room, c.id)

	g.replayHistory(c, room)
	g.emit(c, models.EventWelcome, fmt.Sprintf("Welcome %s! You joined the %q room.", c.username, room))
	g.broadcast(room, models.EventUserJoined, fmt.Sprintf("%s has joined the room.", c.username), c.id)
}

// SwitchRoom moves the connection into target and notifies both rooms.
// Returns the resolved room name and whether a transition happened; asking
// for the current room is a no-op.
func (g *Gateway) SwitchRoom(c *Conn, target string) (string, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		target = g.cfg.DefaultRoom
	}

	current, _ := g.registry.CurrentRoom(c.id)
	if target == current {
		return current, false
	}

	g.registry.Join(c.id, target)
	logger.Info("%s moved %q -> %q", c.username, current, target)

	g.broadcast(current, models.EventUserLeft, fmt.Sprintf("%s has left the room.", c.username), c.id)
	g.broadcast(target, models.EventUserJoined, fmt.Sprintf("%s has joined the room.", c.username), c.id)

	return target, true
}

// ListRooms reports the rooms the connection currently occupies, without
// its private per-connection channel.
func (g *Gateway) ListRooms(c *Conn) models.RoomsAck {
	rooms := []string{}
	if current, ok := g.registry.CurrentRoom(c.id); ok {
		rooms = append(rooms, current)
	}
	return models.RoomsAck{OK: true, Rooms: rooms}
}

// SendChatMessage broadcasts to every member of the sender's room,
// including the sender, and only then persists. Delivery is
// at-most-once-broadcast, best-effort-persist.
func (g *Gateway) SendChatMessage(c *Conn, text string) {
	room, ok := g.registry.CurrentRoom(c.id)
	if !ok {
		logger.Warn("Dropping message from %s: not in a room", c.id)
		return
	}

	msg := models.ChatMessage{
		Room:     room,
		UserID:   c.userID,
		Username: c.username,
		Message:  text,
		System:   false,
		Replayed: false,
		Sent:     time.Now().UTC(),
	}

	g.broadcast(room, models.EventChatMessage, msg, "")

	if err := g.store.SaveMessage(context.Background(), &msg); err != nil {
		logger.Error("Error saving message: %v", err)
	}
}

// LookupConnection resolves a connection id to its identity and rooms. The
// room list mirrors what the connection sits in, private channel included.
func (g *Gateway) LookupConnection(targetID string) models.UserInfoAck {
	g.mu.Lock()
	target, ok := g.conns[targetID]
	g.mu.Unlock()
	if !ok {
		return models.UserInfoAck{Error: "User not found"}
	}

	rooms := []string{target.id}
	if current, inRoom := g.registry.CurrentRoom(target.id); inRoom {
		rooms = append(rooms, current)
	}

	return models.UserInfoAck{
		ID:    target.id,
		User:  &models.UserInfo{ID: target.userID, Username: target.username},
		Rooms: rooms,
	}
}

// OnDisconnect releases the connection and tells its former room. Safe to
// call once per connection; pending broadcasts already enqueued to other
// members are not retracted.
func (g *Gateway) OnDisconnect(c *Conn, reason string) {
	current, inRoom := g.registry.CurrentRoom(c.id)
	g.registry.Leave(c.id)

	g.mu.Lock()
	if _, ok := g.conns[c.id]; ok {
		delete(g.conns, c.id)
		if !c.closed {
			c.closed = true
			close(c.send)
		}
	}
	g.mu.Unlock()

	logger.Info("%s disconnected from %q (%s)", c.username, current, reason)
	if inRoom {
		g.broadcast(current, models.EventUserLeft, fmt.Sprintf("%s has left the room.", c.username), c.id)
	}
}

func (g *Gateway) handleEnvelope(c *Conn, env models.Envelope) {
	switch env.Event {
	case models.EventChatMessage:
		var text string
		if err := json.Unmarshal(env.Data, &text); err != nil {
			logger.Warn("Bad chat message payload from %s: %v", c.id, err)
			return
		}
		g.SendChatMessage(c, text)

	case models.EventJoinRoom:
		var room string
		if err := json.Unmarshal(env.Data, &room); err != nil {
			logger.Warn("Bad join room payload from %s: %v", c.id, err)
			g.ack(c, env.Ack, models.RoomAck{Error: "invalid payload"})
			return
		}
		resolved, moved := g.SwitchRoom(c, room)
		g.ack(c, env.Ack, models.RoomAck{Room: resolved})
		if moved {
			g.replayHistory(c, resolved)
		}

	case models.EventRoomsList:
		g.ack(c, env.Ack, g.ListRooms(c))

	case models.EventUserInfo:
		var target string
		if err := json.Unmarshal(env.Data, &target); err != nil {
			logger.Warn("Bad user info payload from %s: %v", c.id, err)
			g.ack(c, env.Ack, models.UserInfoAck{Error: "invalid payload"})
			return
		}
		// An empty target asks about the requesting connection itself.
		if target == "" {
			target = c.id
		}
		g.ack(c, env.Ack, g.LookupConnection(target))

	default:
		logger.Debug("Ignoring unknown event %q from %s", env.Event, c.id)
	}
}

// replayHistory sends the most recent persisted messages for room to one
// connection, oldest first, tagged as replayed. A store failure is logged
// and the connection simply gets no history.
func (g *Gateway) replayHistory(c *Conn, room string) {
	messages, err := g.store.RecentMessages(context.Background(), room, g.cfg.HistoryLimit)
	if err != nil {
		logger.Error("Error loading history for room %q: %v", room, err)
		return
	}
	if len(messages) == 0 {
		return
	}

	history := make([]models.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		replayed := *msg
		replayed.Replayed = true
		history = append(history, replayed)
	}

	g.emit(c, models.EventChatHistory, history)
}

func (g *Gateway) emit(c *Conn, event string, data interface{}) {
	frame, err := frameEnvelope(event, data, 0)
	if err != nil {
		logger.Error("Error framing %q: %v", event, err)
		return
	}

	g.mu.Lock()
	c.enqueueLocked(frame)
	g.mu.Unlock()
}

func (g *Gateway) ack(c *Conn, ackID int64, payload interface{}) {
	if ackID == 0 {
		return
	}

	frame, err := frameEnvelope(models.EventAck, payload, ackID)
	if err != nil {
		logger.Error("Error framing ack: %v", err)
		return
	}

	g.mu.Lock()
	c.enqueueLocked(frame)
	g.mu.Unlock()
}

// broadcast fans an event out to every member of room except exceptID. The
// gateway lock is held across all enqueues so the server-side send order is
// the delivery order for every member.
func (g *Gateway) broadcast(room, event string, data interface{}, exceptID string) {
	if room == "" {
		return
	}

	frame, err := frameEnvelope(event, data, 0)
	if err != nil {
		logger.Error("Error framing %q: %v", event, err)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, connID := range g.registry.Members(room) {
		if connID == exceptID {
			continue
		}
		if member, ok := g.conns[connID]; ok {
			member.enqueueLocked(frame)
		}
	}
}

func frameEnvelope(event string, data interface{}, ackID int64) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}
	return json.Marshal(models.Envelope{Event: event, Data: raw, Ack: ackID})
}
