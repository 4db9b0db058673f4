package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"blog-platform/internal/models"
)

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// DefaultRoom is the fallback when neither a room hint nor a previous room
// is available.
const DefaultRoom = "public"

var ErrNotConnected = errors.New("not connected")

// Transport is any duplex message channel a session can run over.
type Transport interface {
	WriteJSON(v interface{}) error
	ReadMessage() ([]byte, error)
	Close() error
}

// Dialer opens a transport authenticated with token, landing in room.
type Dialer func(token, room string) (Transport, error)

// Session is the consumer-side connection state machine. Reconnection
// happens only on credential change; transport-level retries are the
// transport's own business. Every reconnect discards the buffered messages
// and re-derives the initial room from the hint, the last known room, or
// the default.
type Session struct {
	mu        sync.Mutex
	dial      Dialer
	status    Status
	token     string
	room      string
	username  string
	joined    []string
	buffer    []models.ChatMessage
	transport Transport
	acks      map[int64]chan json.RawMessage
	nextAck   int64
	done      chan struct{}
	notify    func(models.ChatMessage)
}

func NewSession(dial Dialer) *Session {
	return &Session{
		dial:   dial,
		status: StatusDisconnected,
		acks:   make(map[int64]chan json.RawMessage),
	}
}

// SetNotify installs a callback invoked for every message appended to the
// local buffer, live or replayed. Set it before connecting.
func (s *Session) SetNotify(notify func(models.ChatMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = notify
}

func (s *Session) append(msg models.ChatMessage) {
	s.mu.Lock()
	s.buffer = append(s.buffer, msg)
	notify := s.notify
	s.mu.Unlock()
	if notify != nil {
		notify(msg)
	}
}

// SetToken reacts to a credential change. An empty token disconnects; a new
// token tears the old connection down and dials fresh. Passing the current
// token is a no-op.
func (s *Session) SetToken(token, roomHint string) error {
	s.mu.Lock()
	if token == s.token {
		s.mu.Unlock()
		return nil
	}
	s.token = token
	s.teardownLocked()
	if token == "" {
		s.mu.Unlock()
		return nil
	}

	initial := roomHint
	if initial == "" {
		initial = s.room
	}
	if initial == "" {
		initial = DefaultRoom
	}

	s.status = StatusConnecting
	s.room = initial
	s.buffer = nil
	s.joined = []string{initial}
	s.mu.Unlock()

	transport, err := s.dial(token, initial)
	if err != nil {
		s.mu.Lock()
		s.status = StatusError
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.transport = transport
	s.status = StatusConnected
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.readLoop(transport)

	// Confirm our own identity; an empty target means "this connection".
	if payload, err := s.request(models.EventUserInfo, ""); err == nil {
		var ack models.UserInfoAck
		if json.Unmarshal(payload, &ack) == nil && ack.User != nil {
			s.mu.Lock()
			s.username = ack.User.Username
			s.mu.Unlock()
		}
	}

	return nil
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.teardownLocked()
}

// teardownLocked closes the transport and resets connection-scoped state.
// Caller holds s.mu.
func (s *Session) teardownLocked() {
	if s.transport != nil {
		s.transport.Close()
		s.transport = nil
	}
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	s.status = StatusDisconnected
	s.username = ""
	s.buffer = nil
	s.joined = nil
	s.acks = make(map[int64]chan json.RawMessage)
}

// Send runs outgoing text through the command interpreter and acts on the
// result. Plain text goes out verbatim as a chat message.
func (s *Session) Send(text string) error {
	s.mu.Lock()
	joined := make([]string, len(s.joined))
	copy(joined, s.joined)
	s.mu.Unlock()

	action := Parse(text, joined)
	switch action.Kind {
	case ActionSend:
		if action.Text == "" {
			return nil
		}
		return s.sendChat(action.Text)

	case ActionClearLocal:
		s.mu.Lock()
		s.buffer = nil
		s.mu.Unlock()
		return nil

	case ActionNotice:
		s.notice(action.Text)
		return nil

	case ActionUnknown:
		s.notice(fmt.Sprintf("Unknown command: /%s", action.Command))
		return nil

	case ActionRequestRooms:
		payload, err := s.request(models.EventRoomsList, nil)
		if err != nil {
			s.notice("Error fetching rooms from server.")
			return err
		}
		var ack models.RoomsAck
		if err := json.Unmarshal(payload, &ack); err != nil || !ack.OK {
			reason := ack.Error
			if reason == "" {
				reason = "unknown error"
			}
			s.notice("Could not fetch rooms: " + reason)
			return nil
		}
		list := "(no rooms)"
		if len(ack.Rooms) > 0 {
			list = strings.Join(ack.Rooms, ", ")
		}
		s.notice("You are in rooms: " + list)
		return nil

	case ActionRequestJoin, ActionRequestSwitch:
		return s.JoinRoom(action.Room)
	}

	return nil
}

// JoinRoom requests a room transition and, once acknowledged, adopts the
// resolved room, clears the buffer and marks the room as joined.
func (s *Session) JoinRoom(room string) error {
	payload, err := s.request(models.EventJoinRoom, room)
	if err != nil {
		return err
	}

	var ack models.RoomAck
	if err := json.Unmarshal(payload, &ack); err != nil || ack.Room == "" {
		return nil
	}

	s.mu.Lock()
	s.room = ack.Room
	s.buffer = nil
	found := false
	for _, joined := range s.joined {
		if joined == ack.Room {
			found = true
			break
		}
	}
	if !found {
		s.joined = append(s.joined, ack.Room)
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

func (s *Session) JoinedRooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	joined := make([]string, len(s.joined))
	copy(joined, s.joined)
	return joined
}

func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	buffer := make([]models.ChatMessage, len(s.buffer))
	copy(buffer, s.buffer)
	return buffer
}

func (s *Session) sendChat(text string) error {
	s.mu.Lock()
	transport := s.transport
	s.mu.Unlock()
	if transport == nil {
		return ErrNotConnected
	}

	raw, err := json.Marshal(text)
	if err != nil {
		return err
	}
	return transport.WriteJSON(models.Envelope{Event: models.EventChatMessage, Data: raw})
}

func (s *Session) notice(text string) {
	s.mu.Lock()
	room := s.room
	s.mu.Unlock()
	s.append(models.ChatMessage{
		Room:    room,
		Message: text,
		System:  true,
	})
}

// request writes an envelope with a fresh ack id and blocks until the
// matching ack arrives or the connection goes away.
func (s *Session) request(event string, data interface{}) (json.RawMessage, error) {
	s.mu.Lock()
	transport := s.transport
	done := s.done
	if transport == nil {
		s.mu.Unlock()
		return nil, ErrNotConnected
	}
	s.nextAck++
	id := s.nextAck
	ch := make(chan json.RawMessage, 1)
	s.acks[id] = ch
	s.mu.Unlock()

	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}

	if err := transport.WriteJSON(models.Envelope{Event: event, Data: raw, Ack: id}); err != nil {
		s.mu.Lock()
		delete(s.acks, id)
		s.mu.Unlock()
		return nil, err
	}

	select {
	case payload := <-ch:
		return payload, nil
	case <-done:
		return nil, ErrNotConnected
	}
}

func (s *Session) readLoop(transport Transport) {
	for {
		data, err := transport.ReadMessage()
		if err != nil {
			// A dead transport invalidates every pending request: wake the
			// waiters so they see ErrNotConnected instead of parking forever.
			s.mu.Lock()
			if s.transport == transport {
				s.transport = nil
				s.status = StatusDisconnected
				if s.done != nil {
					close(s.done)
					s.done = nil
				}
				s.acks = make(map[int64]chan json.RawMessage)
			}
			s.mu.Unlock()
			return
		}

		var env models.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		s.handleEnvelope(env)
	}
}

func (s *Session) handleEnvelope(env models.Envelope) {
	switch env.Event {
	case models.EventAck:
		s.mu.Lock()
		ch, ok := s.acks[env.Ack]
		delete(s.acks, env.Ack)
		s.mu.Unlock()
		if ok {
			ch <- env.Data
		}

	case models.EventWelcome, models.EventUserJoined, models.EventUserLeft:
		var text string
		if json.Unmarshal(env.Data, &text) == nil {
			s.notice(text)
		}

	case models.EventChatHistory:
		var history []models.ChatMessage
		if json.Unmarshal(env.Data, &history) == nil {
			for _, msg := range history {
				s.append(msg)
			}
		}

	case models.EventChatMessage:
		var msg models.ChatMessage
		if json.Unmarshal(env.Data, &msg) == nil {
			s.append(msg)
		}
	}
}
