package models

import "encoding/json"

// Websocket event names. These mirror the logical protocol: notices are
// plain strings, history is a message slice, acks carry the structs below.
const (
	EventWelcome     = "welcome"
	EventChatHistory = "chat history"
	EventChatMessage = "chat message"
	EventUserJoined  = "user joined"
	EventUserLeft    = "user left"
	EventJoinRoom    = "join room"
	EventRoomsList   = "rooms.list"
	EventUserInfo    = "user.info"
	EventAck         = "ack"
)

// Envelope frames every websocket message in both directions. A request
// carrying a non-zero Ack id gets exactly one "ack" envelope back with the
// same id.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   int64           `json:"ack,omitempty"`
}

type RoomAck struct {
	Room  string `json:"room,omitempty"`
	Error string `json:"error,omitempty"`
}

type RoomsAck struct {
	OK    bool     `json:"ok"`
	Rooms []string `json:"rooms,omitempty"`
	Error string   `json:"error,omitempty"`
}

type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type UserInfoAck struct {
	ID    string    `json:"id,omitempty"`
	User  *UserInfo `json:"user"`
	Rooms []string  `json:"rooms,omitempty"`
	Error string    `json:"error,omitempty"`
}
