package models

import "time"

// ChatMessage is a room message. The store keeps messages only for a short
// retention window and drops them on its own; nothing in the application
// may assume a previously read message still exists.
type ChatMessage struct {
	Room     string    `json:"room"`
	UserID   string    `json:"userId,omitempty"`
	Username string    `json:"username"`
	Message  string    `json:"msg"`
	System   bool      `json:"system"`
	Replayed bool      `json:"replayed"`
	Sent     time.Time `json:"sent"`
}
