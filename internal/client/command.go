package client

import (
	"fmt"
	"strings"
)

type ActionKind int

const (
	// ActionSend transmits the text verbatim as a chat message.
	ActionSend ActionKind = iota
	// ActionClearLocal purges the local message buffer. No network call.
	ActionClearLocal
	// ActionRequestRooms asks the gateway for the membership list.
	ActionRequestRooms
	// ActionRequestJoin asks the gateway to join Room.
	ActionRequestJoin
	// ActionRequestSwitch asks the gateway to switch to an already-joined Room.
	ActionRequestSwitch
	// ActionNotice shows Text locally. No network call.
	ActionNotice
	// ActionUnknown is an unrecognized slash command; Command holds the
	// name as the user typed it.
	ActionUnknown
)

type Action struct {
	Kind    ActionKind
	Text    string
	Room    string
	Command string
}

// Parse interprets outgoing text before transmission. Text starting with
// "/" is a command (case-insensitive name); anything else is sent as-is.
// The joinedRooms set guards /switch: switching to a room never joined in
// this connection's lifetime yields a local guidance notice instead.
func Parse(text string, joinedRooms []string) Action {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return Action{Kind: ActionSend, Text: trimmed}
	}

	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return Action{Kind: ActionUnknown}
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "clear":
		return Action{Kind: ActionClearLocal}

	case "rooms":
		return Action{Kind: ActionRequestRooms}

	case "join":
		if len(args) == 0 {
			return Action{Kind: ActionNotice, Text: "Usage: /join <room>"}
		}
		return Action{Kind: ActionRequestJoin, Room: args[0]}

	case "switch":
		if len(args) == 0 {
			return Action{Kind: ActionNotice, Text: "Usage: /switch <room>"}
		}
		room := args[0]
		for _, joined := range joinedRooms {
			if joined == room {
				return Action{Kind: ActionRequestSwitch, Room: room}
			}
		}
		return Action{
			Kind: ActionNotice,
			Text: fmt.Sprintf("You haven't joined room %q yet. Use /join %s first.", room, room),
		}

	default:
		// echo the command back exactly as typed
		return Action{Kind: ActionUnknown, Command: fields[0]}
	}
}
