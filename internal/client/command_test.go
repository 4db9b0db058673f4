package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	joined := []string{"public", "general"}

	tests := []struct {
		name  string
		input string
		want  Action
	}{
		{
			name:  "plain text is sent verbatim",
			input: "hello there",
			want:  Action{Kind: ActionSend, Text: "hello there"},
		},
		{
			name:  "surrounding whitespace is trimmed",
			input: "  hi  ",
			want:  Action{Kind: ActionSend, Text: "hi"},
		},
		{
			name:  "clear",
			input: "/clear",
			want:  Action{Kind: ActionClearLocal},
		},
		{
			name:  "command names are case-insensitive",
			input: "/CLEAR",
			want:  Action{Kind: ActionClearLocal},
		},
		{
			name:  "rooms",
			input: "/rooms",
			want:  Action{Kind: ActionRequestRooms},
		},
		{
			name:  "join with room",
			input: "/join random",
			want:  Action{Kind: ActionRequestJoin, Room: "random"},
		},
		{
			name:  "join without room",
			input: "/join",
			want:  Action{Kind: ActionNotice, Text: "Usage: /join <room>"},
		},
		{
			name:  "switch to a joined room",
			input: "/switch general",
			want:  Action{Kind: ActionRequestSwitch, Room: "general"},
		},
		{
			name:  "switch to a never-joined room stays local",
			input: "/switch random",
			want: Action{
				Kind: ActionNotice,
				Text: `You haven't joined room "random" yet. Use /join random first.`,
			},
		},
		{
			name:  "switch without room",
			input: "/switch",
			want:  Action{Kind: ActionNotice, Text: "Usage: /switch <room>"},
		},
		{
			name:  "unknown command carries its name",
			input: "/teleport home",
			want:  Action{Kind: ActionUnknown, Command: "teleport"},
		},
		{
			name:  "unknown command keeps its typed case",
			input: "/Teleport",
			want:  Action{Kind: ActionUnknown, Command: "Teleport"},
		},
		{
			name:  "bare slash",
			input: "/",
			want:  Action{Kind: ActionUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input, joined))
		})
	}
}

func TestParseSwitchWithNoJoinedRooms(t *testing.T) {
	got := Parse("/switch public", nil)
	assert.Equal(t, ActionNotice, got.Kind)
	assert.Equal(t, `You haven't joined room "public" yet. Use /join public first.`, got.Text)
}
