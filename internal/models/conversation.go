package models

import "strings"

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is an append-only sequence of turns. Append never mutates the
// receiver's backing array, so older values stay valid after a turn.
type History []Turn

// Append returns a new history with turns added at the end.
func (h History) Append(turns ...Turn) History {
	out := make(History, len(h), len(h)+len(turns))
	copy(out, h)
	return append(out, turns...)
}

// Transcript renders the history as "role: content" lines.
func (h History) Transcript() string {
	lines := make([]string, len(h))
	for i, t := range h {
		lines[i] = string(t.Role) + ": " + t.Content
	}
	return strings.Join(lines, "\n")
}

// Background is what the intake survey collected about the user.
type Background struct {
	Name     string `json:"name" yaml:"name"`
	Age      string `json:"age" yaml:"age"`
	Location string `json:"location" yaml:"location"`
	Needs    string `json:"needs" yaml:"needs"`
}
