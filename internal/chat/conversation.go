// Package chat holds the conversation model and the streaming aggregator
// that turns completion fragments into a growing transcript.
package chat

import "slices"

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

// Conversation is an ordered transcript, oldest turn first.
type Conversation []Turn

// Clone returns an independent copy. A nil conversation clones to an empty,
// non-nil one so it always encodes as a JSON array.
func (c Conversation) Clone() Conversation {
	if c == nil {
		return Conversation{}
	}
	return slices.Clone(c)
}

// Last returns the most recent turn, if any.
func (c Conversation) Last() (Turn, bool) {
	if len(c) == 0 {
		return Turn{}, false
	}
	return c[len(c)-1], true
}

// Exchanges counts user turns.
func (c Conversation) Exchanges() int {
	n := 0
	for _, t := range c {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}

// Clear returns an empty conversation and an empty status message.
func Clear() (Conversation, string) {
	return Conversation{}, ""
}

// ClearPrompt returns the empty prompt text.
func ClearPrompt() string {
	return ""
}
