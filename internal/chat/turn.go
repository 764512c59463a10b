// Package chat holds the stylist conversation and drives one streamed reply at a time.
package chat

import (
	"fmt"

	"github.com/diogo/vestry/internal/api"
)

// Role identifies who wrote a turn
type Role string

const (
	RoleUser      Role = api.RoleUser
	RoleAssistant Role = api.RoleAssistant
)

// Turn is one message in the conversation
type Turn struct {
	Role    Role
	Content string
}

// Conversation is an ordered turn log. Turns are append-only; only the
// assistant turn currently being streamed may be rewritten.
// Conversation is not safe for concurrent use; Session guards it.
type Conversation struct {
	turns []Turn
	open  int // index of the streaming assistant turn, -1 when none
}

// NewConversation creates a conversation seeded with turns
func NewConversation(turns ...Turn) *Conversation {
	return &Conversation{
		turns: append([]Turn(nil), turns...),
		open:  -1,
	}
}

// AppendUser adds a user turn and closes any open assistant turn
func (c *Conversation) AppendUser(content string) {
	c.open = -1
	c.turns = append(c.turns, Turn{Role: RoleUser, Content: content})
}

// AppendAssistant adds a finished assistant turn
func (c *Conversation) AppendAssistant(content string) {
	c.open = -1
	c.turns = append(c.turns, Turn{Role: RoleAssistant, Content: content})
}

// UpdateAssistant sets the content of the streaming assistant turn,
// appending one first if no reply is in progress.
func (c *Conversation) UpdateAssistant(content string) {
	if c.open >= 0 && c.open == len(c.turns)-1 {
		c.turns[c.open].Content = content
		return
	}
	c.turns = append(c.turns, Turn{Role: RoleAssistant, Content: content})
	c.open = len(c.turns) - 1
}

// Streaming reports whether an assistant turn is open for updates
func (c *Conversation) Streaming() bool {
	return c.open >= 0
}

// Seal freezes the streaming assistant turn, if any
func (c *Conversation) Seal() {
	c.open = -1
}

// Turns returns a copy of the log
func (c *Conversation) Turns() []Turn {
	return append([]Turn(nil), c.turns...)
}

// Last returns the most recent turn
func (c *Conversation) Last() (Turn, bool) {
	if len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1], true
}

// Len returns the number of turns
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Messages converts the log into the relay request shape
func (c *Conversation) Messages() []api.Message {
	out := make([]api.Message, len(c.turns))
	for i, t := range c.turns {
		out[i] = api.Message{Role: string(t.Role), Content: t.Content}
	}
	return out
}

// String renders the log for debugging
func (c *Conversation) String() string {
	return fmt.Sprintf("Conversation{turns: %d, streaming: %v}", len(c.turns), c.Streaming())
}
