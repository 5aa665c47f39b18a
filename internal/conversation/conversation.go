// Package conversation holds the role-tagged turns exchanged with the model
// for a single request.
package conversation

import "strings"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role
	Content string
}

// Conversation is append-only. The system turn is fixed when it is created.
type Conversation struct {
	system string
	turns  []Turn
}

func New(instruction string) *Conversation {
	return &Conversation{system: strings.TrimSpace(instruction)}
}

func (c *Conversation) Instruction() string {
	return c.system
}

func (c *Conversation) AddUser(content string) {
	c.turns = append(c.turns, Turn{Role: RoleUser, Content: content})
}

func (c *Conversation) AddAssistant(content string) {
	c.turns = append(c.turns, Turn{Role: RoleAssistant, Content: content})
}

// Turns returns the accumulated user and assistant turns.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Messages returns the full outbound message list: the system turn first,
// then every accumulated turn in order.
func (c *Conversation) Messages() []Turn {
	out := make([]Turn, 0, len(c.turns)+1)
	out = append(out, Turn{Role: RoleSystem, Content: c.system})
	return append(out, c.turns...)
}

func (c *Conversation) Len() int {
	return len(c.turns)
}

// UserTurns counts user turns, the first request included.
func (c *Conversation) UserTurns() int {
	n := 0
	for _, t := range c.turns {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}
