package memory

import (
	"time"

	"github.com/emyai/server/internal/chat/model"
	"github.com/google/uuid"
)

// newSessionID generates an opaque session token. Overridable for tests.
var newSessionID = func() string {
	return "session_" + uuid.NewString()
}

// Conversation is the in-memory view of one session's history. It is owned
// by a single request at a time; the manager persists and reloads it
// through the store.
type Conversation struct {
	sessionID   string
	turns       []model.Turn
	maxMessages int
	now         func() time.Time
}

// SessionID returns the session token the conversation's turns are stamped
// with.
func (c *Conversation) SessionID() string {
	return c.sessionID
}

// Len returns the number of retained turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Turns returns a copy of the retained turns in insertion order.
func (c *Conversation) Turns() []model.Turn {
	out := make([]model.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Append creates a turn stamped with the current time and session id,
// appends it, and truncates to the configured maximum. Eviction is strictly
// FIFO by insertion order.
func (c *Conversation) Append(role model.Role, content model.Content) {
	c.turns = append(c.turns, model.Turn{
		Role:      role,
		Content:   content,
		Timestamp: c.now(),
		SessionID: c.sessionID,
	})
	c.truncateTo(c.maxMessages)
}

// Seed appends plain role/content pairs, used to adopt client-held history
// into an empty server-side conversation.
func (c *Conversation) Seed(messages []model.Message) {
	for _, m := range messages {
		c.Append(m.Role, m.Content)
	}
}

// RecentWindow returns the last limit turns as plain role/content pairs.
// Structured content passes through unchanged so the backend still sees
// prior image context.
func (c *Conversation) RecentWindow(limit int) []model.Message {
	return toMessages(tail(c.turns, limit))
}

// RecentTextWindow returns the last limit turns with every image-bearing
// turn dropped entirely. Used when the new turn itself carries an image, to
// bound payload size.
func (c *Conversation) RecentTextWindow(limit int) []model.Message {
	recent := tail(c.turns, limit)
	kept := make([]model.Turn, 0, len(recent))
	for _, t := range recent {
		if t.Content.HasImage() {
			continue
		}
		kept = append(kept, t)
	}
	return toMessages(kept)
}

// Stats summarises the retained history for the memory display.
type Stats struct {
	TotalMessages     int        `json:"totalMessages"`
	UserMessages      int        `json:"userMessages"`
	AssistantMessages int        `json:"assistantMessages"`
	CurrentSession    int        `json:"currentSession"`
	OldestMessage     *time.Time `json:"oldestMessage,omitempty"`
	NewestMessage     *time.Time `json:"newestMessage,omitempty"`
}

// Stats computes aggregate counts over the retained turns.
func (c *Conversation) Stats() Stats {
	s := Stats{TotalMessages: len(c.turns)}
	for _, t := range c.turns {
		switch t.Role {
		case model.RoleUser:
			s.UserMessages++
		case model.RoleAssistant:
			s.AssistantMessages++
		}
		if t.SessionID == c.sessionID {
			s.CurrentSession++
		}
	}
	if len(c.turns) > 0 {
		oldest := c.turns[0].Timestamp
		newest := c.turns[len(c.turns)-1].Timestamp
		s.OldestMessage = &oldest
		s.NewestMessage = &newest
	}
	return s
}

func (c *Conversation) truncateTo(max int) {
	if max > 0 && len(c.turns) > max {
		c.turns = append([]model.Turn(nil), c.turns[len(c.turns)-max:]...)
	}
}

func tail(turns []model.Turn, limit int) []model.Turn {
	if limit <= 0 || len(turns) <= limit {
		return turns
	}
	return turns[len(turns)-limit:]
}

func toMessages(turns []model.Turn) []model.Message {
	out := make([]model.Message, 0, len(turns))
	for _, t := range turns {
		out = append(out, model.Message{Role: t.Role, Content: t.Content})
	}
	return out
}
