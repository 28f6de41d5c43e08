package conversation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"searchbot/config"
	"searchbot/types"
)

// ErrOutOfOrder is returned when a turn would break user/assistant alternation
var ErrOutOfOrder = errors.New("conversation: turn out of order")

// Context is one session's ordered conversation log. Turns always alternate
// user, assistant, user, ... and the log holds at most maxTurns turns; when it
// grows past that the oldest user/assistant pair is dropped.
type Context struct {
	mu         sync.Mutex
	turns      []types.Turn
	maxTurns   int
	lastActive time.Time
	now        func() time.Time
}

// NewContext creates an empty context. maxTurns <= 0 selects config.DefaultMaxTurns;
// odd values are rounded up so whole exchanges are kept.
func NewContext(maxTurns int) *Context {
	return newContext(maxTurns, time.Now)
}

func newContext(maxTurns int, now func() time.Time) *Context {
	if maxTurns <= 0 {
		maxTurns = config.DefaultMaxTurns
	}
	if maxTurns%2 != 0 {
		maxTurns++
	}
	return &Context{maxTurns: maxTurns, now: now, lastActive: now()}
}

// Record appends a single turn
func (c *Context) Record(role types.Role, text string) error {
	if !role.Valid() {
		return fmt.Errorf("conversation: unknown role %q", role)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if role != c.expectedLocked() {
		return fmt.Errorf("%w: got %s, want %s", ErrOutOfOrder, role, c.expectedLocked())
	}
	c.appendLocked(role, text)
	return nil
}

// RecordExchange appends a query and its reply as one unit. An unanswered user
// turn left by Record is replaced by this exchange's query.
func (c *Context) RecordExchange(query, reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expectedLocked() == types.RoleAssistant {
		c.turns = c.turns[:len(c.turns)-1]
	}
	c.appendLocked(types.RoleUser, query)
	c.appendLocked(types.RoleAssistant, reply)
}

// History formats the log as prompt memory, one "Human:"/"AI:" line per turn
func (c *Context) History() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]string, 0, len(c.turns))
	for _, t := range c.turns {
		prefix := "AI"
		if t.IsUser() {
			prefix = "Human"
		}
		lines = append(lines, prefix+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}

// AllTurns returns a copy of the log in order
func (c *Context) AllTurns() []types.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Turn(nil), c.turns...)
}

// Len reports how many turns are held
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// MaxTurns reports the cap on held turns
func (c *Context) MaxTurns() int { return c.maxTurns }

// LastActive is the time of the last append or lookup
func (c *Context) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func (c *Context) touch() {
	c.mu.Lock()
	c.lastActive = c.now()
	c.mu.Unlock()
}

func (c *Context) expectedLocked() types.Role {
	if len(c.turns)%2 == 0 {
		return types.RoleUser
	}
	return types.RoleAssistant
}

func (c *Context) appendLocked(role types.Role, text string) {
	at := c.now()
	c.turns = append(c.turns, types.Turn{Role: role, Text: text, At: at})
	c.lastActive = at

	for len(c.turns) > c.maxTurns {
		// drop the oldest exchange; copy so the backing array does not pin old turns
		c.turns = append([]types.Turn(nil), c.turns[2:]...)
	}
}
