package dialog

import (
	"time"

	"github.com/flatvoice/go-flatvoice/pkg/llm"
)

// Context is the mutable per-session dialogue state. It is single-owner:
// the server guarantees at most one in-flight turn per session, so Context
// carries no lock of its own.
type Context struct {
	Params    Params
	StartedAt time.Time

	shown    []string
	shownSet map[string]bool
	selected string
	history  []llm.Message
}

// NewContext creates an empty dialogue context.
func NewContext() *Context {
	return &Context{
		StartedAt: time.Now(),
		shownSet:  make(map[string]bool),
	}
}

// MarkShown appends id to the shown-listing history. A listing appears in
// the history at most once; re-marking an already shown id is a no-op and
// returns false.
func (c *Context) MarkShown(id string) bool {
	if c.shownSet[id] {
		return false
	}
	c.shownSet[id] = true
	c.shown = append(c.shown, id)
	return true
}

// Shown returns the shown-listing history in insertion order.
func (c *Context) Shown() []string {
	out := make([]string, len(c.shown))
	copy(out, c.shown)
	return out
}

// LastShown returns the most recently shown listing id.
func (c *Context) LastShown() (string, bool) {
	if len(c.shown) == 0 {
		return "", false
	}
	return c.shown[len(c.shown)-1], true
}

// Select records the listing the caller confirmed interest in. The id must
// already be in the shown history; selecting an unshown listing marks it
// shown first so the invariant holds.
func (c *Context) Select(id string) {
	c.MarkShown(id)
	c.selected = id
}

// Selected returns the confirmed listing id, if any.
func (c *Context) Selected() (string, bool) {
	return c.selected, c.selected != ""
}

// AppendMessage records one role-tagged utterance in the message history.
func (c *Context) AppendMessage(role, content string) {
	c.history = append(c.history, llm.Message{Role: role, Content: content})
}

// RecentMessages returns the last n messages. The full history is unbounded;
// only this suffix is ever sent to the language model.
func (c *Context) RecentMessages(n int) []llm.Message {
	if n <= 0 || n >= len(c.history) {
		out := make([]llm.Message, len(c.history))
		copy(out, c.history)
		return out
	}
	out := make([]llm.Message, n)
	copy(out, c.history[len(c.history)-n:])
	return out
}

// MessageCount returns the total number of recorded messages.
func (c *Context) MessageCount() int {
	return len(c.history)
}
