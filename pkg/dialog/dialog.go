// Package dialog implements the dialogue policy for the apartment voice
// assistant: a fast local intent resolver that recognizes common phrases
// without a language-model round trip, and a policy engine that falls back
// to a structured completion when no local rule matches.
//
// The policy is turn-based. Each caller utterance resolves to exactly one
// action, and the engine owns all mutation of the per-session Context:
// parameter merges, shown-listing history, and listing selection.
package dialog

import (
	"context"

	"github.com/flatvoice/go-flatvoice/pkg/catalog"
	"github.com/flatvoice/go-flatvoice/pkg/llm"
)

// Action is the resolved outcome of a turn.
type Action string

// Turn actions.
const (
	ActionNone    Action = "none"
	ActionSearch  Action = "search"
	ActionNext    Action = "next"
	ActionConfirm Action = "confirm_interest"
	ActionEnd     Action = "end"
)

// Valid reports whether a is one of the known actions. Completion payloads
// are untrusted; anything unknown is treated as ActionNone.
func (a Action) Valid() bool {
	switch a {
	case ActionNone, ActionSearch, ActionNext, ActionConfirm, ActionEnd:
		return true
	}
	return false
}

// Outcome is the fully-resolved result of one turn: what to say, what was
// decided, and the resulting parameter state.
type Outcome struct {
	Response   string
	Action     Action
	Listing    *catalog.Listing
	LandingURL string
	Params     Params
}

// Completer requests a structured completion from the language model.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// StreamingCompleter is the lower-latency variant: tokens are streamed and
// accumulated, and the same parse contract runs once the stream completes.
type StreamingCompleter interface {
	CompleteStream(ctx context.Context, messages []llm.Message, onToken func(string)) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, messages []llm.Message) (string, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	return f(ctx, messages)
}

// Renderer produces a presentation reference (landing URL) for a listing.
type Renderer interface {
	Landing(l catalog.Listing) (string, error)
}
