// Package analytics is the independent side-channel that records what
// happened on each call. It is fire-and-forget by contract: recording never
// blocks the dialogue pipeline, and failures (a full buffer) are swallowed
// by dropping the event.
package analytics

import (
	"sync"
	"time"

	"github.com/flatvoice/go-flatvoice/internal/log"
	"github.com/flatvoice/go-flatvoice/pkg/dialog"
)

// Event is one recorded turn.
type Event struct {
	SessionID string
	Action    dialog.Action
	ListingID string
	At        time.Time
}

// Summary is the accumulated record of one session.
type Summary struct {
	SessionID string            `json:"sessionId"`
	StartedAt time.Time         `json:"startedAt"`
	EndedAt   time.Time         `json:"endedAt,omitempty"`
	Turns     int               `json:"turns"`
	Actions   map[string]int    `json:"actions"`
	Shown     []string          `json:"shown,omitempty"`
	Selected  string            `json:"selected,omitempty"`
	Params    dialog.Params     `json:"params"`
	Ended     bool              `json:"ended"`
}

// Recorder accumulates per-session summaries in memory. A buffered channel
// decouples the pipeline from the bookkeeping goroutine.
type Recorder struct {
	events chan Event

	mu        sync.RWMutex
	summaries map[string]*Summary
	order     []string

	done chan struct{}
	once sync.Once
}

// NewRecorder creates a recorder and starts its bookkeeping goroutine.
func NewRecorder() *Recorder {
	r := &Recorder{
		events:    make(chan Event, 256),
		summaries: make(map[string]*Summary),
		done:      make(chan struct{}),
	}
	go r.loop()
	return r
}

// Begin registers a session.
func (r *Recorder) Begin(sessionID string, startedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.summaries[sessionID]; ok {
		return
	}
	r.summaries[sessionID] = &Summary{
		SessionID: sessionID,
		StartedAt: startedAt,
		Actions:   make(map[string]int),
	}
	r.order = append(r.order, sessionID)
}

// Track records a turn. Never blocks: if the buffer is full the event is
// dropped.
func (r *Recorder) Track(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case r.events <- ev:
	default:
		log.Debug("analytics buffer full, dropping event", "session", ev.SessionID)
	}
}

// Finish marks a session ended and snapshots its final parameter state.
// The summary is returned for the session-end response.
func (r *Recorder) Finish(sessionID string, params dialog.Params, shown []string, selected string) Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.summaries[sessionID]
	if !ok {
		s = &Summary{SessionID: sessionID, Actions: make(map[string]int)}
		r.summaries[sessionID] = s
		r.order = append(r.order, sessionID)
	}
	s.EndedAt = time.Now()
	s.Ended = true
	s.Params = params
	s.Shown = shown
	s.Selected = selected
	return *s
}

// Summaries returns all recorded sessions in creation order.
func (r *Recorder) Summaries() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0, len(r.order))
	for _, id := range r.order {
		if s, ok := r.summaries[id]; ok {
			out = append(out, *s)
		}
	}
	return out
}

// Close stops the bookkeeping goroutine.
func (r *Recorder) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *Recorder) loop() {
	for {
		select {
		case <-r.done:
			return
		case ev := <-r.events:
			r.apply(ev)
		}
	}
}

func (r *Recorder) apply(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.summaries[ev.SessionID]
	if !ok {
		return
	}
	s.Turns++
	s.Actions[string(ev.Action)]++
	if ev.ListingID != "" && ev.Action == dialog.ActionConfirm {
		s.Selected = ev.ListingID
	}
}
