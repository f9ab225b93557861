package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flatvoice/go-flatvoice/pkg/dialog"
)

// Session is one live call: an opaque caller-unguessable id, the lifecycle
// machine, and the dialogue context mutated by that call's turns.
type Session struct {
	ID        string
	CreatedAt time.Time
	Call      *Call
	Dialog    *dialog.Context

	lastTouch time.Time

	mu         sync.Mutex
	turnActive bool
}

// BeginTurn claims the session's single turn slot. The protocol forbids two
// concurrent turns for the same session; a second claim fails until EndTurn.
func (s *Session) BeginTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turnActive {
		return false
	}
	s.turnActive = true
	s.lastTouch = time.Now()
	return true
}

// EndTurn releases the turn slot.
func (s *Session) EndTurn() {
	s.mu.Lock()
	s.turnActive = false
	s.lastTouch = time.Now()
	s.mu.Unlock()
}

// Registry owns every live session in the process. It replaces the global
// session maps of earlier iterations with an explicit injected object:
// creation on session start, eviction on explicit end, and an optional
// idle-timeout sweep as a hardening measure.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	resetDelay  time.Duration
	idleTimeout time.Duration
	stopSweep   chan struct{}
	sweepOnce   sync.Once
}

// RegistryOption configures the registry.
type RegistryOption func(*Registry)

// WithResetDelay sets the ended → idle auto-reset delay for new calls.
func WithResetDelay(d time.Duration) RegistryOption {
	return func(r *Registry) { r.resetDelay = d }
}

// WithIdleTimeout enables the background sweep that evicts sessions with no
// turn activity for the given duration. Zero disables the sweep.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.idleTimeout = d }
}

// NewRegistry creates an empty session registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions:  make(map[string]*Session),
		stopSweep: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.idleTimeout > 0 {
		go r.sweep()
	}
	return r
}

// Create registers a new session in the connecting state.
func (r *Registry) Create() *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Call:      NewCall(r.resetDelay),
		Dialog:    dialog.NewContext(),
		lastTouch: now,
	}
	s.Call.Start()

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// End evicts the session and moves its call to ended. The evicted session
// is returned so the caller can flush analytics.
func (r *Registry) End(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if ok {
		s.Call.End()
	}
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the idle sweep, if running.
func (r *Registry) Close() {
	r.sweepOnce.Do(func() { close(r.stopSweep) })
}

func (r *Registry) sweep() {
	ticker := time.NewTicker(r.idleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopSweep:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-r.idleTimeout)
			r.mu.Lock()
			for id, s := range r.sessions {
				s.mu.Lock()
				idle := !s.turnActive && s.lastTouch.Before(cutoff)
				s.mu.Unlock()
				if idle {
					delete(r.sessions, id)
					s.Call.End()
				}
			}
			r.mu.Unlock()
		}
	}
}
