// Package session tracks call lifecycle and owns the per-process session
// registry. A session is one phone-call-like interaction; its state machine
// gates which operations are legal at any moment.
package session

import (
	"errors"
	"sync"
	"time"
)

// State is the call lifecycle state.
type State int

// Call lifecycle: idle → connecting → active → ended → idle.
const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Speaking is the turn-level sub-state: who is talking right now.
type Speaking int

// Speaking sub-states, mutually exclusive.
const (
	SpeakingIdle Speaking = iota
	SpeakingUser
	SpeakingAssistant
)

func (s Speaking) String() string {
	switch s {
	case SpeakingUser:
		return "user"
	case SpeakingAssistant:
		return "assistant"
	default:
		return "idle"
	}
}

// Typed capture errors. These are the only call-terminal failures besides
// an unknown session; each maps to a distinct user-facing message.
var (
	// ErrNoCaptureCapability indicates the client has no audio capture API.
	ErrNoCaptureCapability = errors.New("session: audio capture not supported")

	// ErrCapturePermissionDenied indicates the caller refused microphone access.
	ErrCapturePermissionDenied = errors.New("session: microphone permission denied")

	// ErrNoCaptureDevice indicates no microphone was found.
	ErrNoCaptureDevice = errors.New("session: no capture device found")
)

// CaptureMessage maps a capture failure to the message the caller sees.
// Causes outside the capture taxonomy get the generic retry message.
func CaptureMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoCaptureCapability):
		return "Ваш браузер не поддерживает запись звука."
	case errors.Is(err, ErrCapturePermissionDenied):
		return "Нет доступа к микрофону. Разрешите доступ и попробуйте снова."
	case errors.Is(err, ErrNoCaptureDevice):
		return "Микрофон не найден. Подключите устройство и попробуйте снова."
	default:
		return "Не удалось начать разговор. Попробуйте ещё раз."
	}
}

// defaultResetDelay is how long a call stays in ended before auto-resetting
// to idle for the next caller.
const defaultResetDelay = 2 * time.Second

// Call is the per-session lifecycle state machine. Transition attempts that
// violate preconditions are no-ops, never errors: the caller-side UI fires
// events optimistically and the machine is the single arbiter.
type Call struct {
	mu         sync.Mutex
	state      State
	speaking   Speaking
	captureErr error
	resetDelay time.Duration
	resetTimer *time.Timer
}

// NewCall creates a call machine in the idle state. A non-positive
// resetDelay selects the default.
func NewCall(resetDelay time.Duration) *Call {
	if resetDelay <= 0 {
		resetDelay = defaultResetDelay
	}
	return &Call{resetDelay: resetDelay}
}

// State returns the current lifecycle state.
func (c *Call) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Speaking returns the current turn sub-state.
func (c *Call) Speaking() Speaking {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

// Start moves idle → connecting. Returns false if the call is not idle.
func (c *Call) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return false
	}
	c.stopResetLocked()
	c.captureErr = nil
	c.state = StateConnecting
	return true
}

// Ready moves connecting → active after successful session creation and
// greeting playback.
func (c *Call) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnecting {
		return false
	}
	c.state = StateActive
	return true
}

// Fail reverts connecting → idle when capture setup failed, recording the
// cause for CaptureError. Any in-flight server session is torn down by the
// caller best-effort.
func (c *Call) Fail(cause error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnecting {
		return false
	}
	c.state = StateIdle
	c.speaking = SpeakingIdle
	c.captureErr = cause
	return true
}

// CaptureError returns the cause of the last failed connection attempt,
// nil once a new attempt starts.
func (c *Call) CaptureError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captureErr
}

// End moves active → ended and schedules the auto-reset back to idle.
func (c *Call) End() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return false
	}
	c.state = StateEnded
	c.speaking = SpeakingIdle
	c.resetTimer = time.AfterFunc(c.resetDelay, c.reset)
	return true
}

// reset is the timed ended → idle transition.
func (c *Call) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEnded {
		return
	}
	c.state = StateIdle
}

func (c *Call) stopResetLocked() {
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
}

// BeginRecording marks the caller as speaking. Recording is legal only
// while the call is active and nobody is currently mid-response.
func (c *Call) BeginRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive || c.speaking != SpeakingIdle {
		return false
	}
	c.speaking = SpeakingUser
	return true
}

// EndRecording clears the caller's speaking sub-state.
func (c *Call) EndRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.speaking != SpeakingUser {
		return false
	}
	c.speaking = SpeakingIdle
	return true
}

// BeginPlayback marks the assistant as speaking (response audio started).
func (c *Call) BeginPlayback() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive || c.speaking == SpeakingUser {
		return false
	}
	c.speaking = SpeakingAssistant
	return true
}

// EndPlayback clears the assistant's speaking sub-state.
func (c *Call) EndPlayback() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.speaking != SpeakingAssistant {
		return false
	}
	c.speaking = SpeakingIdle
	return true
}
