// Package playback implements the client-side phrase audio queue. Phrase
// audio arrives out-of-band as the server produces it, but must play in
// production order: at most one phrase is audible at a time, and the next
// queued phrase begins immediately when the current one completes or fails.
package playback

import (
	"context"
	"sync"

	"github.com/flatvoice/go-flatvoice/internal/log"
)

// Player renders one phrase of audio and returns when playback completes.
// Play must honor context cancellation: Clear cancels the in-flight phrase
// through it.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// PlayerFunc adapts a function to the Player interface.
type PlayerFunc func(ctx context.Context, audio []byte) error

// Play implements Player.
func (f PlayerFunc) Play(ctx context.Context, audio []byte) error {
	return f(ctx, audio)
}

// Queue is a strictly-ordered single-consumer playback queue.
//
// Queue operations are a critical section even under a cooperative
// scheduler: completion callbacks and new enqueues interleave. The
// generation counter makes cancellation atomic with respect to the next
// enqueue — a drain loop that survives Clear observes a stale generation
// and exits without touching state, so no orphaned phrase can resume.
type Queue struct {
	player Player

	mu      sync.Mutex
	pending [][]byte
	playing bool
	gen     uint64
	cancel  context.CancelFunc

	// OnPlaybackStart fires when the queue goes from silent to audible;
	// OnPlaybackEnd fires when it drains or is cleared. Both are invoked
	// outside the queue lock.
	OnPlaybackStart func()
	OnPlaybackEnd   func()
}

// NewQueue creates a playback queue over the given player.
func NewQueue(player Player) *Queue {
	return &Queue{player: player}
}

// Enqueue appends phrase audio. If the queue is idle, playback starts
// immediately; otherwise the phrase waits its turn.
func (q *Queue) Enqueue(audio []byte) {
	q.mu.Lock()
	q.pending = append(q.pending, audio)
	if q.playing {
		q.mu.Unlock()
		return
	}
	q.playing = true
	gen := q.gen
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.mu.Unlock()

	if q.OnPlaybackStart != nil {
		q.OnPlaybackStart()
	}
	go q.drain(ctx, gen)
}

// drain plays queued phrases back-to-back until the queue empties or the
// generation changes.
func (q *Queue) drain(ctx context.Context, gen uint64) {
	for {
		q.mu.Lock()
		if q.gen != gen {
			// Cleared while playing; the new generation owns all state.
			q.mu.Unlock()
			return
		}
		if len(q.pending) == 0 {
			q.playing = false
			q.cancel = nil
			q.mu.Unlock()
			if q.OnPlaybackEnd != nil {
				q.OnPlaybackEnd()
			}
			return
		}
		audio := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		// A failed phrase never stalls the queue; advance to the next.
		if err := q.player.Play(ctx, audio); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("phrase playback failed", "error", err)
		}
	}
}

// Clear stops the currently audible phrase, discards everything pending,
// and resets the playing flag atomically with respect to the next Enqueue.
// Used when the call ends or the caller starts a new recording.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.gen++
	q.pending = nil
	wasPlaying := q.playing
	q.playing = false
	cancel := q.cancel
	q.cancel = nil
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if wasPlaying && q.OnPlaybackEnd != nil {
		q.OnPlaybackEnd()
	}
}

// IsPlaying reports whether a phrase is currently audible.
func (q *Queue) IsPlaying() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

// Pending returns the number of phrases waiting behind the current one.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
