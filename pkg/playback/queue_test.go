package playback_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/flatvoice/go-flatvoice/pkg/playback"
)

// recordingPlayer captures played audio in order.
type recordingPlayer struct {
	mu     sync.Mutex
	played []string
	delay  time.Duration
}

func (p *recordingPlayer) Play(ctx context.Context, audio []byte) error {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	p.played = append(p.played, string(audio))
	p.mu.Unlock()
	return nil
}

func (p *recordingPlayer) Played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.played))
	copy(out, p.played)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestQueuePlaysInOrder(t *testing.T) {
	player := &recordingPlayer{delay: 10 * time.Millisecond}
	q := playback.NewQueue(player)

	q.Enqueue([]byte("one"))
	q.Enqueue([]byte("two"))
	q.Enqueue([]byte("three"))

	waitFor(t, func() bool { return len(player.Played()) == 3 && !q.IsPlaying() })

	got := player.Played()
	want := []string{"one", "two", "three"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("played[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestQueueClearDiscardsPending(t *testing.T) {
	started := make(chan struct{}, 3)
	release := make(chan struct{})
	player := playback.PlayerFunc(func(ctx context.Context, audio []byte) error {
		started <- struct{}{}
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	q := playback.NewQueue(player)

	q.Enqueue([]byte("one"))
	q.Enqueue([]byte("two"))
	q.Enqueue([]byte("three"))

	<-started // phrase one is audible
	q.Clear()
	close(release)

	time.Sleep(50 * time.Millisecond)
	if q.IsPlaying() {
		t.Error("queue must be silent after Clear")
	}
	if q.Pending() != 0 {
		t.Errorf("pending = %d, want 0", q.Pending())
	}
	select {
	case <-started:
		t.Error("a pending phrase started after Clear")
	default:
	}
}

func TestQueueEnqueueAfterClearStartsFresh(t *testing.T) {
	player := &recordingPlayer{}
	q := playback.NewQueue(player)

	q.Enqueue([]byte("stale"))
	q.Clear()
	q.Enqueue([]byte("fresh"))

	waitFor(t, func() bool {
		for _, p := range player.Played() {
			if p == "fresh" {
				return true
			}
		}
		return false
	})
}

func TestQueueFailedPhraseAdvances(t *testing.T) {
	var calls int
	var mu sync.Mutex
	player := playback.PlayerFunc(func(ctx context.Context, audio []byte) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			return context.DeadlineExceeded
		}
		return nil
	})
	q := playback.NewQueue(player)

	q.Enqueue([]byte("bad"))
	q.Enqueue([]byte("good"))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	})
}

func TestQueueCallbacks(t *testing.T) {
	var mu sync.Mutex
	var events []string
	player := &recordingPlayer{delay: 5 * time.Millisecond}
	q := playback.NewQueue(player)
	q.OnPlaybackStart = func() {
		mu.Lock()
		events = append(events, "start")
		mu.Unlock()
	}
	q.OnPlaybackEnd = func() {
		mu.Lock()
		events = append(events, "end")
		mu.Unlock()
	}

	q.Enqueue([]byte("one"))
	q.Enqueue([]byte("two"))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	if events[0] != "start" || events[1] != "end" {
		t.Errorf("events = %v, want [start end]", events)
	}
}
