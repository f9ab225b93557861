package server

import (
	"bufio"
	"context"
	"errors"
	"testing"

	"github.com/flatvoice/go-flatvoice/pkg/analytics"
	"github.com/flatvoice/go-flatvoice/pkg/catalog"
	"github.com/flatvoice/go-flatvoice/pkg/delivery"
	"github.com/flatvoice/go-flatvoice/pkg/dialog"
	"github.com/flatvoice/go-flatvoice/pkg/session"
	"github.com/flatvoice/go-flatvoice/pkg/speech"
)

type failingWriter struct {
	allowed int
	writes  int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	if f.writes > f.allowed {
		return 0, errors.New("connection reset by peer")
	}
	return len(p), nil
}

func TestSSEWriterCancelsWhenClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fw := &failingWriter{allowed: 1}
	sse := &sseWriter{w: bufio.NewWriter(fw), cancel: cancel}

	sse.emit(speech.Phrase{Seq: 0, Audio: []byte("a")})
	if ctx.Err() != nil {
		t.Fatal("first flush should succeed")
	}

	sse.emit(speech.Phrase{Seq: 1, Audio: []byte("b")})
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Fatal("flush failure should cancel the turn context")
	}
}

func TestSpeakTurnChunkedFrames(t *testing.T) {
	store := catalog.NewStore(catalog.Seed())
	resolver := dialog.NewResolver(store, dialog.DefaultLexicon())
	renderer := delivery.NewLandingRenderer("https://flatvoice.test")
	engine := dialog.NewEngine(store, resolver, nil, renderer)

	registry := session.NewRegistry()
	defer registry.Close()
	recorder := analytics.NewRecorder()
	defer recorder.Close()

	coord := speech.NewCoordinator(&speech.MockChunkSynthesizer{}, 180)
	srv := New(registry, engine, store, &speech.MockTranscriber{Text: "Помощь"}, coord, recorder, renderer)

	sess := registry.Create()
	var frames []speech.Phrase
	srv.speakTurn(context.Background(), sess, []byte("utterance"), func(p speech.Phrase) {
		if p.Seq >= 0 { // skip the acknowledgement filler
			frames = append(frames, p)
		}
	}, coord.StreamChunks)

	if len(frames) < 2 {
		t.Fatalf("expected chunked frames, got %d", len(frames))
	}
	chunksPerSeq := map[int]int{}
	for _, p := range frames {
		if p.Err != nil {
			t.Fatalf("frame %d failed: %v", p.Seq, p.Err)
		}
		chunksPerSeq[p.Seq]++
	}
	for seq, n := range chunksPerSeq {
		if n != 2 {
			t.Errorf("seq %d arrived in %d chunks, want 2", seq, n)
		}
	}
}
