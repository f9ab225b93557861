package speech_test

import (
	"context"
	"errors"
	"testing"

	"github.com/flatvoice/go-flatvoice/pkg/speech"
)

func TestCoordinatorStream(t *testing.T) {
	ctx := context.Background()
	text := "Первая фраза. Вторая фраза. Третья фраза."

	t.Run("phrases arrive in segmentation order", func(t *testing.T) {
		mock := &speech.MockSynthesizer{}
		coord := speech.NewCoordinator(mock, 180)

		var got []speech.Phrase
		if err := coord.Stream(ctx, text, func(p speech.Phrase) { got = append(got, p) }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 phrases, got %d", len(got))
		}
		for i, p := range got {
			if p.Seq != i {
				t.Errorf("phrase %d has seq %d", i, p.Seq)
			}
			if p.Err != nil {
				t.Errorf("phrase %d failed: %v", i, p.Err)
			}
			if string(p.Audio) != p.Text {
				t.Errorf("phrase %d audio does not match text", i)
			}
		}
	})

	t.Run("failed phrase does not abort the rest", func(t *testing.T) {
		synthErr := errors.New("boom")
		mock := &speech.MockSynthesizer{
			SynthesizeFunc: func(ctx context.Context, text string) ([]byte, error) {
				if text == "Вторая фраза." {
					return nil, synthErr
				}
				return []byte(text), nil
			},
		}
		coord := speech.NewCoordinator(mock, 180)

		var got []speech.Phrase
		if err := coord.Stream(ctx, text, func(p speech.Phrase) { got = append(got, p) }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 phrases, got %d", len(got))
		}
		if got[1].Err == nil {
			t.Error("expected second phrase to carry the error")
		}
		if got[2].Err != nil || len(got[2].Audio) == 0 {
			t.Error("expected third phrase to succeed after the failure")
		}
	})

	t.Run("empty audio is a typed error", func(t *testing.T) {
		mock := &speech.MockSynthesizer{
			SynthesizeFunc: func(ctx context.Context, text string) ([]byte, error) {
				return nil, nil
			},
		}
		coord := speech.NewCoordinator(mock, 180)

		var got []speech.Phrase
		if err := coord.Stream(ctx, "Одна фраза.", func(p speech.Phrase) { got = append(got, p) }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || !errors.Is(got[0].Err, speech.ErrEmptyAudio) {
			t.Fatalf("expected ErrEmptyAudio, got %v", got)
		}
	})

	t.Run("cancellation stops the stream", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(context.Background())
		mock := &speech.MockSynthesizer{
			SynthesizeFunc: func(ctx context.Context, text string) ([]byte, error) {
				cancel() // cancel after the first synthesis
				return []byte(text), nil
			},
		}
		coord := speech.NewCoordinator(mock, 180)

		var got []speech.Phrase
		err := coord.Stream(cancelCtx, text, func(p speech.Phrase) { got = append(got, p) })
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected stream to stop after 1 phrase, got %d", len(got))
		}
	})
}

func TestCoordinatorStreamChunks(t *testing.T) {
	ctx := context.Background()
	text := "Первая фраза. Вторая фраза."

	t.Run("chunks share the phrase sequence number", func(t *testing.T) {
		mock := &speech.MockChunkSynthesizer{}
		coord := speech.NewCoordinator(mock, 180)

		var got []speech.Phrase
		if err := coord.StreamChunks(ctx, text, func(p speech.Phrase) { got = append(got, p) }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("expected 2 chunks per phrase, got %d frames", len(got))
		}

		assembled := map[int][]byte{}
		for i, p := range got {
			if p.Err != nil {
				t.Fatalf("frame %d failed: %v", i, p.Err)
			}
			assembled[p.Seq] = append(assembled[p.Seq], p.Audio...)
		}
		if string(assembled[0]) != "Первая фраза." || string(assembled[1]) != "Вторая фраза." {
			t.Errorf("reassembled chunks do not match phrases: %q / %q", assembled[0], assembled[1])
		}
		if got[0].Seq != 0 || got[1].Seq != 0 || got[2].Seq != 1 || got[3].Seq != 1 {
			t.Errorf("chunk sequencing wrong: %+v", got)
		}
	})

	t.Run("failed phrase does not abort the rest", func(t *testing.T) {
		synthErr := errors.New("boom")
		mock := &speech.MockChunkSynthesizer{
			SynthesizeStreamFunc: func(ctx context.Context, text string, onChunk func([]byte)) error {
				if text == "Первая фраза." {
					return synthErr
				}
				onChunk([]byte(text))
				return nil
			},
		}
		coord := speech.NewCoordinator(mock, 180)

		var got []speech.Phrase
		if err := coord.StreamChunks(ctx, text, func(p speech.Phrase) { got = append(got, p) }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 frames, got %d", len(got))
		}
		if !errors.Is(got[0].Err, synthErr) {
			t.Errorf("expected first phrase to carry the error, got %v", got[0].Err)
		}
		if got[1].Err != nil || got[1].Seq != 1 {
			t.Errorf("expected second phrase to succeed: %+v", got[1])
		}
	})

	t.Run("no chunks is a typed error", func(t *testing.T) {
		mock := &speech.MockChunkSynthesizer{
			SynthesizeStreamFunc: func(ctx context.Context, text string, onChunk func([]byte)) error {
				return nil
			},
		}
		coord := speech.NewCoordinator(mock, 180)

		var got []speech.Phrase
		if err := coord.StreamChunks(ctx, "Одна фраза.", func(p speech.Phrase) { got = append(got, p) }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || !errors.Is(got[0].Err, speech.ErrEmptyAudio) {
			t.Fatalf("expected ErrEmptyAudio, got %v", got)
		}
	})

	t.Run("plain synthesizer falls back to whole phrases", func(t *testing.T) {
		mock := &speech.MockSynthesizer{}
		coord := speech.NewCoordinator(mock, 180)

		var got []speech.Phrase
		if err := coord.StreamChunks(ctx, text, func(p speech.Phrase) { got = append(got, p) }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 1 frame per phrase, got %d", len(got))
		}
		for i, p := range got {
			if p.Seq != i || string(p.Audio) != p.Text {
				t.Errorf("frame %d = %+v", i, p)
			}
		}
	})
}

func TestSynthesisErrorBlocked(t *testing.T) {
	blocked := &speech.SynthesisError{StatusCode: 403, Blocked: true}
	if !speech.IsBlocked(blocked) {
		t.Error("expected blocked error to report as blocked")
	}

	plain := &speech.SynthesisError{StatusCode: 422, Body: "invalid voice settings"}
	if speech.IsBlocked(plain) {
		t.Error("API rejection must not report as blocked")
	}
	if speech.IsBlocked(errors.New("other")) {
		t.Error("unrelated error must not report as blocked")
	}
}

func TestProviderConstructorValidation(t *testing.T) {
	if _, err := speech.NewElevenLabs("", "voice"); !errors.Is(err, speech.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := speech.NewElevenLabs("key", ""); !errors.Is(err, speech.ErrMissingVoiceID) {
		t.Errorf("expected ErrMissingVoiceID, got %v", err)
	}
	if _, err := speech.NewWhisper(""); !errors.Is(err, speech.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}
