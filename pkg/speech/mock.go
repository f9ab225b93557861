package speech

import (
	"context"
	"sync"
)

// MockSynthesizer is a Synthesizer for testing. Without a SynthesizeFunc it
// returns the phrase text bytes as the "audio", which keeps assertions on
// ordering readable.
type MockSynthesizer struct {
	mu sync.Mutex

	SynthesizeFunc func(ctx context.Context, text string) ([]byte, error)

	// Captured calls for assertions.
	Texts []string
}

// Synthesize implements Synthesizer.
func (m *MockSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	m.mu.Lock()
	m.Texts = append(m.Texts, text)
	m.mu.Unlock()
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}
	return []byte(text), nil
}

// Calls returns the captured phrase texts.
func (m *MockSynthesizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Texts))
	copy(out, m.Texts)
	return out
}

// MockChunkSynthesizer is a chunk-capable MockSynthesizer. Without a
// SynthesizeStreamFunc it delivers the phrase text bytes in two chunks.
type MockChunkSynthesizer struct {
	MockSynthesizer

	SynthesizeStreamFunc func(ctx context.Context, text string, onChunk func([]byte)) error
}

// SynthesizeStream implements ChunkSynthesizer.
func (m *MockChunkSynthesizer) SynthesizeStream(ctx context.Context, text string, onChunk func([]byte)) error {
	m.mu.Lock()
	m.Texts = append(m.Texts, text)
	m.mu.Unlock()
	if m.SynthesizeStreamFunc != nil {
		return m.SynthesizeStreamFunc(ctx, text, onChunk)
	}
	b := []byte(text)
	onChunk(b[:len(b)/2])
	onChunk(b[len(b)/2:])
	return nil
}

// MockTranscriber is a Transcriber for testing.
type MockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audio []byte) (string, error)
	Text           string
}

// Transcribe implements Transcriber.
func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio)
	}
	return m.Text, nil
}
