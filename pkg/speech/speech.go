// Package speech provides the speech side of the voice pipeline: ports for
// the external transcription and synthesis services, reply segmentation
// into speakable phrases, and the streaming coordinator that emits each
// phrase's audio as soon as it is ready, in strict order.
package speech

import "context"

// Transcriber converts caller audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer converts reply text into audio bytes. The audio format is
// opaque to the pipeline; it is handed to the playback side unchanged.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ChunkSynthesizer is implemented by synthesizers that can deliver audio
// incrementally. Chunks arrive in generation order within a single call;
// the concatenation of all chunks is the phrase audio.
type ChunkSynthesizer interface {
	SynthesizeStream(ctx context.Context, text string, onChunk func([]byte)) error
}

// TranscriberFunc adapts a function to the Transcriber interface.
type TranscriberFunc func(ctx context.Context, audio []byte) (string, error)

// Transcribe implements Transcriber.
func (f TranscriberFunc) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return f(ctx, audio)
}

// SynthesizerFunc adapts a function to the Synthesizer interface.
type SynthesizerFunc func(ctx context.Context, text string) ([]byte, error)

// Synthesize implements Synthesizer.
func (f SynthesizerFunc) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return f(ctx, text)
}
