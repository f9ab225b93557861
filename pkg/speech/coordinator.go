package speech

import (
	"context"

	"github.com/flatvoice/go-flatvoice/internal/log"
)

// Phrase is one synthesized fragment of a reply, identified only by its
// position within the turn. Either Audio or Err is set.
type Phrase struct {
	Seq   int
	Text  string
	Audio []byte
	Err   error
}

// Coordinator turns a fully-resolved reply into an ordered stream of phrase
// audio. Synthesis is performed sequentially, not fanned out: phrases must
// reach the wire in segmentation order, and sequential synthesis preserves
// that without a resequencing buffer. Downstream emission and playback of
// phrase N may still overlap the synthesis of phrase N+1.
type Coordinator struct {
	synth  Synthesizer
	budget int
}

// NewCoordinator creates a coordinator. A non-positive budget selects
// DefaultPhraseBudget.
func NewCoordinator(synth Synthesizer, budget int) *Coordinator {
	if budget <= 0 {
		budget = DefaultPhraseBudget
	}
	return &Coordinator{synth: synth, budget: budget}
}

// Stream segments text and synthesizes each phrase in order, invoking emit
// as soon as a phrase's audio is ready. A failed phrase is emitted as a
// typed error and does not abort the remaining phrases; only context
// cancellation stops the stream early.
func (c *Coordinator) Stream(ctx context.Context, text string, emit func(Phrase)) error {
	for i, phrase := range Segment(text, c.budget) {
		if err := ctx.Err(); err != nil {
			return err
		}

		audio, err := c.synth.Synthesize(ctx, phrase)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("phrase synthesis failed", "seq", i, "blocked", IsBlocked(err), "error", err)
			emit(Phrase{Seq: i, Text: phrase, Err: err})
			continue
		}
		if len(audio) == 0 {
			emit(Phrase{Seq: i, Text: phrase, Err: ErrEmptyAudio})
			continue
		}
		emit(Phrase{Seq: i, Text: phrase, Audio: audio})
	}
	return nil
}

// StreamChunks behaves like Stream but, when the synthesizer supports
// incremental delivery, a phrase is emitted as a series of audio chunks
// that share its sequence number. Synthesizers without chunk support fall
// back to one frame per phrase.
func (c *Coordinator) StreamChunks(ctx context.Context, text string, emit func(Phrase)) error {
	cs, ok := c.synth.(ChunkSynthesizer)
	if !ok {
		return c.Stream(ctx, text, emit)
	}

	for i, phrase := range Segment(text, c.budget) {
		if err := ctx.Err(); err != nil {
			return err
		}

		delivered := false
		err := cs.SynthesizeStream(ctx, phrase, func(chunk []byte) {
			if len(chunk) == 0 {
				return
			}
			delivered = true
			emit(Phrase{Seq: i, Text: phrase, Audio: chunk})
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("phrase synthesis failed", "seq", i, "blocked", IsBlocked(err), "error", err)
			emit(Phrase{Seq: i, Text: phrase, Err: err})
			continue
		}
		if !delivered {
			emit(Phrase{Seq: i, Text: phrase, Err: ErrEmptyAudio})
		}
	}
	return nil
}
