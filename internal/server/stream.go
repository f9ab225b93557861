package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/flatvoice/go-flatvoice/internal/log"
	"github.com/flatvoice/go-flatvoice/pkg/dialog"
	"github.com/flatvoice/go-flatvoice/pkg/session"
	"github.com/flatvoice/go-flatvoice/pkg/speech"
)

// ackTimeout bounds the latency-masking filler synthesis. A slow filler
// defeats its own purpose.
const ackTimeout = 3 * time.Second

// handleVoiceStream is the main voice turn endpoint: multipart audio in,
// server-sent events out. Audio frames arrive in strict phrase order,
// error frames report per-phrase failures, and exactly one done frame
// closes the turn.
func (s *Server) handleVoiceStream(c *fiber.Ctx) error {
	sess, audio, err := s.parseTurnRequest(c)
	if err != nil {
		return err
	}
	if !sess.BeginTurn() {
		return fiber.NewError(fiber.StatusConflict, "a turn is already in progress")
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sess.EndTurn()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// A failed flush means the client is gone; cancel so the
		// remaining phrase synthesis stops instead of feeding a dead
		// connection.
		sse := &sseWriter{w: w, cancel: cancel}
		out := s.speakTurn(ctx, sess, audio, sse.emit, s.coordinator.Stream)
		sse.done(toTurnResult(out))
	}))
	return nil
}

// handleVoice is the non-streaming variant: the same turn, one JSON body,
// all phrase audio concatenated.
func (s *Server) handleVoice(c *fiber.Ctx) error {
	sess, audio, err := s.parseTurnRequest(c)
	if err != nil {
		return err
	}
	if !sess.BeginTurn() {
		return fiber.NewError(fiber.StatusConflict, "a turn is already in progress")
	}
	defer sess.EndTurn()

	out, _, err := s.runTurn(c.Context(), sess, audio)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "transcription failed")
	}

	var combined bytes.Buffer
	_ = s.coordinator.Stream(c.Context(), out.Response, func(p speech.Phrase) {
		if p.Err == nil {
			combined.Write(p.Audio)
		}
	})

	result := toTurnResult(out)
	return c.JSON(fiber.Map{
		"response":   result.Response,
		"action":     result.Action,
		"apartment":  result.Apartment,
		"landingUrl": result.LandingURL,
		"params":     result.Params,
		"audio":      base64.StdEncoding.EncodeToString(combined.Bytes()),
	})
}

// parseTurnRequest validates the multipart turn request. Unknown sessions
// and missing audio are both 400s by contract.
func (s *Server) parseTurnRequest(c *fiber.Ctx) (*session.Session, []byte, error) {
	sessionID := c.FormValue("sessionId")
	if sessionID == "" {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "sessionId is required")
	}
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "unknown session")
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "audio payload is required")
	}
	f, err := file.Open()
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "audio payload is unreadable")
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "audio payload is unreadable")
	}
	return sess, audio, nil
}

// streamFunc is the synthesis mode a transport speaks with: whole phrases
// for SSE, chunked phrases for the realtime socket.
type streamFunc func(ctx context.Context, text string, emit func(speech.Phrase)) error

// speakTurn runs the turn and synthesizes the reply, emitting phrase events
// in order. The acknowledgement filler goes out first, while the policy
// engine is still working, purely to mask latency.
func (s *Server) speakTurn(ctx context.Context, sess *session.Session, audio []byte, emit func(speech.Phrase), stream streamFunc) dialog.Outcome {
	type turnOut struct {
		out dialog.Outcome
		err error
	}
	turnCh := make(chan turnOut, 1)
	go func() {
		out, _, err := s.runTurn(ctx, sess, audio)
		turnCh <- turnOut{out, err}
	}()

	// Filler phrase: sequence -1 keeps real phrase numbering intact.
	ackCtx, cancel := context.WithTimeout(ctx, ackTimeout)
	if ack, err := s.synthesizeOnce(ackCtx, dialog.Acknowledgement()); err == nil {
		emit(speech.Phrase{Seq: -1, Audio: ack})
	}
	cancel()

	t := <-turnCh
	if t.err != nil {
		log.Warn("turn failed", "session", sess.ID, "error", t.err)
		emit(speech.Phrase{Seq: 0, Err: t.err})
		return dialog.Outcome{Action: dialog.ActionNone, Params: sess.Dialog.Params}
	}

	sess.Call.BeginPlayback()
	defer sess.Call.EndPlayback()

	if err := stream(ctx, t.out.Response, emit); err != nil {
		log.Warn("reply stream aborted", "session", sess.ID, "error", err)
	}
	return t.out
}

// synthesizeOnce synthesizes a single short utterance through the
// coordinator's synthesizer without segmentation.
func (s *Server) synthesizeOnce(ctx context.Context, text string) ([]byte, error) {
	var audio []byte
	var failure error
	err := s.coordinator.Stream(ctx, text, func(p speech.Phrase) {
		if p.Err != nil {
			failure = p.Err
			return
		}
		audio = append(audio, p.Audio...)
	})
	if err != nil {
		return nil, err
	}
	if failure != nil && len(audio) == 0 {
		return nil, failure
	}
	return audio, nil
}

// sseWriter serializes pipeline events into server-sent-event frames.
// A flush failure triggers cancel, stopping the rest of the turn.
type sseWriter struct {
	w      *bufio.Writer
	cancel context.CancelFunc
}

// emit writes one phrase as an audio or error frame and flushes so the
// client can start playback immediately.
func (s *sseWriter) emit(p speech.Phrase) {
	if p.Err != nil {
		payload, _ := json.Marshal(fiber.Map{"seq": p.Seq, "error": p.Err.Error()})
		fmt.Fprintf(s.w, "event: error\ndata: %s\n\n", payload)
	} else {
		fmt.Fprintf(s.w, "event: audio\ndata: %s\n\n", base64.StdEncoding.EncodeToString(p.Audio))
	}
	if err := s.w.Flush(); err != nil && s.cancel != nil {
		s.cancel()
	}
}

// done writes the single terminal frame of the turn.
func (s *sseWriter) done(result turnResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		payload = []byte(`{}`)
	}
	fmt.Fprintf(s.w, "event: done\ndata: %s\n\n", payload)
	s.w.Flush()
}
