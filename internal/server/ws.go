package server

import (
	"context"
	"encoding/base64"

	"github.com/gofiber/contrib/websocket"

	"github.com/flatvoice/go-flatvoice/internal/log"
	"github.com/flatvoice/go-flatvoice/pkg/dialog"
	"github.com/flatvoice/go-flatvoice/pkg/speech"
)

// wsEvent is one outbound frame of the realtime voice channel. It mirrors
// the SSE contract: ordered audio frames, per-phrase error frames, one done
// frame per turn. With a chunk-capable synthesizer a phrase arrives as
// several audio frames sharing a seq.
type wsEvent struct {
	Type   string      `json:"type"` // audio, error, done
	Seq    int         `json:"seq,omitempty"`
	Audio  string      `json:"audio,omitempty"`
	Error  string      `json:"error,omitempty"`
	Result *turnResult `json:"result,omitempty"`
}

// handleVoiceWS serves the realtime voice channel. Each binary frame the
// client sends is one complete utterance recording; the server answers with
// the same ordered event sequence as the SSE endpoint.
func (s *Server) handleVoiceWS(c *websocket.Conn) {
	defer c.Close()

	sessionID := c.Params("sessionId")
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		_ = c.WriteJSON(wsEvent{Type: "error", Error: "unknown session"})
		return
	}

	log.Info("ws voice channel open", "session", sess.ID)

	for {
		msgType, data, err := c.ReadMessage()
		if err != nil {
			log.Debug("ws voice channel closed", "session", sess.ID, "error", err)
			return
		}
		if msgType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}

		if !sess.BeginTurn() {
			_ = c.WriteJSON(wsEvent{Type: "error", Error: "a turn is already in progress"})
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		out := s.speakTurn(ctx, sess, data, func(p speech.Phrase) {
			if p.Err != nil {
				_ = c.WriteJSON(wsEvent{Type: "error", Seq: p.Seq, Error: p.Err.Error()})
				return
			}
			_ = c.WriteJSON(wsEvent{
				Type:  "audio",
				Seq:   p.Seq,
				Audio: base64.StdEncoding.EncodeToString(p.Audio),
			})
		}, s.coordinator.StreamChunks)
		cancel()
		sess.EndTurn()

		result := toTurnResult(out)
		if err := c.WriteJSON(wsEvent{Type: "done", Result: &result}); err != nil {
			log.Debug("ws voice channel write failed", "session", sess.ID, "error", err)
			return
		}

		if out.Action == dialog.ActionEnd {
			return
		}
	}
}
