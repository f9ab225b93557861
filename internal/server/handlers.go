package server

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/flatvoice/go-flatvoice/internal/log"
	"github.com/flatvoice/go-flatvoice/pkg/analytics"
	"github.com/flatvoice/go-flatvoice/pkg/catalog"
	"github.com/flatvoice/go-flatvoice/pkg/delivery"
	"github.com/flatvoice/go-flatvoice/pkg/dialog"
	"github.com/flatvoice/go-flatvoice/pkg/session"
)

// turnResult is the terminal summary of one voice turn, sent as the single
// `done` frame of the stream (or the body of the non-streaming variant).
type turnResult struct {
	Response   string           `json:"response"`
	Action     dialog.Action    `json:"action"`
	Apartment  *catalog.Listing `json:"apartment,omitempty"`
	LandingURL string           `json:"landingUrl,omitempty"`
	Params     dialog.Params    `json:"params"`
}

func toTurnResult(out dialog.Outcome) turnResult {
	return turnResult{
		Response:   out.Response,
		Action:     out.Action,
		Apartment:  out.Listing,
		LandingURL: out.LandingURL,
		Params:     out.Params,
	}
}

func (s *Server) handleSessionStart(c *fiber.Ctx) error {
	sess := s.registry.Create()
	s.recorder.Begin(sess.ID, sess.CreatedAt)

	greeting := dialog.Greeting()
	sess.Dialog.AppendMessage("assistant", greeting)

	// Greeting audio is best-effort: a synthesis failure still yields a
	// usable session, the client just shows the text.
	var audio string
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()
	if data, err := s.synthesizeOnce(ctx, greeting); err != nil {
		log.Warn("greeting synthesis failed", "session", sess.ID, "error", err)
	} else {
		audio = base64.StdEncoding.EncodeToString(data)
	}

	sess.Call.Ready()
	log.Info("session started", "session", sess.ID)

	return c.JSON(fiber.Map{
		"sessionId": sess.ID,
		"greeting":  greeting,
		"audio":     audio,
	})
}

func (s *Server) handleSessionEnd(c *fiber.Ctx) error {
	var body struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.BodyParser(&body); err != nil || body.SessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "sessionId is required")
	}

	sess, ok := s.registry.End(body.SessionID)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "unknown session")
	}

	selected, _ := sess.Dialog.Selected()
	summary := s.recorder.Finish(sess.ID, sess.Dialog.Params, sess.Dialog.Shown(), selected)
	log.Info("session ended", "session", sess.ID, "turns", summary.Turns)
	return c.JSON(summary)
}

func (s *Server) handleApartment(c *fiber.Ctx) error {
	l, ok := s.store.Get(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "apartment not found")
	}
	return c.JSON(l)
}

func (s *Server) handleAnalytics(c *fiber.Ctx) error {
	return c.JSON(s.recorder.Summaries())
}

func (s *Server) handleSendPresentation(c *fiber.Ctx) error {
	var body struct {
		ApartmentID string `json:"apartmentId"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}

	l, ok := s.store.Get(body.ApartmentID)
	if !ok {
		return c.JSON(fiber.Map{"success": false, "error": "apartment not found"})
	}
	if body.PhoneNumber == "" {
		return c.JSON(fiber.Map{"success": false, "error": "phone number is required"})
	}
	if s.sender == nil {
		return c.JSON(fiber.Map{"success": false, "error": "message delivery is not configured"})
	}

	landing := ""
	if url, err := s.renderer.Landing(l); err == nil {
		landing = url
	}

	receipt, err := s.sender.Send(c.Context(), body.PhoneNumber, delivery.PresentationBody(l, landing))
	if err != nil {
		log.Warn("presentation delivery failed", "apartment", l.ID, "error", err)
		msg := receipt.Error
		if msg == "" {
			msg = err.Error()
		}
		return c.JSON(fiber.Map{"success": false, "error": msg})
	}
	return c.JSON(fiber.Map{"success": true})
}

// runTurn executes one full caller turn against a session: transcription,
// policy resolution, analytics. Speech synthesis is left to the caller so
// each transport can stream its own way.
func (s *Server) runTurn(ctx context.Context, sess *session.Session, audio []byte) (dialog.Outcome, string, error) {
	text, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		// Turn failure: no state was mutated yet.
		return dialog.Outcome{}, "", err
	}

	sess.Call.BeginRecording()
	sess.Call.EndRecording()

	out := s.engine.HandleTurn(ctx, sess.Dialog, text)

	var listingID string
	if out.Listing != nil {
		listingID = out.Listing.ID
	}
	s.recorder.Track(analytics.Event{SessionID: sess.ID, Action: out.Action, ListingID: listingID})

	log.Info("turn resolved", "session", sess.ID, "action", out.Action, "utterance_len", len(text))
	return out, text, nil
}
