// Package server wires the voice dialogue pipeline to its HTTP surface:
// session lifecycle endpoints, the phrase-streaming voice chat endpoints
// (SSE and WebSocket), listing lookup, analytics, and presentation
// delivery.
package server

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/flatvoice/go-flatvoice/pkg/analytics"
	"github.com/flatvoice/go-flatvoice/pkg/catalog"
	"github.com/flatvoice/go-flatvoice/pkg/delivery"
	"github.com/flatvoice/go-flatvoice/pkg/dialog"
	"github.com/flatvoice/go-flatvoice/pkg/session"
	"github.com/flatvoice/go-flatvoice/pkg/speech"
)

// Server holds the wired pipeline components behind the HTTP handlers.
type Server struct {
	registry    *session.Registry
	engine      *dialog.Engine
	store       *catalog.Store
	transcriber speech.Transcriber
	coordinator *speech.Coordinator
	recorder    *analytics.Recorder
	sender      delivery.Sender
	renderer    dialog.Renderer
	debug       bool
}

// Option configures the server.
type Option func(*Server)

// WithSender sets the presentation message sender.
func WithSender(s delivery.Sender) Option {
	return func(srv *Server) { srv.sender = s }
}

// WithDebug enables the request logger middleware.
func WithDebug(enabled bool) Option {
	return func(srv *Server) { srv.debug = enabled }
}

// New creates a server over the given pipeline components.
func New(
	registry *session.Registry,
	engine *dialog.Engine,
	store *catalog.Store,
	transcriber speech.Transcriber,
	coordinator *speech.Coordinator,
	recorder *analytics.Recorder,
	renderer dialog.Renderer,
	opts ...Option,
) *Server {
	srv := &Server{
		registry:    registry,
		engine:      engine,
		store:       store,
		transcriber: transcriber,
		coordinator: coordinator,
		recorder:    recorder,
		renderer:    renderer,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "flatvoice",
		DisableStartupMessage: true,
		BodyLimit:             16 * 1024 * 1024, // caller utterance audio
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if s.debug {
		app.Use(fiberlogger.New())
	}

	app.Post("/session/start", s.handleSessionStart)
	app.Post("/session/end", s.handleSessionEnd)
	app.Post("/chat/voice-stream", s.handleVoiceStream)
	app.Post("/chat/voice", s.handleVoice)
	app.Get("/apartment/:id", s.handleApartment)
	app.Get("/analytics", s.handleAnalytics)
	app.Post("/send-presentation", s.handleSendPresentation)

	// Realtime WebSocket variant of the voice chat endpoint.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/voice/:sessionId", websocket.New(s.handleVoiceWS))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"sessions": s.registry.Len(),
			"listings": s.store.Len(),
		})
	})

	return app
}
