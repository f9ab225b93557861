// flatvoice-server: voice-driven apartment discovery service.
// Accepts caller utterance audio over HTTP/WebSocket and answers with
// phrase-streamed speech.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flatvoice/go-flatvoice/internal/config"
	"github.com/flatvoice/go-flatvoice/internal/log"
	"github.com/flatvoice/go-flatvoice/internal/server"
	"github.com/flatvoice/go-flatvoice/pkg/analytics"
	"github.com/flatvoice/go-flatvoice/pkg/catalog"
	"github.com/flatvoice/go-flatvoice/pkg/delivery"
	"github.com/flatvoice/go-flatvoice/pkg/dialog"
	"github.com/flatvoice/go-flatvoice/pkg/llm"
	"github.com/flatvoice/go-flatvoice/pkg/session"
	"github.com/flatvoice/go-flatvoice/pkg/speech"
)

var (
	version    = "1.0.0"
	configPath = flag.String("config", "", "Path to YAML config file")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Log.Level = "debug"
	}
	log.Init(cfg.Log.Level)

	log.Info("flatvoice-server starting", "version", version)

	store, err := buildStore(cfg)
	if err != nil {
		log.Error("catalog load failed", "error", err)
		os.Exit(1)
	}
	log.Info("catalog loaded", "listings", store.Len())

	resolver := dialog.NewResolver(store, dialog.DefaultLexicon())
	renderer := delivery.NewLandingRenderer(cfg.Delivery.LandingBaseURL)
	engine := dialog.NewEngine(store, resolver, buildCompleter(cfg), renderer,
		dialog.WithStreaming(cfg.Completion.Streaming))

	transcriber := buildTranscriber(cfg)
	coordinator := speech.NewCoordinator(buildSynthesizer(cfg), cfg.Speech.PhraseBudget)

	registry := session.NewRegistry(
		session.WithResetDelay(cfg.Session.ResetDelay),
		session.WithIdleTimeout(cfg.Session.IdleTimeout),
	)
	defer registry.Close()

	recorder := analytics.NewRecorder()
	defer recorder.Close()

	opts := []server.Option{server.WithDebug(*debug)}
	if sender, err := delivery.NewTwilioSender(
		cfg.Delivery.TwilioAccountSID,
		cfg.Delivery.TwilioAuthToken,
		cfg.Delivery.TwilioFrom,
	); err == nil {
		opts = append(opts, server.WithSender(sender))
	} else {
		log.Warn("presentation delivery disabled", "reason", err)
	}

	srv := server.New(registry, engine, store, transcriber, coordinator, recorder, renderer, opts...)
	app := srv.App()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Info("listening", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Warn("shutdown error", "error", err)
	}
}

func buildStore(cfg *config.Config) (*catalog.Store, error) {
	if cfg.Catalog.Path != "" {
		return catalog.LoadFile(cfg.Catalog.Path)
	}
	return catalog.NewStore(catalog.Seed()), nil
}

// buildCompleter returns nil when no API key is configured; the dialogue
// engine then answers unmatched turns with its apology fallback.
func buildCompleter(cfg *config.Config) dialog.Completer {
	opts := []llm.Option{
		llm.WithModel(cfg.Completion.Model),
		llm.WithMaxTokens(cfg.Completion.MaxTokens),
		llm.WithJSONMode(true),
	}
	if cfg.Completion.BaseURL != "" {
		opts = append(opts, llm.WithBaseURL(cfg.Completion.BaseURL))
	}
	client, err := llm.NewClient(cfg.Completion.APIKey, opts...)
	if err != nil {
		log.Warn("completion fallback disabled", "reason", err)
		return nil
	}
	return client
}

func buildSynthesizer(cfg *config.Config) speech.Synthesizer {
	opts := []speech.ElevenLabsOption{speech.WithTTSModel(cfg.Speech.ModelID)}
	if cfg.Speech.BaseURL != "" {
		opts = append(opts, speech.WithTTSBaseURL(cfg.Speech.BaseURL))
	}
	synth, err := speech.NewElevenLabs(cfg.Speech.APIKey, cfg.Speech.VoiceID, opts...)
	if err != nil {
		log.Warn("speech synthesis running in mock mode", "reason", err)
		return &speech.MockSynthesizer{}
	}
	return synth
}

func buildTranscriber(cfg *config.Config) speech.Transcriber {
	opts := []speech.WhisperOption{speech.WithSTTModel(cfg.Transcribe.Model)}
	if cfg.Transcribe.BaseURL != "" {
		opts = append(opts, speech.WithSTTBaseURL(cfg.Transcribe.BaseURL))
	}
	stt, err := speech.NewWhisper(cfg.Transcribe.APIKey, opts...)
	if err != nil {
		log.Warn("transcription running in mock mode", "reason", err)
		return &speech.MockTranscriber{Text: ""}
	}
	return stt
}
