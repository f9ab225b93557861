package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/flatvoice/go-flatvoice/internal/httpc"
)

const (
	elevenLabsBaseURL   = "https://api.elevenlabs.io/v1"
	elevenLabsWSBaseURL = "wss://api.elevenlabs.io/v1"
	defaultTTSModel     = "eleven_flash_v2_5"
)

// ElevenLabs synthesizes speech via the ElevenLabs API. The blocking
// Synthesize call uses the HTTP streaming endpoint and collects the full
// phrase; SynthesizeStream uses the stream-input WebSocket for callers that
// want audio chunks as they are generated.
type ElevenLabs struct {
	apiKey     string
	voiceID    string
	modelID    string
	baseURL    string
	wsBaseURL  string
	httpClient *http.Client
}

// ElevenLabsOption is a functional option for the client.
type ElevenLabsOption func(*ElevenLabs)

// WithTTSModel sets the synthesis model.
func WithTTSModel(model string) ElevenLabsOption {
	return func(c *ElevenLabs) { c.modelID = model }
}

// WithTTSBaseURL overrides the API endpoint.
func WithTTSBaseURL(u string) ElevenLabsOption {
	return func(c *ElevenLabs) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTTSWSBaseURL overrides the stream-input WebSocket endpoint. Accepts
// ws:// and wss:// URLs.
func WithTTSWSBaseURL(u string) ElevenLabsOption {
	return func(c *ElevenLabs) { c.wsBaseURL = strings.TrimRight(u, "/") }
}

// WithTTSHTTPClient replaces the underlying HTTP client.
func WithTTSHTTPClient(hc *http.Client) ElevenLabsOption {
	return func(c *ElevenLabs) { c.httpClient = hc }
}

// NewElevenLabs creates an ElevenLabs synthesis client.
func NewElevenLabs(apiKey, voiceID string, opts ...ElevenLabsOption) (*ElevenLabs, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if voiceID == "" {
		return nil, ErrMissingVoiceID
	}
	c := &ElevenLabs{
		apiKey:    apiKey,
		voiceID:   voiceID,
		modelID:   defaultTTSModel,
		baseURL:   elevenLabsBaseURL,
		wsBaseURL: elevenLabsWSBaseURL,
		// Streaming synthesis reads a long body; no overall deadline.
		httpClient: httpc.NewClient(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type ttsRequest struct {
	Text          string         `json:"text"`
	ModelID       string         `json:"model_id"`
	VoiceSettings map[string]any `json:"voice_settings,omitempty"`
}

// Synthesize implements Synthesizer over the HTTP streaming endpoint.
func (c *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/text-to-speech/%s/stream", c.baseURL, url.PathEscape(c.voiceID))

	body, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: c.modelID,
		VoiceSettings: map[string]any{
			"stability":        0.4,
			"similarity_boost": 0.7,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("speech: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("speech: build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech: synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return nil, newSynthesisError(resp.StatusCode, b)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speech: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}
	return audio, nil
}

// stream-input WebSocket message shapes.
type wsTTSInput struct {
	Text          string         `json:"text"`
	VoiceSettings map[string]any `json:"voice_settings,omitempty"`
	Flush         bool           `json:"flush,omitempty"`
}

type wsTTSOutput struct {
	Audio   string `json:"audio"`
	IsFinal bool   `json:"isFinal"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SynthesizeStream implements ChunkSynthesizer over the stream-input
// WebSocket, invoking onChunk for each decoded audio chunk as it arrives.
// It returns once the provider marks the stream final.
func (c *ElevenLabs) SynthesizeStream(ctx context.Context, text string, onChunk func([]byte)) error {
	endpoint := fmt.Sprintf("%s/text-to-speech/%s/stream-input?model_id=%s",
		c.wsBaseURL, url.PathEscape(c.voiceID), url.QueryEscape(c.modelID))

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	header := http.Header{"xi-api-key": []string{c.apiKey}}
	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
			resp.Body.Close()
			return newSynthesisError(resp.StatusCode, b)
		}
		return fmt.Errorf("speech: ws dial: %w", err)
	}
	defer conn.Close()

	// Initial frame carries voice settings, then the text, then a flush.
	frames := []wsTTSInput{
		{Text: " ", VoiceSettings: map[string]any{"stability": 0.4, "similarity_boost": 0.7}},
		{Text: text + " "},
		{Text: "", Flush: true},
	}
	for _, f := range frames {
		if err := conn.WriteJSON(f); err != nil {
			return fmt.Errorf("speech: ws write: %w", err)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var out wsTTSOutput
		if err := conn.ReadJSON(&out); err != nil {
			return fmt.Errorf("speech: ws read: %w", err)
		}
		if out.Error != "" {
			return fmt.Errorf("speech: ws synthesis: %s %s", out.Error, out.Message)
		}
		if out.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(out.Audio)
			if err != nil {
				return fmt.Errorf("speech: decode audio chunk: %w", err)
			}
			if onChunk != nil && len(chunk) > 0 {
				onChunk(chunk)
			}
		}
		if out.IsFinal {
			return nil
		}
	}
}
