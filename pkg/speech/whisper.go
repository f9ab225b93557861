package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/flatvoice/go-flatvoice/internal/httpc"
)

const (
	whisperBaseURL = "https://api.openai.com/v1"
	whisperModel   = "whisper-1"
)

// Whisper transcribes caller audio through an OpenAI-compatible
// transcriptions endpoint.
type Whisper struct {
	apiKey     string
	model      string
	baseURL    string
	language   string
	httpClient *http.Client
}

// WhisperOption is a functional option for the client.
type WhisperOption func(*Whisper)

// WithSTTModel sets the transcription model.
func WithSTTModel(model string) WhisperOption {
	return func(c *Whisper) { c.model = model }
}

// WithSTTBaseURL overrides the API endpoint.
func WithSTTBaseURL(u string) WhisperOption {
	return func(c *Whisper) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithSTTLanguage hints the spoken language (ISO 639-1).
func WithSTTLanguage(lang string) WhisperOption {
	return func(c *Whisper) { c.language = lang }
}

// WithSTTHTTPClient replaces the underlying HTTP client.
func WithSTTHTTPClient(hc *http.Client) WhisperOption {
	return func(c *Whisper) { c.httpClient = hc }
}

// NewWhisper creates a transcription client.
func NewWhisper(apiKey string, opts ...WhisperOption) (*Whisper, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Whisper{
		apiKey:     apiKey,
		model:      whisperModel,
		baseURL:    whisperBaseURL,
		language:   "ru",
		httpClient: httpc.Client,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe implements Transcriber.
func (c *Whisper) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", "utterance.webm")
	if err != nil {
		return "", fmt.Errorf("speech: build form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("speech: write audio: %w", err)
	}
	_ = w.WriteField("model", c.model)
	if c.language != "" {
		_ = w.WriteField("language", c.language)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("speech: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("speech: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech: transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("speech: transcription status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var tr transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("speech: decode transcription: %w", err)
	}
	text := strings.TrimSpace(tr.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
