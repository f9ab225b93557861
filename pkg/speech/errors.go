package speech

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the speech package.
var (
	// ErrMissingAPIKey indicates a provider API key was not configured.
	ErrMissingAPIKey = errors.New("speech: API key is required")

	// ErrMissingVoiceID indicates the synthesis voice was not configured.
	ErrMissingVoiceID = errors.New("speech: voice ID is required")

	// ErrEmptyAudio indicates the provider returned no audio bytes.
	ErrEmptyAudio = errors.New("speech: empty audio response")

	// ErrEmptyTranscript indicates transcription produced no text.
	ErrEmptyTranscript = errors.New("speech: empty transcript")
)

// SynthesisError is a typed per-phrase synthesis failure. Blocked
// distinguishes an infrastructure block page (the provider's edge returned
// HTML instead of audio) from an API-level rejection; the two need
// different operator responses.
type SynthesisError struct {
	StatusCode int
	Body       string
	Blocked    bool
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	if e.Blocked {
		return fmt.Sprintf("speech: synthesis blocked by provider infrastructure (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("speech: synthesis failed (HTTP %d): %s", e.StatusCode, e.Body)
}

// IsBlocked reports whether err is a provider infrastructure block.
func IsBlocked(err error) bool {
	var se *SynthesisError
	return errors.As(err, &se) && se.Blocked
}

// newSynthesisError builds a SynthesisError from a provider response body,
// detecting HTML block pages.
func newSynthesisError(status int, body []byte) *SynthesisError {
	text := strings.TrimSpace(string(body))
	if len(text) > 512 {
		text = text[:512]
	}
	lower := strings.ToLower(text)
	blocked := strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
	return &SynthesisError{StatusCode: status, Body: text, Blocked: blocked}
}
