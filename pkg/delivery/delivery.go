// Package delivery handles everything that leaves the voice pipeline after
// a confirmed listing: building the presentation landing reference and
// sending it to the caller's phone. Failures here are returned as values
// to the HTTP layer; they are never thrown back into the dialogue.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/flatvoice/go-flatvoice/pkg/catalog"
)

// Sentinel errors for the delivery package.
var (
	// ErrMissingPhone indicates no destination phone number was provided.
	ErrMissingPhone = errors.New("delivery: phone number is required")

	// ErrNotConfigured indicates the message sender has no credentials.
	ErrNotConfigured = errors.New("delivery: sender not configured")
)

// Receipt is the result of one delivery attempt.
type Receipt struct {
	MessageID string
	Success   bool
	Error     string
}

// Sender delivers a presentation message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, body string) (Receipt, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, phone, body string) (Receipt, error)

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, phone, body string) (Receipt, error) {
	return f(ctx, phone, body)
}

// LandingRenderer builds presentation landing URLs for listings. It stands
// in for the document-rendering collaborator: the reference it produces is
// what callers receive and what the terminal turn event carries.
type LandingRenderer struct {
	BaseURL string
}

// NewLandingRenderer creates a renderer rooted at baseURL.
func NewLandingRenderer(baseURL string) *LandingRenderer {
	return &LandingRenderer{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Landing returns the presentation URL for a listing.
func (r *LandingRenderer) Landing(l catalog.Listing) (string, error) {
	if r.BaseURL == "" {
		return "", errors.New("delivery: landing base URL not configured")
	}
	return fmt.Sprintf("%s/apartment/%s", r.BaseURL, url.PathEscape(l.ID)), nil
}

// PresentationBody renders the message text sent to the caller's phone.
func PresentationBody(l catalog.Listing, landingURL string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Квартира в районе %s: %d м², %d этаж, %d руб.\n", l.District, l.Area, l.Floor, l.Price)
	if l.Description != "" {
		sb.WriteString(l.Description)
		sb.WriteString("\n")
	}
	if landingURL != "" {
		sb.WriteString("Презентация: ")
		sb.WriteString(landingURL)
	}
	return strings.TrimSpace(sb.String())
}
