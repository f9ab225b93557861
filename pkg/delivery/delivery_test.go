package delivery_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/flatvoice/go-flatvoice/pkg/catalog"
	"github.com/flatvoice/go-flatvoice/pkg/delivery"
)

func TestLandingRenderer(t *testing.T) {
	t.Run("builds the presentation url", func(t *testing.T) {
		r := delivery.NewLandingRenderer("https://flatvoice.ru/")
		url, err := r.Landing(catalog.Listing{ID: "apt-001"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if url != "https://flatvoice.ru/apartment/apt-001" {
			t.Errorf("url = %q", url)
		}
	})

	t.Run("escapes the listing id", func(t *testing.T) {
		r := delivery.NewLandingRenderer("https://flatvoice.ru")
		url, err := r.Landing(catalog.Listing{ID: "apt/../../etc"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(url, "../") {
			t.Errorf("url not escaped: %q", url)
		}
	})

	t.Run("missing base url is an error", func(t *testing.T) {
		r := delivery.NewLandingRenderer("")
		if _, err := r.Landing(catalog.Listing{ID: "apt-001"}); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestPresentationBody(t *testing.T) {
	l := catalog.Listing{
		ID:          "apt-001",
		District:    "Центральный",
		Area:        54,
		Floor:       7,
		Price:       1850000,
		Description: "Двухкомнатная квартира с ремонтом.",
	}

	body := delivery.PresentationBody(l, "https://flatvoice.ru/apartment/apt-001")
	for _, want := range []string{"Центральный", "54", "7 этаж", "1850000", "https://flatvoice.ru/apartment/apt-001"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}

	t.Run("without landing url", func(t *testing.T) {
		body := delivery.PresentationBody(l, "")
		if strings.Contains(body, "Презентация") {
			t.Errorf("body must omit the landing line:\n%s", body)
		}
	})
}

func TestNewTwilioSenderValidation(t *testing.T) {
	if _, err := delivery.NewTwilioSender("", "token", "+100"); !errors.Is(err, delivery.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := delivery.NewTwilioSender("sid", "", "+100"); !errors.Is(err, delivery.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := delivery.NewTwilioSender("sid", "token", ""); !errors.Is(err, delivery.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := delivery.NewTwilioSender("sid", "token", "+100"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
