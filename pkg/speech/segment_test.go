package speech_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/flatvoice/go-flatvoice/pkg/speech"
)

func TestSegment(t *testing.T) {
	t.Run("short text is one phrase", func(t *testing.T) {
		got := speech.Segment("Секунду, смотрю варианты", 180)
		if len(got) != 1 {
			t.Fatalf("expected 1 phrase, got %d: %v", len(got), got)
		}
	})

	t.Run("cuts at sentence boundaries", func(t *testing.T) {
		got := speech.Segment("Есть вариант в центре. Нравится такой вариант? Могу показать другой!", 180)
		want := []string{
			"Есть вариант в центре.",
			"Нравится такой вариант?",
			"Могу показать другой!",
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d phrases, got %d: %v", len(want), len(got), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("phrase %d = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("period inside a number is not a boundary", func(t *testing.T) {
		got := speech.Segment("Площадь 45.5 метра, хороший вариант.", 180)
		if len(got) != 1 {
			t.Fatalf("expected 1 phrase, got %d: %v", len(got), got)
		}
	})

	t.Run("ellipsis ends a phrase", func(t *testing.T) {
		got := speech.Segment("Сейчас посмотрю… Вот вариант.", 180)
		if len(got) != 2 {
			t.Fatalf("expected 2 phrases, got %d: %v", len(got), got)
		}
	})

	t.Run("long sentence cuts at last whitespace within budget", func(t *testing.T) {
		text := strings.Repeat("слово ", 40) // no sentence punctuation
		got := speech.Segment(text, 50)
		if len(got) < 2 {
			t.Fatalf("expected multiple phrases, got %d", len(got))
		}
		for i, p := range got {
			if utf8.RuneCountInString(p) > 50 {
				t.Errorf("phrase %d exceeds budget: %d runes", i, utf8.RuneCountInString(p))
			}
			if strings.Contains(p, "слов ") || strings.HasSuffix(p, "сло") {
				t.Errorf("phrase %d cut mid-word: %q", i, p)
			}
		}
	})

	t.Run("unbroken text hard-cuts at budget", func(t *testing.T) {
		text := strings.Repeat("а", 100)
		got := speech.Segment(text, 40)
		if len(got) != 3 {
			t.Fatalf("expected 3 phrases, got %d", len(got))
		}
		if utf8.RuneCountInString(got[0]) != 40 {
			t.Errorf("first phrase = %d runes, want 40", utf8.RuneCountInString(got[0]))
		}
	})

	t.Run("empty and blank input", func(t *testing.T) {
		if got := speech.Segment("", 180); len(got) != 0 {
			t.Errorf("expected no phrases, got %v", got)
		}
		if got := speech.Segment("   ", 180); len(got) != 0 {
			t.Errorf("expected no phrases, got %v", got)
		}
	})

	t.Run("non-positive budget uses default", func(t *testing.T) {
		text := strings.Repeat("слово ", 100)
		got := speech.Segment(text, 0)
		for i, p := range got {
			if utf8.RuneCountInString(p) > speech.DefaultPhraseBudget {
				t.Errorf("phrase %d exceeds default budget", i)
			}
		}
	})

	t.Run("concatenation preserves every word", func(t *testing.T) {
		text := "Есть вариант в районе Центральный: 54 квадратных метра, 7 этаж, цена 1 850 000 рублей. Двухкомнатная квартира с ремонтом. Нравится такой вариант?"
		got := speech.Segment(text, 60)
		joined := strings.Join(got, " ")
		for _, word := range strings.Fields(text) {
			if !strings.Contains(joined, word) {
				t.Errorf("word %q lost in segmentation", word)
			}
		}
	})
}
