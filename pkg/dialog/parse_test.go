package dialog

import (
	"testing"
)

func TestParseCompletion(t *testing.T) {
	t.Run("strict json", func(t *testing.T) {
		c, ok := parseCompletion(`{"response":"привет","params_update":{"price_max":2000000},"action":"search"}`)
		if !ok {
			t.Fatal("expected parse to succeed")
		}
		if c.Response != "привет" {
			t.Errorf("response = %q", c.Response)
		}
		if c.Action != ActionSearch {
			t.Errorf("action = %q", c.Action)
		}
		if c.ParamsUpdate.PriceMax == nil || *c.ParamsUpdate.PriceMax != 2000000 {
			t.Errorf("price_max = %v", c.ParamsUpdate.PriceMax)
		}
	})

	t.Run("markdown fenced", func(t *testing.T) {
		raw := "```json\n{\"response\":\"ок\",\"action\":\"none\"}\n```"
		c, ok := parseCompletion(raw)
		if !ok {
			t.Fatal("expected parse to succeed")
		}
		if c.Response != "ок" {
			t.Errorf("response = %q", c.Response)
		}
	})

	t.Run("prose wrapped", func(t *testing.T) {
		raw := `Конечно! Вот ответ: {"response":"ок","action":"none"} Надеюсь, помог.`
		if _, ok := parseCompletion(raw); !ok {
			t.Fatal("expected parse to succeed")
		}
	})

	t.Run("braces inside strings do not unbalance", func(t *testing.T) {
		raw := `{"response":"смайлик :-} и скобка {","action":"none"}`
		c, ok := parseCompletion(raw)
		if !ok {
			t.Fatal("expected parse to succeed")
		}
		if c.Response != "смайлик :-} и скобка {" {
			t.Errorf("response = %q", c.Response)
		}
	})

	t.Run("escaped quotes inside strings", func(t *testing.T) {
		raw := `{"response":"он сказал \"да\"","action":"none"}`
		c, ok := parseCompletion(raw)
		if !ok {
			t.Fatal("expected parse to succeed")
		}
		if c.Response != `он сказал "да"` {
			t.Errorf("response = %q", c.Response)
		}
	})

	t.Run("plain prose fails", func(t *testing.T) {
		if _, ok := parseCompletion("честно говоря, не знаю"); ok {
			t.Fatal("expected parse to fail")
		}
	})

	t.Run("unbalanced object fails", func(t *testing.T) {
		if _, ok := parseCompletion(`{"response":"обрыв`); ok {
			t.Fatal("expected parse to fail")
		}
	})

	t.Run("empty fails", func(t *testing.T) {
		if _, ok := parseCompletion("  "); ok {
			t.Fatal("expected parse to fail")
		}
	})
}
