package dialog

import (
	"encoding/json"
	"strings"
)

// parseCompletion decodes the model payload. The payload is untrusted:
// models wrap JSON in markdown fences, prepend prose, or emit trailing
// commentary. First a strict decode is attempted; failing that, the first
// balanced object-like substring is extracted and decoded. A false return
// means the caller must fall back to the apology utterance.
func parseCompletion(raw string) (completion, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return completion{}, false
	}

	var c completion
	if err := json.Unmarshal([]byte(raw), &c); err == nil {
		return c, true
	}

	obj, ok := extractObject(raw)
	if !ok {
		return completion{}, false
	}
	if err := json.Unmarshal([]byte(obj), &c); err != nil {
		return completion{}, false
	}
	return c, true
}

// extractObject returns the first balanced {...} substring of s, honoring
// string literals and escapes so braces inside response text do not
// unbalance the scan.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
