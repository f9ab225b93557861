package speech

import (
	"strings"
	"unicode"
)

// DefaultPhraseBudget is the maximum phrase length in characters when the
// caller does not specify one. Short phrases start playback sooner; too
// short and the synthesis voice loses sentence intonation.
const DefaultPhraseBudget = 180

// Segment splits reply text into speakable phrases to minimize time to
// first audio. Cuts happen at sentence-ending punctuation followed by
// whitespace; if no such boundary occurs within budget characters, the cut
// moves to the last whitespace before the budget, and only when the text
// has no whitespace at all is it hard-cut mid-word.
func Segment(text string, budget int) []string {
	if budget <= 0 {
		budget = DefaultPhraseBudget
	}

	runes := []rune(strings.TrimSpace(text))
	var phrases []string
	cur := make([]rune, 0, budget)
	lastSpace := -1

	flush := func() {
		s := strings.TrimSpace(string(cur))
		if s != "" {
			phrases = append(phrases, s)
		}
		cur = cur[:0]
		lastSpace = -1
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		cur = append(cur, r)
		if unicode.IsSpace(r) {
			lastSpace = len(cur) - 1
		}

		if isSentenceEnd(r) && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			flush()
			continue
		}

		if len(cur) >= budget {
			if lastSpace > 0 {
				rest := append([]rune(nil), cur[lastSpace+1:]...)
				cur = cur[:lastSpace]
				flush()
				cur = append(cur, rest...)
				for j, rr := range cur {
					if unicode.IsSpace(rr) {
						lastSpace = j
					}
				}
			} else {
				flush()
			}
		}
	}
	flush()
	return phrases
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}
