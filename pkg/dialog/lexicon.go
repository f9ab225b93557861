package dialog

import (
	"strings"
	"unicode"
)

// Lexicon is the trigger vocabulary of the local resolver. The exact phrase
// lists churned visibly while the assistant was tuned on live calls, so they
// are data, not logic: callers may supply their own lists.
type Lexicon struct {
	// Help matches capability questions ("what can you do").
	Help []string
	// Change matches explicit instructions to move a bound ("raise the budget").
	Change []string
	// Trigger matches generic "go / show / search now" phrases.
	Trigger []string
	// Confirm matches affirmations and interest ("yes", "I like it").
	Confirm []string
	// Next matches rejection of the current option ("show another").
	Next []string
	// Farewell matches call-ending phrases.
	Farewell []string
}

// DefaultLexicon returns the phrase set of the production assistant
// (Russian-speaking callers).
func DefaultLexicon() Lexicon {
	return Lexicon{
		Help: []string{
			"что ты умеешь", "что умеешь", "чем можешь помочь",
			"как это работает", "что ты можешь", "помощь",
		},
		Change: []string{
			"подними", "повысь", "увеличь", "снизь", "уменьши",
			"опусти", "поменяй", "измени", "бюджет",
		},
		Trigger: []string{
			"давай", "поехали", "ищи", "найди", "покажи", "показывай",
			"подбери", "подберите", "поищи",
		},
		Confirm: []string{
			"да", "ага", "угу", "конечно", "нравится", "подходит",
			"подойдет", "подойдёт", "беру", "берем", "берём",
			"отправь", "отправьте", "пришли", "пришлите", "скинь",
			"подробнее", "презентацию", "интересно", "хороший вариант",
			"отличный вариант", "то что нужно",
		},
		Next: []string{
			"другой", "другую", "другое", "другие", "ещё вариант",
			"еще вариант", "ещё", "еще", "следующий", "следующую",
			"не это", "не эта", "не этот", "не подходит", "не нравится",
			"не то", "дальше", "что-нибудь другое",
		},
		Farewell: []string{
			"до свидания", "пока", "всего доброго", "до связи",
			"закончим", "завершить", "на этом всё", "на этом все",
		},
	}
}

// matchAny reports whether text matches any phrase of the list. Single-word
// phrases match whole tokens only (so "да" never fires inside "дальше") and
// are suppressed when negated ("не нравится" must not read as "нравится").
// Multi-word phrases match by substring with the same negation guard.
func matchAny(text string, phrases []string) bool {
	tokens := tokenize(text)
	for _, phrase := range phrases {
		if strings.ContainsRune(phrase, ' ') {
			if idx := strings.Index(text, phrase); idx >= 0 && !negatedBefore(text, idx) {
				return true
			}
			continue
		}
		for i, tok := range tokens {
			if tok == phrase && (i == 0 || tokens[i-1] != "не") {
				return true
			}
		}
	}
	return false
}

// negatedBefore reports whether the text immediately preceding idx ends with
// the particle "не".
func negatedBefore(text string, idx int) bool {
	prefix := strings.TrimRightFunc(text[:idx], func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return prefix == "не" || strings.HasSuffix(prefix, " не")
}

// tokenize splits text into lowercase letter/digit runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}
