package dialog

import (
	"strings"
	"unicode/utf8"

	"github.com/flatvoice/go-flatvoice/pkg/catalog"
)

// IntentKind classifies what the local resolver recognized in an utterance.
type IntentKind int

// Resolver intents, in no particular order. Precedence lives in the rule
// list, not here.
const (
	IntentUnknown IntentKind = iota // no local rule matched; delegate to the model
	IntentHelp
	IntentChangeParams // explicit bound-change instruction, search right away
	IntentStateParams  // bare parameter statement, keep collecting
	IntentDistrict     // short district-only utterance
	IntentSearch       // generic "go" trigger
	IntentConfirm
	IntentNext
	IntentEnd
)

// Intent is the local resolver's reading of one utterance.
type Intent struct {
	Kind     IntentKind
	Patch    Params
	District string
}

// rule is one (predicate, classification) pair. Rules are evaluated in
// fixed order; the first match wins.
type rule struct {
	name  string
	match func(dc *Context, utterance string) (Intent, bool)
}

// Resolver recognizes common utterances with pattern rules so the frequent
// turns never pay a language-model round trip. The precedence order of the
// rules is a contract, not an implementation detail; in particular the
// confirmation rule runs before the show-another rule, because affirmative
// phrases are a semantic superset risk and any ambiguity must resolve
// toward confirm, never reject.
type Resolver struct {
	lex       Lexicon
	districts map[string]string // stem -> catalog district name
	rules     []rule
}

// NewResolver creates a resolver over the given catalog and lexicon.
func NewResolver(store *catalog.Store, lex Lexicon) *Resolver {
	r := &Resolver{lex: lex, districts: make(map[string]string)}
	for _, l := range store.All() {
		if stem := districtStem(l.District); stem != "" {
			r.districts[stem] = l.District
		}
	}
	r.rules = []rule{
		{"help", r.matchHelp},
		{"change-bound", r.matchChange},
		{"district-only", r.matchDistrict},
		{"search-trigger", r.matchTrigger},
		{"confirm", r.matchConfirm}, // must precede "next"
		{"next", r.matchNext},
		{"farewell", r.matchFarewell},
		{"bare-params", r.matchBareParams},
	}
	return r
}

// Detect classifies the utterance against the rule cascade. The second
// return value is false when no local rule matched and the policy engine
// must consult the language model.
func (r *Resolver) Detect(dc *Context, utterance string) (Intent, bool) {
	lower := strings.ToLower(strings.TrimSpace(utterance))
	if lower == "" {
		return Intent{}, false
	}
	for _, rl := range r.rules {
		if intent, ok := rl.match(dc, lower); ok {
			return intent, true
		}
	}
	return Intent{Kind: IntentUnknown}, false
}

func (r *Resolver) matchHelp(_ *Context, lower string) (Intent, bool) {
	if matchAny(lower, r.lex.Help) {
		return Intent{Kind: IntentHelp}, true
	}
	return Intent{}, false
}

// matchChange fires on explicit bound-change instructions that carry a new
// value ("подними бюджет до трёх миллионов").
func (r *Resolver) matchChange(_ *Context, lower string) (Intent, bool) {
	if !matchAny(lower, r.lex.Change) {
		return Intent{}, false
	}
	patch := ExtractParams(lower)
	if patch.Empty() {
		return Intent{}, false
	}
	return Intent{Kind: IntentChangeParams, Patch: patch}, true
}

// matchDistrict fires on short utterances that name a known district while
// parameters already exist ("а в Ленинском?").
func (r *Resolver) matchDistrict(dc *Context, lower string) (Intent, bool) {
	if dc.Params.Empty() {
		return Intent{}, false
	}
	if len(tokenize(lower)) > 4 {
		return Intent{}, false
	}
	district, ok := r.findDistrict(lower)
	if !ok {
		return Intent{}, false
	}
	return Intent{Kind: IntentDistrict, District: district}, true
}

func (r *Resolver) matchTrigger(dc *Context, lower string) (Intent, bool) {
	if dc.Params.Empty() {
		return Intent{}, false
	}
	if !matchAny(lower, r.lex.Trigger) {
		return Intent{}, false
	}
	return Intent{Kind: IntentSearch}, true
}

func (r *Resolver) matchConfirm(dc *Context, lower string) (Intent, bool) {
	if _, shown := dc.LastShown(); !shown {
		return Intent{}, false
	}
	if !matchAny(lower, r.lex.Confirm) {
		return Intent{}, false
	}
	return Intent{Kind: IntentConfirm}, true
}

func (r *Resolver) matchNext(_ *Context, lower string) (Intent, bool) {
	if matchAny(lower, r.lex.Next) {
		return Intent{Kind: IntentNext}, true
	}
	return Intent{}, false
}

func (r *Resolver) matchFarewell(_ *Context, lower string) (Intent, bool) {
	if matchAny(lower, r.lex.Farewell) {
		return Intent{Kind: IntentEnd}, true
	}
	return Intent{}, false
}

// matchBareParams fires when the utterance states bounds without an
// explicit search instruction ("до двух миллионов"). The parameters are
// recorded and the assistant keeps collecting instead of searching.
func (r *Resolver) matchBareParams(_ *Context, lower string) (Intent, bool) {
	patch := ExtractParams(lower)
	if district, ok := r.findDistrict(lower); ok {
		patch.District = district
	}
	if patch.Empty() {
		return Intent{}, false
	}
	return Intent{Kind: IntentStateParams, Patch: patch}, true
}

// findDistrict scans the utterance for any catalog district. Spoken Russian
// inflects district names ("в Центральном" for "Центральный"), so matching
// is by a truncated stem of the catalog value.
func (r *Resolver) findDistrict(lower string) (string, bool) {
	for stem, name := range r.districts {
		if strings.Contains(lower, stem) {
			return name, true
		}
	}
	return "", false
}

// districtStem lowercases a district name and drops the adjectival ending.
func districtStem(district string) string {
	s := strings.ToLower(strings.TrimSpace(district))
	n := utf8.RuneCountInString(s)
	if n <= 4 {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-2])
}
