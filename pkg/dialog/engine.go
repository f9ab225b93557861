package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flatvoice/go-flatvoice/internal/log"
	"github.com/flatvoice/go-flatvoice/pkg/catalog"
	"github.com/flatvoice/go-flatvoice/pkg/llm"
)

// defaultHistoryWindow bounds the message-history suffix sent to the
// language model. The full history stays in the Context.
const defaultHistoryWindow = 8

// Engine is the dialogue policy: resolver first, search, language-model
// fallback, response decision. It owns all Context mutation for a turn.
type Engine struct {
	store     *catalog.Store
	resolver  *Resolver
	completer Completer
	renderer  Renderer
	window    int
	streaming bool
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithHistoryWindow sets how many recent messages are sent to the model.
func WithHistoryWindow(n int) EngineOption {
	return func(e *Engine) { e.window = n }
}

// WithStreaming makes the engine prefer the token-streaming completion
// variant when the completer supports it. Tokens are not speakable until
// the full buffer parses, so this only trims time-to-parse, not semantics.
func WithStreaming(enabled bool) EngineOption {
	return func(e *Engine) { e.streaming = enabled }
}

// NewEngine creates a policy engine. completer and renderer may be nil:
// without a completer unrecognized utterances get the apology fallback,
// and without a renderer confirmations simply carry no landing URL.
func NewEngine(store *catalog.Store, resolver *Resolver, completer Completer, renderer Renderer, opts ...EngineOption) *Engine {
	e := &Engine{
		store:     store,
		resolver:  resolver,
		completer: completer,
		renderer:  renderer,
		window:    defaultHistoryWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleTurn resolves one caller utterance into an outcome. It never
// returns an error: everything recoverable is downgraded to a templated
// apology or clarification utterance.
func (e *Engine) HandleTurn(ctx context.Context, dc *Context, utterance string) Outcome {
	dc.AppendMessage(llm.RoleUser, utterance)

	var out Outcome
	if intent, ok := e.resolver.Detect(dc, utterance); ok {
		out = e.execute(dc, intent)
	} else {
		out = e.completeTurn(ctx, dc, utterance)
	}

	dc.AppendMessage(llm.RoleAssistant, out.Response)
	out.Params = dc.Params
	return out
}

// execute maps a locally-resolved intent onto the dialogue context.
func (e *Engine) execute(dc *Context, intent Intent) Outcome {
	switch intent.Kind {
	case IntentHelp:
		return Outcome{Action: ActionNone, Response: respHelp}
	case IntentChangeParams:
		dc.Params.Apply(intent.Patch)
		return e.runSearch(dc, ActionSearch)
	case IntentStateParams:
		dc.Params.Apply(intent.Patch)
		return Outcome{Action: ActionNone, Response: respParamAck}
	case IntentDistrict:
		dc.Params.Apply(Params{District: intent.District})
		return e.runSearch(dc, ActionSearch)
	case IntentSearch:
		return e.runSearch(dc, ActionSearch)
	case IntentConfirm:
		return e.runConfirm(dc, Params{})
	case IntentNext:
		return e.runSearch(dc, ActionNext)
	case IntentEnd:
		return Outcome{Action: ActionEnd, Response: respFarewell}
	default:
		return Outcome{Action: ActionNone, Response: respApology}
	}
}

// runSearch filters the catalog by the current parameters, excluding every
// previously shown listing. On a hit the candidate is marked shown and
// presented with the templated utterance; on a miss the action downgrades
// to none.
func (e *Engine) runSearch(dc *Context, action Action) Outcome {
	results := e.store.Search(dc.Params.Query(dc.Shown()))
	if len(results) == 0 {
		return Outcome{Action: ActionNone, Response: respNoMatch}
	}
	l := results[0]
	dc.MarkShown(l.ID)
	return Outcome{Action: action, Response: presentListing(l), Listing: &l}
}

// runConfirm resolves a confirmation of interest. It prefers the most
// recently shown listing; only when nothing was shown does it merge the
// patch and search. It never fabricates a listing: with no shown listing
// and no search hit the action downgrades to none with a clarification.
func (e *Engine) runConfirm(dc *Context, patch Params) Outcome {
	if id, ok := dc.LastShown(); ok {
		if l, found := e.store.Get(id); found {
			return e.confirmListing(dc, l)
		}
	}
	dc.Params.Apply(patch)
	results := e.store.Search(dc.Params.Query(dc.Shown()))
	if len(results) == 0 {
		return Outcome{Action: ActionNone, Response: respClarify}
	}
	return e.confirmListing(dc, results[0])
}

func (e *Engine) confirmListing(dc *Context, l catalog.Listing) Outcome {
	dc.Select(l.ID)
	out := Outcome{Action: ActionConfirm, Response: respConfirm, Listing: &l}
	if e.renderer != nil {
		landing, err := e.renderer.Landing(l)
		if err != nil {
			log.Warn("landing render failed", "listing", l.ID, "error", err)
		} else {
			out.LandingURL = landing
		}
	}
	return out
}

// completion is the JSON shape the language model must produce.
type completion struct {
	Response     string `json:"response"`
	ParamsUpdate Params `json:"params_update"`
	Action       Action `json:"action"`
}

// completeTurn is the language-model path, used only when no local rule
// resolved the turn.
func (e *Engine) completeTurn(ctx context.Context, dc *Context, utterance string) Outcome {
	if e.completer == nil {
		return Outcome{Action: ActionNone, Response: respApology}
	}

	messages := e.buildMessages(dc)
	raw, err := e.complete(ctx, messages)
	if err != nil {
		log.Warn("completion request failed", "error", err)
		return Outcome{Action: ActionNone, Response: respApology}
	}

	c, ok := parseCompletion(raw)
	if !ok {
		log.Warn("completion did not parse", "raw_len", len(raw))
		return Outcome{Action: ActionNone, Response: respApology}
	}
	return e.applyCompletion(dc, c)
}

func (e *Engine) complete(ctx context.Context, messages []llm.Message) (string, error) {
	if e.streaming {
		if sc, ok := e.completer.(StreamingCompleter); ok {
			return sc.CompleteStream(ctx, messages, nil)
		}
	}
	return e.completer.Complete(ctx, messages)
}

// applyCompletion validates and applies the untrusted model payload.
func (e *Engine) applyCompletion(dc *Context, c completion) Outcome {
	action := c.Action
	if !action.Valid() {
		action = ActionNone
	}

	switch action {
	case ActionSearch, ActionNext:
		dc.Params.Apply(c.ParamsUpdate)
		// The templated presentation is used instead of the model's
		// freeform text so the spoken attributes always match the listing.
		return e.runSearch(dc, action)
	case ActionConfirm:
		return e.runConfirm(dc, c.ParamsUpdate)
	case ActionEnd:
		dc.Params.Apply(c.ParamsUpdate)
		resp := strings.TrimSpace(c.Response)
		if resp == "" {
			resp = respFarewell
		}
		return Outcome{Action: ActionEnd, Response: resp}
	default:
		dc.Params.Apply(c.ParamsUpdate)
		resp := strings.TrimSpace(c.Response)
		if resp == "" {
			resp = respApology
		}
		return Outcome{Action: ActionNone, Response: resp}
	}
}

// buildMessages assembles the bounded completion context: system contract,
// current search state, and a recent suffix of the message history.
func (e *Engine) buildMessages(dc *Context) []llm.Message {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nТекущие параметры поиска: ")
	sb.WriteString(paramsJSON(dc.Params))
	fmt.Fprintf(&sb, "\nПоказано вариантов: %d", len(dc.Shown()))
	if id, ok := dc.LastShown(); ok {
		fmt.Fprintf(&sb, "\nПоследний показанный вариант: %s", id)
	}
	if next, ok := e.nextCandidate(dc); ok {
		fmt.Fprintf(&sb, "\nСледующий доступный вариант: %s, %d м², %d этаж, %d руб.",
			next.District, next.Area, next.Floor, next.Price)
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: sb.String()}}
	return append(messages, dc.RecentMessages(e.window)...)
}

// nextCandidate previews the first search hit without mutating history.
func (e *Engine) nextCandidate(dc *Context) (catalog.Listing, bool) {
	results := e.store.Search(dc.Params.Query(dc.Shown()))
	if len(results) == 0 {
		return catalog.Listing{}, false
	}
	return results[0], true
}

func paramsJSON(p Params) string {
	b, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(b)
}

const systemPrompt = `Ты — голосовой помощник по подбору квартир. Отвечай коротко, разговорно и только на русском языке.

Верни строго один JSON-объект вида:
{"response": "текст ответа", "params_update": {"district": "...", "price_min": 0, "price_max": 0, "area_min": 0, "area_max": 0, "floor_min": 0, "floor_max": 0}, "action": "none|search|next|confirm_interest|end"}

Правила:
- В params_update указывай только те поля, которые пользователь явно назвал или изменил.
- action "search" — пользователь просит показать вариант; "next" — текущий не подошёл, нужен другой; "confirm_interest" — вариант понравился, нужно отправить презентацию; "end" — пользователь прощается; иначе "none".
- Не выдумывай квартиры: варианты подбирает система, твой текст для action search/next будет заменён шаблоном.
- Никакого текста вне JSON.`
