package tac

// Engine is the single-owner facade over a Registry, a suggestion Builder,
// and one Tracker for the active grammar. It is the surface an editor (or
// the HTTP layer) talks to. An Engine is not safe for concurrent mutation;
// resolved Grammars, being read-only, may be shared between Engines.
type Engine struct {
	reg     *Registry
	builder *Builder
	tracker *Tracker
}

// NewEngine returns an Engine with an empty Registry. clock may be nil, in
// which case the system wall clock drives datetime suggestion text.
func NewEngine(clock Clock) *Engine {
	return NewEngineFor(NewRegistry(), clock)
}

// NewEngineFor returns an Engine over an existing Registry, typically a
// Clone of one whose grammars are already resolved. The caller keeps
// ownership of reg.
func NewEngineFor(reg *Registry, clock Clock) *Engine {
	eng := &Engine{
		reg:     reg,
		builder: NewBuilder(reg, clock),
	}
	if g, ok := reg.Current(); ok {
		eng.tracker = NewTracker(g)
	}
	return eng
}

// Registry exposes the underlying grammar Registry, mainly so grammar
// document loaders can feed it.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// RegisterGrammar adds or replaces the raw grammar under name.
func (e *Engine) RegisterGrammar(name string, g *Grammar) {
	e.reg.Register(name, g)
}

// ResolveInheritance resolves every registered grammar's extends chain and
// returns any warnings produced (cycles, dangling targets). The warnings are
// also retained on the Registry.
func (e *Engine) ResolveInheritance() []string {
	before := len(e.reg.Warnings)
	e.reg.ResolveInheritance()
	return e.reg.Warnings[before:]
}

// GrammarNames returns the names of every registered grammar.
func (e *Engine) GrammarNames() []string {
	return e.reg.GrammarNames()
}

// SetGrammar selects the active grammar and resets the tracker to its
// structure. If name is not resolved, the call is a no-op returning false
// and the previous active grammar (and tracker state) is preserved.
func (e *Engine) SetGrammar(name string) bool {
	if !e.reg.SetCurrent(name) {
		return false
	}
	g, _ := e.reg.Current()
	e.tracker = NewTracker(g)
	return true
}

// CurrentGrammar returns the active resolved grammar, if any.
func (e *Engine) CurrentGrammar() (*Grammar, bool) {
	return e.reg.Current()
}

// DetectMessageType returns the name of the grammar whose identifier matches
// the start of text, if any.
func (e *Engine) DetectMessageType(text string) (string, bool) {
	return e.reg.Detect(text)
}

// Reset clears the tracker state for the active grammar. The active grammar
// selection is kept.
func (e *Engine) Reset() {
	if e.tracker != nil {
		e.tracker.Reset()
	}
}

// Tokenize slices text into tokens under the active grammar. With no active
// grammar it returns nil.
func (e *Engine) Tokenize(text string) []TokenizedToken {
	g, ok := e.reg.Current()
	if !ok {
		return nil
	}
	return Tokenize(text, g)
}

// TrackToken feeds one token kind to the structure tracker, reporting
// whether it was legal at the current position.
func (e *Engine) TrackToken(kindID string) bool {
	if e.tracker == nil {
		return false
	}
	return e.tracker.TryMatch(kindID)
}

// ExpectedTokenIDs returns the token kinds legal at the tracker's current
// position, or nil with no active grammar.
func (e *Engine) ExpectedTokenIDs() []string {
	if e.tracker == nil {
		return nil
	}
	set := e.tracker.GetExpectedTokenIDs()
	return set.Elements()
}

// TrackerState returns a snapshot of the tracker's state, suitable for
// persistence, and whether a tracker is active.
func (e *Engine) TrackerState() (TrackerState, bool) {
	if e.tracker == nil {
		return TrackerState{}, false
	}
	return e.tracker.State(), true
}

// RestoreTrackerState replaces the tracker state wholesale, e.g. to resume a
// saved edit session. It reports false with no active grammar.
func (e *Engine) RestoreTrackerState(s TrackerState) bool {
	if e.tracker == nil {
		return false
	}
	e.tracker.SetState(s)
	return true
}

// GetSuggestions returns the suggestion list for the position given by
// cursor (a byte offset) within text: the text up to the cursor is
// tokenized, the last non-whitespace token's kind and text select the
// suggestion set. With no tokens before the cursor, start-of-message
// suggestions are produced; with no active grammar, initial per-grammar
// identifier suggestions are produced from supportedTypes.
func (e *Engine) GetSuggestions(text string, cursor int, supportedTypes []string) []Suggestion {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}
	prefix := text[:cursor]

	var lastKind, lastText string
	for _, tok := range e.Tokenize(prefix) {
		if tok.IsWhitespace() {
			continue
		}
		lastKind = tok.Kind
		lastText = tok.Text
	}

	return e.builder.SuggestionsAfter(lastKind, lastText, supportedTypes)
}

// GetSuggestionsForTokenType returns the suggestion list that follows a
// token of the given kind. kind == "" means start-of-message.
func (e *Engine) GetSuggestionsForTokenType(kind, prevText string, supportedTypes []string) []Suggestion {
	return e.builder.SuggestionsAfter(kind, prevText, supportedTypes)
}

// GetTemplateSuggestions returns the suggestions declared for the template
// field whose labelKind matches, under the active grammar.
func (e *Engine) GetTemplateSuggestions(labelKind string) []Suggestion {
	return e.builder.TemplateSuggestions(labelKind)
}

// Validate tokenizes text under the active grammar and runs per-token and
// structural checks. With no active grammar the result is valid and empty.
func (e *Engine) Validate(text string) ValidationResult {
	g, ok := e.reg.Current()
	if !ok {
		return ValidationResult{Valid: true}
	}
	return Validate(text, g)
}
