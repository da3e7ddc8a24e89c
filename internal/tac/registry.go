package tac

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// upperCaser performs locale-correct uppercasing for Detect, in place of a
// naive strings.ToUpper, which mishandles e.g. Turkish dotless-i folding.
var upperCaser = cases.Upper(language.Und)

// Registry stores raw grammars, resolves extends-inheritance by deep merge,
// and answers "which grammar does this text belong to?". Definitions are
// not usable until the resolve step has run.
type Registry struct {
	raw      map[string]*Grammar
	resolved map[string]*Grammar
	current  string

	// Warnings accumulates grammar-engine-misuse messages (cycle in
	// extends, dangling extends target, unknown grammar in SetCurrent).
	// These are surfaced to the caller for logging, never panics, and the
	// offending operation leaves state unchanged.
	Warnings []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		raw:      make(map[string]*Grammar),
		resolved: make(map[string]*Grammar),
	}
}

// Clone returns a Registry sharing r's grammar tables but with its own
// active-grammar selection. Resolved grammars are read-only, so clones may
// be used from different goroutines as long as nothing Registers or
// re-resolves concurrently.
func (r *Registry) Clone() *Registry {
	return &Registry{
		raw:      r.raw,
		resolved: r.resolved,
		current:  r.current,
	}
}

// Register adds or replaces the raw grammar under name. Two registrations
// of the same name replace rather than merge; any previously resolved grammar under that name is invalidated
// until ResolveInheritance runs again.
func (r *Registry) Register(name string, g *Grammar) {
	cp := *g
	cp.resolved = false
	r.raw[name] = &cp
	delete(r.resolved, name)
}

// Deregister removes the grammar under name from both the raw and resolved
// sets. Grammars that extended it keep their already-resolved form until
// ResolveInheritance runs again.
func (r *Registry) Deregister(name string) {
	delete(r.raw, name)
	delete(r.resolved, name)
	if r.current == name {
		r.current = ""
	}
}

// GrammarNames returns the names of every registered (raw) grammar.
func (r *Registry) GrammarNames() []string {
	names := make([]string, 0, len(r.raw))
	for name := range r.raw {
		names = append(names, name)
	}
	return names
}

// Resolved returns the resolved grammar under name, if ResolveInheritance
// has produced one.
func (r *Registry) Resolved(name string) (*Grammar, bool) {
	g, ok := r.resolved[name]
	return g, ok
}

// ResolveInheritance resolves every registered grammar's extends chain by
// deep merge. It is idempotent: calling it twice in a row with no
// intervening Register produces the same resolved set. Grammars involved in
// an extends cycle are recorded as a warning and left unresolved; they do
// not appear in the resolved set and any
// previously resolved grammars are otherwise preserved.
func (r *Registry) ResolveInheritance() {
	resolved := make(map[string]*Grammar, len(r.raw))

	// first pass: every grammar with no extends resolves to itself.
	for name, g := range r.raw {
		if g.Extends == "" {
			cp := *g
			cp.resolved = true
			r.compileTokens(&cp)
			resolved[name] = &cp
		}
	}

	// second pass: recursively resolve extends chains.
	visiting := make(map[string]bool)
	var resolve func(name string) (*Grammar, bool)
	resolve = func(name string) (*Grammar, bool) {
		if g, ok := resolved[name]; ok {
			return g, true
		}
		g, ok := r.raw[name]
		if !ok {
			return nil, false
		}
		if g.Extends == "" {
			cp := *g
			cp.resolved = true
			r.compileTokens(&cp)
			resolved[name] = &cp
			return &cp, true
		}
		if visiting[name] {
			r.warnf("extends cycle detected involving grammar %q", name)
			return nil, false
		}
		visiting[name] = true
		defer delete(visiting, name)

		parent, ok := resolve(g.Extends)
		if !ok {
			r.warnf("grammar %q extends unknown or unresolved grammar %q", name, g.Extends)
			return nil, false
		}
		merged := deepMerge(parent, g)
		merged.resolved = true
		r.compileTokens(merged)
		resolved[name] = merged
		return merged, true
	}

	for name, g := range r.raw {
		if g.Extends != "" {
			resolve(name)
			_ = g
		}
	}

	r.resolved = resolved
}

// compileTokens pre-compiles every token pattern of g so matching never pays
// regexp.Compile per call. A token whose pattern fails to compile is recorded
// as a warning and matches by its enumerated values only, if it has any.
func (r *Registry) compileTokens(g *Grammar) {
	for _, def := range g.Tokens {
		if err := def.compile(); err != nil {
			r.warnf("grammar %q: %v", g.Name, err)
		}
	}
}

func (r *Registry) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// deepMerge merges parent into child field by field, returning a new
// Grammar. Neither argument is mutated.
func deepMerge(parent, child *Grammar) *Grammar {
	out := &Grammar{}

	out.Name = firstNonEmpty(child.Name, parent.Name)
	out.Version = firstNonEmpty(child.Version, parent.Version)
	out.Description = firstNonEmpty(child.Description, parent.Description)
	if len(child.Identifiers) > 0 {
		out.Identifiers = append([]string(nil), child.Identifiers...)
	} else {
		out.Identifiers = append([]string(nil), parent.Identifiers...)
	}
	out.Category = firstNonEmpty(child.Category, parent.Category)

	// multiline/templateMode are booleans with no natural "unset" state in
	// the Go struct; child always wins, matching the rule that these are
	// scalars where "child wins if present".
	out.Multiline = child.Multiline || parent.Multiline
	out.TemplateMode = child.TemplateMode
	if !child.TemplateMode && parent.TemplateMode && child.Template == nil {
		out.TemplateMode = true
	}

	// extends is dropped from the merged result -- it has served its
	// purpose and the merged grammar is no longer "raw".
	out.Extends = ""

	out.Tokens = make(map[string]*TokenDef, len(parent.Tokens)+len(child.Tokens))
	out.TokenOrder = append([]string(nil), parent.TokenOrder...)
	for id, def := range parent.Tokens {
		cp := *def
		out.Tokens[id] = &cp
	}
	for _, id := range child.TokenOrder {
		if _, already := out.Tokens[id]; !already {
			out.TokenOrder = append(out.TokenOrder, id)
		}
	}
	for id, def := range child.Tokens {
		cp := *def
		out.Tokens[id] = &cp
	}

	if len(child.Structure) > 0 {
		out.Structure = child.Structure
	} else {
		out.Structure = parent.Structure
	}

	if child.Template != nil {
		out.Template = child.Template
	} else {
		out.Template = parent.Template
	}

	out.Suggestions = mergeSuggestions(parent.Suggestions, child.Suggestions)

	return out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func mergeSuggestions(parent, child *SuggestionBlock) *SuggestionBlock {
	if parent == nil && child == nil {
		return nil
	}
	out := &SuggestionBlock{
		After: make(map[string][]AfterEntry),
	}

	declByID := make(map[string]int)
	if parent != nil {
		for _, d := range parent.Declarations {
			declByID[d.ID] = len(out.Declarations)
			out.Declarations = append(out.Declarations, d)
		}
		for k, v := range parent.After {
			out.After[k] = v
		}
	}
	if child != nil {
		for _, d := range child.Declarations {
			if i, ok := declByID[d.ID]; ok {
				out.Declarations[i] = d
			} else {
				declByID[d.ID] = len(out.Declarations)
				out.Declarations = append(out.Declarations, d)
			}
		}
		for k, v := range child.After {
			out.After[k] = v
		}
	}
	return out
}

// SetCurrent selects name as the active resolved grammar. If name is not a
// resolved grammar, the call is a no-op with a logged warning and the
// previous current grammar is preserved.
func (r *Registry) SetCurrent(name string) bool {
	if _, ok := r.resolved[name]; !ok {
		r.warnf("setCurrent: unknown or unresolved grammar %q", name)
		return false
	}
	r.current = name
	return true
}

// Current returns the active resolved grammar, if any.
func (r *Registry) Current() (*Grammar, bool) {
	if r.current == "" {
		return nil, false
	}
	return r.Resolved(r.current)
}

// secondWordIdentifierCategories lists grammar categories whose detect
// identifier is the message's second word rather than its first, because
// their first word is a 4-letter FIR code.
var secondWordIdentifierCategories = map[string]bool{
	"SIGMET": true,
	"AIRMET": true,
}

var firCodeRE = firCodePattern()

func firCodePattern() func(string) bool {
	return func(s string) bool {
		if len(s) != 4 {
			return false
		}
		for _, r := range s {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
		return true
	}
}

// Detect uppercase-normalizes text and returns the name of the first
// resolved grammar whose identifier matches, applying the word-prefix test
// and the SIGMET/AIRMET second-word FIR rule. It returns ("", false) if nothing matches.
func (r *Registry) Detect(text string) (string, bool) {
	norm := upperCaser.String(strings.TrimSpace(text))
	if norm == "" {
		return "", false
	}
	words := strings.Fields(norm)

	for name, g := range r.resolved {
		for _, id := range g.Identifiers {
			idUpper := upperCaser.String(id)

			if secondWordIdentifierCategories[g.Category] && len(words) >= 2 && firCodeRE(words[0]) {
				if words[1] == idUpper || strings.HasPrefix(strings.Join(words[1:], " "), idUpper) {
					return name, true
				}
				continue
			}

			if len(words) >= 1 && words[0] == idUpper {
				return name, true
			}
			if strings.HasPrefix(norm, idUpper) {
				return name, true
			}
		}
	}
	return "", false
}
