package tac

import "strings"

// Suggestion is a single user-facing autocomplete item. Category
// items carry Children and no insertable Text; leaf items carry Text (and
// optionally an Editable sub-range) and no Children.
type Suggestion struct {
	ID               string
	Text             string
	Placeholder      string
	Description      string
	Style            string
	Category         string
	Editable         *EditableRange
	AppendToPrevious bool
	SkipToNext       bool
	NewLineBefore    bool
	SwitchGrammar    string
	Children         []Suggestion
}

// fallbackIdentifierDescriptions covers grammar identifiers that ship with no
// grammar.name to fall back on.
var fallbackIdentifierDescriptions = map[string]string{
	"METAR":  "Routine aviation weather report",
	"SPECI":  "Special aviation weather report",
	"TAF":    "Terminal aerodrome forecast",
	"SIGMET": "Significant meteorological advisory",
	"AIRMET": "Airmen's meteorological advisory",
	"VAA":    "Volcanic ash advisory",
	"TCA":    "Tropical cyclone advisory",
}

// commonFIRCodes is the fixed fallback list of FIR codes offered under each
// SIGMET/AIRMET category submenu, alongside whatever FIR-based suggestions
// the grammar itself declares.
var commonFIRCodes = []string{"EGLL", "LFPG", "EDDF", "LEMD", "LIRF", "EHAM", "EBBR", "LSZH"}

// Builder turns suggestion declarations from a Registry's resolved grammars
// into the ordered, nested suggestion lists an editor renders.
type Builder struct {
	reg   *Registry
	clock Clock
}

// NewBuilder returns a Builder backed by reg, using clock for datetime-styled
// suggestion text.
func NewBuilder(reg *Registry, clock Clock) *Builder {
	if clock == nil {
		clock = RealClock
	}
	return &Builder{reg: reg, clock: clock}
}

// InitialSuggestions returns the start-of-text suggestion list: one item per
// distinct identifier among supportedTypes, or, if supportedTypes is empty,
// among every registered grammar's identifiers. Identifiers belonging to the
// second-word category set (SIGMET, AIRMET) expand to a nested FIR/category
// submenu instead of a single leaf.
func (b *Builder) InitialSuggestions(supportedTypes []string) []Suggestion {
	var idents []string
	seen := make(map[string]bool)

	addIdent := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		idents = append(idents, id)
	}

	if len(supportedTypes) > 0 {
		for _, t := range supportedTypes {
			addIdent(t)
		}
	} else {
		for _, name := range b.reg.GrammarNames() {
			g, ok := b.reg.Resolved(name)
			if !ok {
				continue
			}
			for _, id := range g.Identifiers {
				addIdent(id)
			}
		}
	}

	var out []Suggestion
	for _, id := range idents {
		if secondWordIdentifierCategories[id] {
			out = append(out, b.identifierSubmenu(id))
			continue
		}
		out = append(out, Suggestion{
			ID:          id,
			Text:        id,
			Description: b.identifierDescription(id),
		})
	}
	return out
}

// identifierDescription looks up a description for a bare identifier from
// whichever resolved grammar declares it, falling back to the builtin table.
func (b *Builder) identifierDescription(id string) string {
	for _, name := range b.reg.GrammarNames() {
		g, ok := b.reg.Resolved(name)
		if !ok {
			continue
		}
		for _, gid := range g.Identifiers {
			if gid == id && g.Description != "" {
				return g.Description
			}
		}
	}
	return fallbackIdentifierDescriptions[id]
}

// identifierSubmenu builds the nested SIGMET/AIRMET start menu: one submenu
// per registered category variant (WS/WV/WC, ...), each offering FIR-start
// suggestions from the grammar plus the common-FIR fallback list.
func (b *Builder) identifierSubmenu(id string) Suggestion {
	top := Suggestion{ID: id, Text: "", Category: id, Description: b.identifierDescription(id)}

	categories := make(map[string]bool)
	for _, name := range b.reg.GrammarNames() {
		g, ok := b.reg.Resolved(name)
		if !ok {
			continue
		}
		for _, gid := range g.Identifiers {
			if gid == id && g.Category != "" {
				categories[g.Category] = true
			}
		}
	}

	for cat := range categories {
		sub := Suggestion{ID: id + "/" + cat, Category: cat}
		for _, fir := range commonFIRCodes {
			sub.Children = append(sub.Children, Suggestion{
				ID:   id + "/" + cat + "/" + fir,
				Text: fir + " " + id,
				Editable: &EditableRange{
					Start: 0,
					End:   4,
				},
				SwitchGrammar: cat,
			})
		}
		top.Children = append(top.Children, sub)
	}

	return top
}

// SuggestionsAfter implements suggestionsAfter(tokenKind, prevTokenText,
// supportedTypes). tokenKind == "" means "start" (the very first
// token of a new message). If no grammar is current, it falls back to
// InitialSuggestions.
func (b *Builder) SuggestionsAfter(tokenKind, prevTokenText string, supportedTypes []string) []Suggestion {
	g, ok := b.reg.Current()
	if !ok {
		return b.InitialSuggestions(supportedTypes)
	}

	key := tokenKind
	if key == "" {
		key = "start"
	}
	if g.Suggestions == nil {
		return nil
	}
	entries, ok := g.Suggestions.After[key]
	if !ok {
		return nil
	}

	var out []Suggestion
	for _, entry := range entries {
		if entry.Inline != nil {
			s := b.fromDecl(g, *entry.Inline, prevTokenText, 0)
			if s != nil {
				out = append(out, *s)
			}
			continue
		}
		decl, ok := g.Suggestions.declByID(entry.DeclRef)
		if !ok {
			continue
		}
		s := b.fromDecl(g, decl, prevTokenText, 0)
		if s != nil {
			out = append(out, *s)
		}
	}

	return sortSuggestions(out)
}

// fromDecl converts one SuggestionDecl (or a legacy inline equivalent) into a
// Suggestion, recursing one level into Children, suppressing CB/TCU
// re-append when prevTokenText already ends with that text, and resolving
// datetime-styled text through the clock.
func (b *Builder) fromDecl(g *Grammar, d SuggestionDecl, prevTokenText string, depth int) *Suggestion {
	if d.AppendToPrevious {
		trimmed := strings.TrimSpace(d.Text)
		if (trimmed == "CB" || trimmed == "TCU") && strings.HasSuffix(strings.TrimSpace(prevTokenText), trimmed) {
			return nil
		}
	}

	s := &Suggestion{
		ID:               d.ID,
		Text:             d.Text,
		Placeholder:      d.Placeholder,
		Description:      d.Description,
		Category:         d.Category,
		AppendToPrevious: d.AppendToPrevious,
		SkipToNext:       d.SkipToNext,
		NewLineBefore:    d.NewLineBefore,
		SwitchGrammar:    d.SwitchGrammar,
	}
	if d.Editable != nil {
		cp := *d.Editable
		s.Editable = &cp
	}

	if def, ok := g.Tokens[d.Ref]; ok {
		s.Style = def.Style
		if def.Style == "datetime" && d.Pattern != "" {
			if text, ok := DatetimeSuggestionText(d.Pattern, d.Description, b.clock); ok {
				s.Text = text
			}
		}
	}

	if depth == 0 && len(d.Children) > 0 {
		for _, child := range d.Children {
			cs := b.fromDecl(g, child, prevTokenText, depth+1)
			if cs != nil {
				s.Children = append(s.Children, *cs)
			}
		}
	}

	return s
}

// TemplateSuggestions returns the suggestions declared for the template
// field of the current grammar whose labelKind matches: each of the field's
// suggestionRefs is dereferenced against the declaration table, and a
// placeholder-only suggestion is produced when the field declares a
// placeholder but no refs.
func (b *Builder) TemplateSuggestions(labelKind string) []Suggestion {
	g, ok := b.reg.Current()
	if !ok || g.Template == nil {
		return nil
	}

	var out []Suggestion
	for _, f := range g.Template.Fields {
		if f.LabelKind != labelKind {
			continue
		}
		for _, ref := range f.SuggestionRefs {
			decl, ok := g.Suggestions.declByID(ref)
			if !ok {
				continue
			}
			s := b.fromDecl(g, decl, "", 0)
			if s != nil {
				out = append(out, *s)
			}
		}
		if len(f.SuggestionRefs) == 0 && f.Placeholder != "" {
			out = append(out, Suggestion{
				ID:          f.LabelKind,
				Placeholder: f.Placeholder,
				Description: f.Label,
			})
		}
	}
	return sortSuggestions(out)
}

// sortSuggestions stably orders editable items first, then categories
// (items with children and no text), then plain leaf items.
func sortSuggestions(in []Suggestion) []Suggestion {
	var editable, categories, plain []Suggestion
	for _, s := range in {
		switch {
		case s.Editable != nil:
			editable = append(editable, s)
		case len(s.Children) > 0:
			categories = append(categories, s)
		default:
			plain = append(plain, s)
		}
	}
	out := make([]Suggestion, 0, len(in))
	out = append(out, editable...)
	out = append(out, categories...)
	out = append(out, plain...)
	return out
}
