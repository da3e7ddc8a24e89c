// Package tac implements the grammar-driven parsing, tokenization,
// autocompletion-suggestion, and validation engine for aviation Traffic
// Advisory Codes (METAR, SPECI, TAF, SIGMET, AIRMET, VAA, TCA).
//
// The package splits into a data model of token classes and structure nodes
// (this file), a token matcher, a tokenizer, a structure tracker, a grammar
// registry, a suggestion builder, and a template renderer/parser for
// record-style formats. It is not a general CFG parser: it accepts no left
// recursion and performs no LALR/LR construction, instead walking a bounded
// tree of sequences, one-ofs, and cardinality-bounded repetitions.
package tac

import (
	"fmt"
	"regexp"
	"strings"
)

// Infinite is the cardinality maximum used to mean "no upper bound".
const Infinite = -1

// Cardinality is the [min, max] repetition bound of a structure Node. A Max
// of Infinite means unbounded.
type Cardinality struct {
	Min int
	Max int
}

// Unbounded reports whether c has no upper bound.
func (c Cardinality) Unbounded() bool {
	return c.Max == Infinite
}

// Satisfied reports whether count matches-so-far satisfies c's minimum.
func (c Cardinality) Satisfied(count int) bool {
	return count >= c.Min
}

// Full reports whether count matches-so-far has reached c's maximum. An
// unbounded cardinality is never full.
func (c Cardinality) Full(count int) bool {
	if c.Unbounded() {
		return false
	}
	return count >= c.Max
}

// NodeKind discriminates the variant held by a Node.
type NodeKind int

const (
	// NodeToken is a leaf referencing a TokenDef by ID.
	NodeToken NodeKind = iota
	// NodeOneOf is an ordered list of alternative children; at most one is
	// taken per iteration of the node's own cardinality.
	NodeOneOf
	// NodeSequence is an ordered list of children that must all match, in
	// order, to complete one iteration.
	NodeSequence
)

func (k NodeKind) String() string {
	switch k {
	case NodeToken:
		return "token"
	case NodeOneOf:
		return "oneOf"
	case NodeSequence:
		return "sequence"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Node is a discriminated union representing one element of a Grammar's
// structure tree: a token reference, an alternation (one-of), or an ordered
// sequence. Every Node carries a cardinality governing how many times it may
// match.
type Node struct {
	Kind NodeKind
	Card Cardinality

	// TokenID is valid when Kind == NodeToken; it names an entry in the
	// owning Grammar's Tokens table.
	TokenID string

	// Children holds alternatives (NodeOneOf) or body elements in order
	// (NodeSequence). Unused for NodeToken.
	Children []*Node
}

// TokenDef is a named token kind: an optional anchored pattern, an optional
// enumerated literal value list, a presentation style tag, and a
// human-readable description.
type TokenDef struct {
	ID          string
	Pattern     string
	Values      []string
	Style       string
	Description string

	re *regexp.Regexp
}

// compile pre-compiles the Pattern, if any, so that Match does not pay
// regexp.Compile on every call. It is invoked by the Registry at
// resolve-time.
func (t *TokenDef) compile() error {
	if t.Pattern == "" {
		t.re = nil
		return nil
	}
	// patterns match whole spans; anchor them whether or not the document
	// wrote the anchors out.
	body := strings.TrimSuffix(strings.TrimPrefix(t.Pattern, "^"), "$")
	re, err := regexp.Compile("^(?:" + body + ")$")
	if err != nil {
		return fmt.Errorf("token %q: cannot compile pattern %q: %w", t.ID, t.Pattern, err)
	}
	t.re = re
	return nil
}

// EditableRange is a byte-offset sub-span, relative to the start of a
// Suggestion's inserted Text, that an editor should select for typing.
type EditableRange struct {
	Start int
	End   int
}

// SuggestionDecl is a declaration of one suggestion, keyed by ID so that
// suggestions.after entries can reference it instead of repeating it inline.
type SuggestionDecl struct {
	ID          string
	Ref         string
	Text        string
	Placeholder string
	Pattern     string
	Description string
	Editable    *EditableRange
	Category    string
	Children    []SuggestionDecl

	AppendToPrevious bool
	SkipToNext       bool
	NewLineBefore    bool
	SwitchGrammar    string
}

// AfterEntry is one entry of a suggestions.after[tokenKind] list. Exactly one
// of DeclRef or Inline is set: a bare string in the source document is a
// DeclRef (new format, dereferenced against the Grammar's declaration table),
// a suggestion object is Inline (legacy format).
type AfterEntry struct {
	DeclRef string
	Inline  *SuggestionDecl
}

// SuggestionBlock is a Grammar's suggestion data: the declaration table and
// the per-token-kind (or "start") list of what may be suggested next.
type SuggestionBlock struct {
	Declarations []SuggestionDecl
	After        map[string][]AfterEntry
}

func (b *SuggestionBlock) declByID(id string) (SuggestionDecl, bool) {
	if b == nil {
		return SuggestionDecl{}, false
	}
	for _, d := range b.Declarations {
		if d.ID == id {
			return d, true
		}
	}
	return SuggestionDecl{}, false
}

// TemplateField describes one label/value line of a record-format (VAA/TCA)
// template.
type TemplateField struct {
	Label          string
	LabelKind      string
	ValueKind      string
	Required       bool
	Multiline      bool
	Placeholder    string
	SuggestionRefs []string
}

// TemplateDef is the ordered field list and label-column geometry for a
// template-mode Grammar.
type TemplateDef struct {
	Fields           []TemplateField
	LabelColumnWidth int
}

// resolvedLabelColumnWidth returns LabelColumnWidth if set, else
// max(len(label))+2.
func (t *TemplateDef) resolvedLabelColumnWidth() int {
	if t.LabelColumnWidth > 0 {
		return t.LabelColumnWidth
	}
	max := 0
	for _, f := range t.Fields {
		if len(f.Label) > max {
			max = len(f.Label)
		}
	}
	return max + 2
}

// Grammar is a named, versioned description of one message format.
type Grammar struct {
	Name        string
	Version     string
	Description string

	// Identifiers holds the single- or multi-word keyword(s) that flag a
	// text as belonging to this grammar. A grammar may carry more than one.
	Identifiers []string

	Extends  string
	Category string

	Multiline    bool
	TemplateMode bool

	Tokens map[string]*TokenDef
	// TokenOrder records the declaration order of Tokens' keys, since the
	// token matcher must try patterns "in definition order" and a
	// Go map has none. Populated by the grammar-document loader; if left
	// empty, tokenOrder() falls back to an arbitrary map order.
	TokenOrder  []string
	Structure   []*Node
	Template    *TemplateDef
	Suggestions *SuggestionBlock

	// resolved is true once this Grammar has passed through
	// Registry.ResolveInheritance; resolved Grammars are read-only and may
	// be shared across Engine instances.
	resolved bool
}

// TokenKindIDs returns the set of token kind IDs defined by g.
func (g *Grammar) TokenKindIDs() []string {
	ids := make([]string, 0, len(g.Tokens))
	for id := range g.Tokens {
		ids = append(ids, id)
	}
	return ids
}

// TokenizedToken is one lexeme (or whitespace run) produced by the
// Tokenizer, with its byte span in the original text preserved so that
// Tokenize output re-concatenates byte-for-byte.
type TokenizedToken struct {
	Text        string
	Kind        string
	Style       string
	StartByte   int
	EndByte     int
	Description string
	Error       string
}

// IsWhitespace reports whether t is a pure-whitespace filler token.
func (t TokenizedToken) IsWhitespace() bool {
	return t.Kind == KindWhitespace
}

// KindWhitespace is the reserved token kind used for preserved
// whitespace runs between real tokens.
const KindWhitespace = "whitespace"

// KindError is the reserved token kind used when a span could not be
// classified against any entry in the grammar's token table.
const KindError = "error"

// TrackerState is the pure-data state the StructureTracker mutates: match
// counts and one-of choices keyed by node-path string, plus the root
// leading-edge index. It is exposed so that it can be serialized (see
// server/dao for binary persistence of in-progress edit sessions) and
// restored without needing the Grammar.
type TrackerState struct {
	// Counts maps a node-path (see paths.go) to how many times that node has
	// matched. Sequence cursors are stored under the node-path suffixed with
	// ".seq".
	Counts map[string]int

	// Choices maps a one-of node-path to the index of the alternative chosen
	// for its current (or most recent) iteration.
	Choices map[string]int

	// CurrentIndex is the root-level leading edge; it never decreases during
	// a single parse.
	CurrentIndex int
}

// NewTrackerState returns an empty, ready-to-use TrackerState.
func NewTrackerState() TrackerState {
	return TrackerState{
		Counts:  make(map[string]int),
		Choices: make(map[string]int),
	}
}
