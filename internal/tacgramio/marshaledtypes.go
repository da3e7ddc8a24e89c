package tacgramio

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/softwarity/tac-editor/internal/tac"
)

type topLevelManifest struct {
	Format string   `toml:"format" json:"format" yaml:"format"`
	Type   string   `toml:"type" json:"type" yaml:"type"`
	Files  []string `toml:"files" json:"files" yaml:"files"`
}

// topLevelGrammarData is the top-level structure containing all keys in a
// complete TACG 'GRAMMAR' type file.
type topLevelGrammarData struct {
	Format   string     `toml:"format" json:"format" yaml:"format"`
	Type     string     `toml:"type" json:"type" yaml:"type"`
	Grammars []mGrammar `toml:"grammar" json:"grammars" yaml:"grammars"`
}

// identifierList accepts either a single string or a list of strings, since
// grammar documents in the wild write the identifier key both ways.
type identifierList []string

func (il *identifierList) fromAny(v any) error {
	switch tv := v.(type) {
	case nil:
		*il = nil
		return nil
	case string:
		*il = identifierList{tv}
		return nil
	case []any:
		out := make(identifierList, 0, len(tv))
		for _, e := range tv {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("identifier list element is not a string: %v", e)
			}
			out = append(out, s)
		}
		*il = out
		return nil
	case []string:
		*il = identifierList(tv)
		return nil
	default:
		return fmt.Errorf("identifier must be a string or list of strings, not %T", v)
	}
}

func (il *identifierList) UnmarshalTOML(v any) error {
	return il.fromAny(v)
}

func (il *identifierList) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return il.fromAny(v)
}

func (il *identifierList) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return il.fromAny(v)
}

type mGrammar struct {
	Name         string         `toml:"name" json:"name" yaml:"name"`
	Version      string         `toml:"version" json:"version" yaml:"version"`
	Description  string         `toml:"description" json:"description" yaml:"description"`
	Identifier   identifierList `toml:"identifier" json:"identifier" yaml:"identifier"`
	Extends      string         `toml:"extends" json:"extends" yaml:"extends"`
	Category     string         `toml:"category" json:"category" yaml:"category"`
	Multiline    bool           `toml:"multiline" json:"multiline" yaml:"multiline"`
	TemplateMode bool           `toml:"template_mode" json:"templateMode" yaml:"template_mode"`

	Tokens      []mToken      `toml:"token" json:"tokens" yaml:"tokens"`
	Structure   []mNode       `toml:"structure" json:"structure" yaml:"structure"`
	Template    *mTemplate    `toml:"template" json:"template" yaml:"template"`
	Suggestions *mSuggestions `toml:"suggestions" json:"suggestions" yaml:"suggestions"`
}

type mToken struct {
	ID          string   `toml:"id" json:"id" yaml:"id"`
	Pattern     string   `toml:"pattern" json:"pattern" yaml:"pattern"`
	Values      []string `toml:"values" json:"values" yaml:"values"`
	Style       string   `toml:"style" json:"style" yaml:"style"`
	Description string   `toml:"description" json:"description" yaml:"description"`
}

func (mt mToken) toTokenDef() *tac.TokenDef {
	return &tac.TokenDef{
		ID:          mt.ID,
		Pattern:     mt.Pattern,
		Values:      append([]string(nil), mt.Values...),
		Style:       mt.Style,
		Description: mt.Description,
	}
}

type mNode struct {
	Kind     string  `toml:"kind" json:"kind" yaml:"kind"`
	Token    string  `toml:"token" json:"token" yaml:"token"`
	Min      *int    `toml:"min" json:"min" yaml:"min"`
	Max      *int    `toml:"max" json:"max" yaml:"max"`
	Children []mNode `toml:"children" json:"children" yaml:"children"`
}

func (mn mNode) cardinality() tac.Cardinality {
	c := tac.Cardinality{Min: 1, Max: 1}
	if mn.Min != nil {
		c.Min = *mn.Min
	}
	if mn.Max != nil {
		c.Max = *mn.Max
	}
	return c
}

func (mn mNode) toNode() (*tac.Node, error) {
	kind := strings.ToLower(strings.TrimSpace(mn.Kind))
	if kind == "" && mn.Token != "" {
		kind = "token"
	}

	n := &tac.Node{Card: mn.cardinality()}
	switch kind {
	case "token":
		if mn.Token == "" {
			return nil, fmt.Errorf("token node has no token id")
		}
		n.Kind = tac.NodeToken
		n.TokenID = mn.Token
	case "oneof", "one_of":
		n.Kind = tac.NodeOneOf
	case "sequence", "seq":
		n.Kind = tac.NodeSequence
	default:
		return nil, fmt.Errorf("unknown structure node kind %q", mn.Kind)
	}

	if n.Kind != tac.NodeToken {
		if len(mn.Children) < 1 {
			return nil, fmt.Errorf("%s node has no children", kind)
		}
		for i, mc := range mn.Children {
			c, err := mc.toNode()
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i, err)
			}
			n.Children = append(n.Children, c)
		}
	}

	return n, nil
}

type mTemplate struct {
	LabelColumnWidth int              `toml:"label_column_width" json:"labelColumnWidth" yaml:"label_column_width"`
	Fields           []mTemplateField `toml:"field" json:"fields" yaml:"fields"`
}

type mTemplateField struct {
	Label       string   `toml:"label" json:"label" yaml:"label"`
	LabelKind   string   `toml:"label_kind" json:"labelKind" yaml:"label_kind"`
	ValueKind   string   `toml:"value_kind" json:"valueKind" yaml:"value_kind"`
	Required    bool     `toml:"required" json:"required" yaml:"required"`
	Multiline   bool     `toml:"multiline" json:"multiline" yaml:"multiline"`
	Placeholder string   `toml:"placeholder" json:"placeholder" yaml:"placeholder"`
	Suggestions []string `toml:"suggestions" json:"suggestionRefs" yaml:"suggestions"`
}

func (mt *mTemplate) toTemplateDef() *tac.TemplateDef {
	if mt == nil {
		return nil
	}
	out := &tac.TemplateDef{LabelColumnWidth: mt.LabelColumnWidth}
	for _, f := range mt.Fields {
		out.Fields = append(out.Fields, tac.TemplateField{
			Label:          f.Label,
			LabelKind:      f.LabelKind,
			ValueKind:      f.ValueKind,
			Required:       f.Required,
			Multiline:      f.Multiline,
			Placeholder:    f.Placeholder,
			SuggestionRefs: append([]string(nil), f.Suggestions...),
		})
	}
	return out
}

type mEditable struct {
	Start int `toml:"start" json:"start" yaml:"start"`
	End   int `toml:"end" json:"end" yaml:"end"`
}

type mSuggestionDecl struct {
	ID          string     `toml:"id" json:"id" yaml:"id"`
	Ref         string     `toml:"ref" json:"ref" yaml:"ref"`
	Text        string     `toml:"text" json:"text" yaml:"text"`
	Placeholder string     `toml:"placeholder" json:"placeholder" yaml:"placeholder"`
	Pattern     string     `toml:"pattern" json:"pattern" yaml:"pattern"`
	Description string     `toml:"description" json:"description" yaml:"description"`
	Editable    *mEditable `toml:"editable" json:"editable" yaml:"editable"`
	Category    string     `toml:"category" json:"category" yaml:"category"`

	AppendToPrevious bool   `toml:"append_to_previous" json:"appendToPrevious" yaml:"append_to_previous"`
	SkipToNext       bool   `toml:"skip_to_next" json:"skipToNext" yaml:"skip_to_next"`
	NewLineBefore    bool   `toml:"new_line_before" json:"newLineBefore" yaml:"new_line_before"`
	SwitchGrammar    string `toml:"switch_grammar" json:"switchGrammar" yaml:"switch_grammar"`

	Children []mSuggestionDecl `toml:"children" json:"children" yaml:"children"`
}

func (md mSuggestionDecl) toDecl() tac.SuggestionDecl {
	d := tac.SuggestionDecl{
		ID:               md.ID,
		Ref:              md.Ref,
		Text:             md.Text,
		Placeholder:      md.Placeholder,
		Pattern:          md.Pattern,
		Description:      md.Description,
		Category:         md.Category,
		AppendToPrevious: md.AppendToPrevious,
		SkipToNext:       md.SkipToNext,
		NewLineBefore:    md.NewLineBefore,
		SwitchGrammar:    md.SwitchGrammar,
	}
	if md.Editable != nil {
		d.Editable = &tac.EditableRange{Start: md.Editable.Start, End: md.Editable.End}
	}
	for _, mc := range md.Children {
		d.Children = append(d.Children, mc.toDecl())
	}
	return d
}

// mAfterEntry accepts either a bare declaration-id string (the current
// format) or an inline suggestion object (the legacy format), detected by
// element type.
type mAfterEntry struct {
	Ref    string
	Inline *mSuggestionDecl
}

func (ae *mAfterEntry) fromAny(v any) error {
	switch tv := v.(type) {
	case string:
		ae.Ref = tv
		return nil
	case map[string]any:
		decl, err := declFromMap(tv)
		if err != nil {
			return err
		}
		ae.Inline = &decl
		return nil
	default:
		return fmt.Errorf("suggestion entry must be a declaration id or an inline suggestion, not %T", v)
	}
}

func (ae *mAfterEntry) UnmarshalTOML(v any) error {
	return ae.fromAny(v)
}

func (ae *mAfterEntry) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return ae.fromAny(v)
}

func (ae *mAfterEntry) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return ae.fromAny(v)
}

type mSuggestions struct {
	Declarations []mSuggestionDecl        `toml:"declaration" json:"declarations" yaml:"declarations"`
	After        map[string][]mAfterEntry `toml:"after" json:"after" yaml:"after"`
}

func (ms *mSuggestions) toBlock() *tac.SuggestionBlock {
	if ms == nil {
		return nil
	}
	out := &tac.SuggestionBlock{After: make(map[string][]tac.AfterEntry)}
	for _, md := range ms.Declarations {
		out.Declarations = append(out.Declarations, md.toDecl())
	}
	for key, entries := range ms.After {
		for _, e := range entries {
			ae := tac.AfterEntry{DeclRef: e.Ref}
			if e.Inline != nil {
				inline := e.Inline.toDecl()
				ae.Inline = &inline
				ae.DeclRef = ""
			}
			out.After[key] = append(out.After[key], ae)
		}
	}
	return out
}

// strFromMap and friends pull loosely-typed values out of a decoded inline
// suggestion object, accepting both snake_case and camelCase key spellings.
func strFromMap(m map[string]any, snake, camel string) string {
	if v, ok := m[snake]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if v, ok := m[camel]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func boolFromMap(m map[string]any, snake, camel string) bool {
	if v, ok := m[snake]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	if v, ok := m[camel]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func intFromAny(v any) (int, bool) {
	switch tv := v.(type) {
	case int:
		return tv, true
	case int64:
		return int(tv), true
	case float64:
		return int(tv), true
	default:
		return 0, false
	}
}

func declFromMap(m map[string]any) (mSuggestionDecl, error) {
	d := mSuggestionDecl{
		ID:               strFromMap(m, "id", "id"),
		Ref:              strFromMap(m, "ref", "ref"),
		Text:             strFromMap(m, "text", "text"),
		Placeholder:      strFromMap(m, "placeholder", "placeholder"),
		Pattern:          strFromMap(m, "pattern", "pattern"),
		Description:      strFromMap(m, "description", "description"),
		Category:         strFromMap(m, "category", "category"),
		AppendToPrevious: boolFromMap(m, "append_to_previous", "appendToPrevious"),
		SkipToNext:       boolFromMap(m, "skip_to_next", "skipToNext"),
		NewLineBefore:    boolFromMap(m, "new_line_before", "newLineBefore"),
		SwitchGrammar:    strFromMap(m, "switch_grammar", "switchGrammar"),
	}

	if ev, ok := m["editable"]; ok {
		em, ok := ev.(map[string]any)
		if !ok {
			return d, fmt.Errorf("editable must be a table with start and end")
		}
		var ed mEditable
		if n, ok := intFromAny(em["start"]); ok {
			ed.Start = n
		}
		if n, ok := intFromAny(em["end"]); ok {
			ed.End = n
		}
		d.Editable = &ed
	}

	if cv, ok := m["children"]; ok {
		cl, ok := cv.([]any)
		if !ok {
			return d, fmt.Errorf("children must be a list of suggestion objects")
		}
		for i, ce := range cl {
			cm, ok := ce.(map[string]any)
			if !ok {
				return d, fmt.Errorf("child %d is not a suggestion object", i)
			}
			child, err := declFromMap(cm)
			if err != nil {
				return d, fmt.Errorf("child %d: %w", i, err)
			}
			d.Children = append(d.Children, child)
		}
	}

	return d, nil
}

func (mg mGrammar) toGrammar() (*tac.Grammar, error) {
	g := &tac.Grammar{
		Name:         mg.Name,
		Version:      mg.Version,
		Description:  mg.Description,
		Identifiers:  append([]string(nil), mg.Identifier...),
		Extends:      mg.Extends,
		Category:     mg.Category,
		Multiline:    mg.Multiline,
		TemplateMode: mg.TemplateMode,
		Tokens:       make(map[string]*tac.TokenDef, len(mg.Tokens)),
	}

	for _, mt := range mg.Tokens {
		if mt.ID == "" {
			return nil, fmt.Errorf("token with empty id")
		}
		if _, dupe := g.Tokens[mt.ID]; dupe {
			return nil, fmt.Errorf("duplicate token id %q", mt.ID)
		}
		g.Tokens[mt.ID] = mt.toTokenDef()
		g.TokenOrder = append(g.TokenOrder, mt.ID)
	}

	for i, mn := range mg.Structure {
		n, err := mn.toNode()
		if err != nil {
			return nil, fmt.Errorf("structure node %d: %w", i, err)
		}
		g.Structure = append(g.Structure, n)
	}

	g.Template = mg.Template.toTemplateDef()
	g.Suggestions = mg.Suggestions.toBlock()

	return g, nil
}
