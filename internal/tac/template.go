package tac

import (
	"strings"

	"github.com/dekarrin/rosed"
)

// TemplateState is the mutable state of one in-progress record-format
// (VAA/TCA) edit, as produced by Initialize and mutated by FocusNext/
// FocusPrevious. GenerateText/ParseText/Tokenize are pure functions of a
// TemplateState's Grammar and Values and do not depend on Focus.
type TemplateState struct {
	Grammar    *Grammar
	Identifier string

	// Values holds the rendered value (first line only) for each field in
	// Grammar.Template.Fields, by index.
	Values []string

	// Continuations holds any additional indented continuation lines for
	// each field, by index.
	Continuations [][]string

	Focus int
}

// InitializeTemplate builds the initial TemplateState for a template-mode
// grammar: one empty rendered field per template field, with focus on
// index 0.
func InitializeTemplate(g *Grammar, identifier string) TemplateState {
	n := 0
	if g.Template != nil {
		n = len(g.Template.Fields)
	}
	return TemplateState{
		Grammar:       g,
		Identifier:    identifier,
		Values:        make([]string, n),
		Continuations: make([][]string, n),
		Focus:         0,
	}
}

// GenerateText renders the identifier line followed by one label-padded
// line per field, with any continuation lines indented by the label column
// width.
func (s TemplateState) GenerateText() string {
	if s.Grammar == nil || s.Grammar.Template == nil {
		return s.Identifier
	}
	width := s.Grammar.Template.resolvedLabelColumnWidth()

	var b strings.Builder
	b.WriteString(s.Identifier)
	b.WriteString("\n")

	for i, f := range s.Grammar.Template.Fields {
		b.WriteString(padLabel(f.Label, width))
		if i < len(s.Values) {
			b.WriteString(s.Values[i])
		}
		b.WriteString("\n")

		if i < len(s.Continuations) {
			for _, cont := range s.Continuations[i] {
				b.WriteString(strings.Repeat(" ", width))
				b.WriteString(cont)
				b.WriteString("\n")
			}
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func padLabel(label string, width int) string {
	if len(label) >= width {
		return label
	}
	return label + strings.Repeat(" ", width-len(label))
}

// ParseText parses generated (or hand-edited) record text back into a
// TemplateState. Lines are split; line 0 is the identifier; for each
// subsequent line, the first known label that prefixes the trimmed line
// assigns the remainder as that field's value; lines that match no label
// but are indented by at least half the label column width are treated as
// continuations of the preceding field; fields with no matching line retain
// an empty value.
func (s *TemplateState) ParseText(text string) {
	if s.Grammar == nil || s.Grammar.Template == nil {
		return
	}
	fields := s.Grammar.Template.Fields
	width := s.Grammar.Template.resolvedLabelColumnWidth()

	s.Values = make([]string, len(fields))
	s.Continuations = make([][]string, len(fields))

	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return
	}
	s.Identifier = lines[0]

	lastField := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		indent := len(line) - len(trimmed)

		if idx, rest, ok := matchLabel(trimmed, fields); ok {
			s.Values[idx] = strings.TrimLeft(rest, " \t")
			lastField = idx
			continue
		}

		if lastField >= 0 && strings.TrimSpace(line) != "" && indent >= width/2 {
			s.Continuations[lastField] = append(s.Continuations[lastField], strings.TrimLeft(line, " \t"))
		}
		// lines matching neither a label nor continuation indent are
		// dropped from the reconstructed state; Tokenize still surfaces
		// them (flagged) for the editor.
	}
}

// matchLabel finds the longest known label that is a case-insensitive
// prefix of trimmed, returning its field index and the remainder of the
// line after the label.
func matchLabel(trimmed string, fields []TemplateField) (int, string, bool) {
	best := -1
	bestLen := -1
	upper := strings.ToUpper(trimmed)
	for i, f := range fields {
		if f.Label == "" {
			continue
		}
		if strings.HasPrefix(upper, strings.ToUpper(f.Label)) {
			if len(f.Label) > bestLen {
				best = i
				bestLen = len(f.Label)
			}
		}
	}
	if best < 0 {
		return 0, "", false
	}
	return best, trimmed[bestLen:], true
}

// FocusNext advances focus by one field, clamped to [0, fieldCount-1].
func (s *TemplateState) FocusNext() int {
	if s.Grammar == nil || s.Grammar.Template == nil {
		return s.Focus
	}
	max := len(s.Grammar.Template.Fields) - 1
	if s.Focus < max {
		s.Focus++
	}
	return s.Focus
}

// FocusPrevious retreats focus by one field, clamped to [0, fieldCount-1].
func (s *TemplateState) FocusPrevious() int {
	if s.Focus > 0 {
		s.Focus--
	}
	return s.Focus
}

// WrapContinuation reflows an overlong continuation value to the given
// display width, so that a VAA/TCA ash-extent description typed as one long
// line renders as properly indented continuation lines instead of running
// off the screen.
func WrapContinuation(value string, width int) []string {
	if width <= 0 || len(value) <= width {
		return []string{value}
	}
	wrapped := rosed.Edit(value).Wrap(width).String()
	return strings.Split(wrapped, "\n")
}

// tokenizeTemplate produces colored tokens for template-mode text: an
// identifier token for line 0, then for each subsequent line a label token
// (styled as the field's labelKind), padding tokens (styled as label),
// and a value token -- or, for continuation lines, a padding token
// followed by a value token.
func tokenizeTemplate(text string, g *Grammar) []TokenizedToken {
	if g.Template == nil {
		return tokenizeLine(text, g)
	}

	var out []TokenizedToken
	width := g.Template.resolvedLabelColumnWidth()

	pos := 0
	lineNo := 0
	lastField := -1

	for pos <= len(text) {
		nl := strings.IndexByte(text[pos:], '\n')
		var line string
		var lineEnd int
		if nl < 0 {
			line = text[pos:]
			lineEnd = len(text)
		} else {
			line = text[pos : pos+nl]
			lineEnd = pos + nl
		}

		out = append(out, tokenizeTemplateLine(line, pos, lineNo, g, width, &lastField)...)

		if nl < 0 {
			break
		}
		out = append(out, TokenizedToken{
			Text:      "\n",
			Kind:      KindWhitespace,
			StartByte: lineEnd,
			EndByte:   lineEnd + 1,
		})
		pos = lineEnd + 1
		lineNo++
	}

	return out
}

func tokenizeTemplateLine(line string, start, lineNo int, g *Grammar, width int, lastField *int) []TokenizedToken {
	if lineNo == 0 {
		if line == "" {
			return nil
		}
		return []TokenizedToken{{
			Text:      line,
			Kind:      "identifier",
			StartByte: start,
			EndByte:   start + len(line),
		}}
	}

	if strings.TrimSpace(line) == "" {
		if line == "" {
			return nil
		}
		return []TokenizedToken{{Text: line, Kind: KindWhitespace, StartByte: start, EndByte: start + len(line)}}
	}

	trimmed := strings.TrimLeft(line, " \t")
	indent := len(line) - len(trimmed)

	var out []TokenizedToken
	pos := start
	if indent > 0 {
		out = append(out, TokenizedToken{Text: line[:indent], Kind: KindWhitespace, StartByte: pos, EndByte: pos + indent})
		pos += indent
	}

	if idx, rest, ok := matchLabel(trimmed, g.Template.Fields); ok {
		field := g.Template.Fields[idx]
		labelStyle := ""
		if def, ok := g.Tokens[field.LabelKind]; ok {
			labelStyle = def.Style
		}
		labelLen := len(field.Label)
		out = append(out, TokenizedToken{Text: trimmed[:labelLen], Kind: field.LabelKind, Style: labelStyle, StartByte: pos, EndByte: pos + labelLen})
		pos += labelLen

		// inter-column padding is whitespace, rendered in the label's style
		valStart := 0
		for valStart < len(rest) && (rest[valStart] == ' ' || rest[valStart] == '\t') {
			valStart++
		}
		if valStart > 0 {
			out = append(out, TokenizedToken{Text: rest[:valStart], Kind: KindWhitespace, Style: labelStyle, StartByte: pos, EndByte: pos + valStart})
			pos += valStart
		}

		value := rest[valStart:]
		if value != "" {
			out = append(out, tokenizeTemplateValue(value, pos, field, g)...)
		}
		*lastField = idx
		return out
	}

	if *lastField >= 0 && indent >= width/2 {
		field := g.Template.Fields[*lastField]
		out = append(out, tokenizeTemplateValue(trimmed, pos, field, g)...)
		return out
	}

	// unmatched words flagged as errors
	words := strings.Fields(trimmed)
	wp := pos
	rest := trimmed
	for _, w := range words {
		idx := strings.Index(rest, w)
		wp += idx
		out = append(out, classifySpan(w, wp, g))
		rest = rest[idx+len(w):]
		wp += len(w)
	}
	return out
}

func tokenizeTemplateValue(value string, pos int, field TemplateField, g *Grammar) []TokenizedToken {
	if def, ok := g.Tokens[field.ValueKind]; ok && def.re != nil && def.re.MatchString(value) {
		return []TokenizedToken{{Text: value, Kind: field.ValueKind, Style: def.Style, Description: def.Description, StartByte: pos, EndByte: pos + len(value)}}
	}

	var out []TokenizedToken
	p := pos
	rest := value
	for len(rest) > 0 {
		spIdx := strings.IndexAny(rest, " \t")
		var word, gap string
		if spIdx < 0 {
			word = rest
		} else {
			word = rest[:spIdx]
			gapEnd := spIdx
			for gapEnd < len(rest) && (rest[gapEnd] == ' ' || rest[gapEnd] == '\t') {
				gapEnd++
			}
			gap = rest[spIdx:gapEnd]
			rest = rest[gapEnd:]
		}
		if word != "" {
			out = append(out, classifySpan(word, p, g))
			p += len(word)
		}
		if gap != "" {
			out = append(out, TokenizedToken{Text: gap, Kind: KindWhitespace, StartByte: p, EndByte: p + len(gap)})
			p += len(gap)
		}
		if spIdx < 0 {
			break
		}
	}
	return out
}
