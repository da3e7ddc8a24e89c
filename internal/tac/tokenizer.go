package tac

import (
	"regexp"
	"sort"
	"strings"
)

// Tokenize slices text into (span, kind) pairs for g, selecting line,
// multiline-label, or template mode based on g's flags. The returned tokens
// re-concatenate to text byte-for-byte: every byte of input, including whitespace, appears in
// exactly one token's Text.
func Tokenize(text string, g *Grammar) []TokenizedToken {
	switch {
	case g.TemplateMode:
		return tokenizeTemplate(text, g)
	case g.Multiline:
		return tokenizeMultilineLabel(text, g)
	default:
		return tokenizeLine(text, g)
	}
}

var wsRunRE = regexp.MustCompile(`[ \t\r\n]+`)

// whitespaceSpans returns the byte-offset [start,end) ranges of every
// maximal whitespace run in text.
func whitespaceSpans(text string) [][2]int {
	matches := wsRunRE.FindAllStringIndex(text, -1)
	out := make([][2]int, len(matches))
	for i, m := range matches {
		out[i] = [2]int{m[0], m[1]}
	}
	return out
}

// tokenizeLine implements line mode: split on whitespace runs,
// submit each non-empty non-whitespace span to the Token Matcher, emit
// whitespace runs verbatim as KindWhitespace.
func tokenizeLine(text string, g *Grammar) []TokenizedToken {
	var out []TokenizedToken
	wsSpans := whitespaceSpans(text)

	pos := 0
	wsIdx := 0
	for pos < len(text) {
		var nextWSStart, nextWSEnd int
		if wsIdx < len(wsSpans) {
			nextWSStart, nextWSEnd = wsSpans[wsIdx][0], wsSpans[wsIdx][1]
		} else {
			nextWSStart, nextWSEnd = len(text), len(text)
		}

		if pos < nextWSStart {
			span := text[pos:nextWSStart]
			out = append(out, classifySpan(span, pos, g))
			pos = nextWSStart
		}
		if wsIdx < len(wsSpans) && pos == nextWSStart {
			out = append(out, TokenizedToken{
				Text:      text[nextWSStart:nextWSEnd],
				Kind:      KindWhitespace,
				StartByte: nextWSStart,
				EndByte:   nextWSEnd,
			})
			pos = nextWSEnd
			wsIdx++
		}
	}

	return out
}

func classifySpan(span string, start int, g *Grammar) TokenizedToken {
	def, err := Match(span, g)
	if err != nil {
		return TokenizedToken{
			Text:      span,
			Kind:      KindError,
			StartByte: start,
			EndByte:   start + len(span),
			Error:     err.Error(),
		}
	}
	return TokenizedToken{
		Text:        span,
		Kind:        def.ID,
		Style:       def.Style,
		Description: def.Description,
		StartByte:   start,
		EndByte:     start + len(span),
	}
}

// literalClass bounds what counts as a literal when extracting multi-word
// patterns from a token's regex source; anything outside [A-Z0-9 \-+:/] is
// treated as real regex syntax.
var literalClass = regexp.MustCompile(`^[A-Za-z0-9 \-+:/]+$`)

type multiWordLiteral struct {
	text  string // upper-cased, for case-insensitive prefix comparison
	kind  string
	style string
	desc  string
}

// multiWordLiterals extracts every token pattern that, once any ^/$ anchors
// are stripped, is a literal alphanumeric-and-punctuation string containing
// at least one space -- i.e. a multi-word keyword such as
// "AVIATION COLOUR CODE:" -- and returns them longest-first so that a
// longer keyword is preferred over a shorter one that is its prefix.
func multiWordLiterals(g *Grammar) []multiWordLiteral {
	var out []multiWordLiteral
	for _, id := range g.tokenOrder() {
		def, ok := g.Tokens[id]
		if !ok || def.Pattern == "" {
			continue
		}
		body := strings.TrimPrefix(def.Pattern, "^")
		body = strings.TrimSuffix(body, "$")
		if !strings.Contains(body, " ") {
			continue
		}
		if !literalClass.MatchString(body) {
			continue
		}
		out = append(out, multiWordLiteral{
			text:  strings.ToUpper(body),
			kind:  def.ID,
			style: def.Style,
			desc:  def.Description,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].text) > len(out[j].text)
	})
	return out
}

// flattenStructure walks g.Structure depth-first and returns the sequence
// of token-kind IDs encountered, used by the multiline tokenizer to build
// an expected-kind cursor. One-of alternatives each contribute their own
// flattened kinds in order, since at tokenize time (unlike tracking time) we
// don't yet know which alternative will be chosen.
func flattenStructure(nodes []*Node) []string {
	var out []string
	var walk func(n *Node)
	walk = func(n *Node) {
		switch n.Kind {
		case NodeToken:
			out = append(out, n.TokenID)
		case NodeOneOf, NodeSequence:
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

// tokenizeMultilineLabel implements multiline label mode.
func tokenizeMultilineLabel(text string, g *Grammar) []TokenizedToken {
	literals := multiWordLiterals(g)
	expected := flattenStructure(g.Structure)
	cursor := 0

	var out []TokenizedToken
	wsSpans := whitespaceSpans(text)
	wsIdx := 0
	pos := 0

	for pos < len(text) {
		var nextWSStart, nextWSEnd int
		if wsIdx < len(wsSpans) {
			nextWSStart, nextWSEnd = wsSpans[wsIdx][0], wsSpans[wsIdx][1]
		} else {
			nextWSStart, nextWSEnd = len(text), len(text)
		}

		if pos < nextWSStart {
			// try multi-word literals first, longest-first, at this exact
			// position (they may themselves span an internal whitespace
			// run, so operate on the raw remaining text, not just this
			// whitespace-delimited span).
			if lit, n, ok := matchLiteralAt(text, pos, literals); ok {
				out = append(out, TokenizedToken{
					Text:      text[pos : pos+n],
					Kind:      lit.kind,
					Style:     lit.style,
					StartByte: pos,
					EndByte:   pos + n,
				})
				cursor = advanceCursor(expected, cursor, lit.kind)
				pos += n
				// resync whitespace index/span to new pos
				wsSpans = whitespaceSpans(text[pos:])
				for i := range wsSpans {
					wsSpans[i][0] += pos
					wsSpans[i][1] += pos
				}
				wsIdx = 0
				continue
			}

			span := text[pos:nextWSStart]
			var expectedHere []string
			if cursor < len(expected) {
				expectedHere = expected[cursor:]
			}
			def, err := MatchExpected(span, g, expectedHere)
			if err != nil {
				out = append(out, TokenizedToken{
					Text:      span,
					Kind:      KindError,
					StartByte: pos,
					EndByte:   nextWSStart,
					Error:     err.Error(),
				})
			} else {
				out = append(out, TokenizedToken{
					Text:        span,
					Kind:        def.ID,
					Style:       def.Style,
					Description: def.Description,
					StartByte:   pos,
					EndByte:     nextWSStart,
				})
				cursor = advanceCursor(expected, cursor, def.ID)
			}
			pos = nextWSStart
		}
		if wsIdx < len(wsSpans) && pos == nextWSStart {
			out = append(out, TokenizedToken{
				Text:      text[nextWSStart:nextWSEnd],
				Kind:      KindWhitespace,
				StartByte: nextWSStart,
				EndByte:   nextWSEnd,
			})
			pos = nextWSEnd
			wsIdx++
		}
	}

	return out
}

// matchLiteralAt tries every literal, longest-first, as a case-insensitive
// prefix of text starting at pos. It returns the literal, the number of
// original-text bytes consumed (so the original casing of the input is
// preserved in the emitted token), and whether a match occurred.
func matchLiteralAt(text string, pos int, literals []multiWordLiteral) (multiWordLiteral, int, bool) {
	remaining := text[pos:]
	upperRemaining := strings.ToUpper(remaining)
	for _, lit := range literals {
		if strings.HasPrefix(upperRemaining, lit.text) {
			return lit, len(lit.text), true
		}
	}
	return multiWordLiteral{}, 0, false
}

// advanceCursor moves the expected-kind cursor forward past the first
// occurrence of kind at or after cursor, skipping over intervening
// unmatched expectations. If kind does not appear in the
// remainder of expected, the cursor is left unchanged.
func advanceCursor(expected []string, cursor int, kind string) int {
	for i := cursor; i < len(expected); i++ {
		if expected[i] == kind {
			return i + 1
		}
	}
	return cursor
}
