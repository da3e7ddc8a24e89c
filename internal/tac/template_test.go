package tac

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testVAAGrammar() *Grammar {
	g := &Grammar{
		Name:         "vaa",
		Identifiers:  []string{"VA ADVISORY"},
		Category:     "VAA",
		TemplateMode: true,
		Tokens:       map[string]*TokenDef{},
	}
	addToken := func(def *TokenDef) {
		g.Tokens[def.ID] = def
		g.TokenOrder = append(g.TokenOrder, def.ID)
	}

	addToken(&TokenDef{ID: "identifier", Pattern: `VA ADVISORY`, Style: "keyword"})
	addToken(&TokenDef{ID: "dtgLabel", Pattern: `DTG:`, Style: "label"})
	addToken(&TokenDef{ID: "dtg", Pattern: `\d{8}/\d{4}Z`, Style: "datetime"})
	addToken(&TokenDef{ID: "vaacLabel", Pattern: `VAAC:`, Style: "label"})
	addToken(&TokenDef{ID: "vaac", Pattern: `[A-Z ]+`, Style: "value"})
	addToken(&TokenDef{ID: "volcanoLabel", Pattern: `VOLCANO:`, Style: "label"})
	addToken(&TokenDef{ID: "volcano", Pattern: `[A-Z0-9 ]+`, Style: "value"})

	g.Template = &TemplateDef{
		Fields: []TemplateField{
			{Label: "DTG:", LabelKind: "dtgLabel", ValueKind: "dtg", Required: true},
			{Label: "VAAC:", LabelKind: "vaacLabel", ValueKind: "vaac", Required: true},
			{Label: "VOLCANO:", LabelKind: "volcanoLabel", ValueKind: "volcano", Required: true, Multiline: true},
		},
	}

	return g
}

func Test_Template_GenerateText(t *testing.T) {
	assert := assert.New(t)

	g, _ := resolvedTestGrammar(t, testVAAGrammar())

	state := InitializeTemplate(g, "VA ADVISORY")
	state.Values[0] = "20240115/1200Z"
	state.Values[1] = "TOULOUSE"
	state.Values[2] = "ETNA 211060"

	text := state.GenerateText()

	// label column width is max(len(label))+2 = len("VOLCANO:")+2 = 10
	lines := strings.Split(text, "\n")
	assert.Len(lines, 4)
	assert.Equal("VA ADVISORY", lines[0])
	assert.Equal("DTG:      20240115/1200Z", lines[1])
	assert.Equal("VAAC:     TOULOUSE", lines[2])
	assert.Equal("VOLCANO:  ETNA 211060", lines[3])
}

func Test_Template_ParseGenerateRoundTrip(t *testing.T) {
	testCases := []struct {
		name          string
		values        []string
		continuations [][]string
	}{
		{
			name:   "simple values",
			values: []string{"20240115/1200Z", "TOULOUSE", "ETNA 211060"},
		},
		{
			name:   "empty field retained",
			values: []string{"20240115/1200Z", "", "ETNA 211060"},
		},
		{
			name:   "continuation lines",
			values: []string{"20240115/1200Z", "TOULOUSE", "ETNA 211060"},
			continuations: [][]string{
				nil,
				nil,
				{"PSN N3744 E01500", "ITALY"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g, _ := resolvedTestGrammar(t, testVAAGrammar())

			state := InitializeTemplate(g, "VA ADVISORY")
			copy(state.Values, tc.values)
			for i := range tc.continuations {
				state.Continuations[i] = tc.continuations[i]
			}

			text := state.GenerateText()

			parsed := InitializeTemplate(g, "")
			parsed.ParseText(text)

			assert.Equal("VA ADVISORY", parsed.Identifier)
			assert.Equal(state.Values, parsed.Values)
			for i := range state.Continuations {
				assert.Equal(len(state.Continuations[i]), len(parsed.Continuations[i]), "field %d continuations", i)
				for j := range state.Continuations[i] {
					assert.Equal(state.Continuations[i][j], parsed.Continuations[i][j])
				}
			}
		})
	}
}

func Test_Template_FocusNavigationClamps(t *testing.T) {
	assert := assert.New(t)

	g, _ := resolvedTestGrammar(t, testVAAGrammar())
	state := InitializeTemplate(g, "VA ADVISORY")

	assert.Equal(0, state.Focus)
	assert.Equal(0, state.FocusPrevious())

	assert.Equal(1, state.FocusNext())
	assert.Equal(2, state.FocusNext())
	assert.Equal(2, state.FocusNext())

	assert.Equal(1, state.FocusPrevious())
	assert.Equal(0, state.FocusPrevious())
	assert.Equal(0, state.FocusPrevious())
}

func Test_Template_TokenizeTemplateMode(t *testing.T) {
	assert := assert.New(t)

	g, _ := resolvedTestGrammar(t, testVAAGrammar())

	text := "VA ADVISORY\nDTG:      20240115/1200Z\nVAAC:     TOULOUSE"
	tokens := Tokenize(text, g)

	// byte-for-byte round trip holds in template mode too
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Text)
	}
	assert.Equal(text, sb.String())

	var kinds []string
	for _, tok := range tokens {
		if tok.IsWhitespace() {
			continue
		}
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal([]string{"identifier", "dtgLabel", "dtg", "vaacLabel", "vaac"}, kinds)
}

func Test_Template_TokenizeContinuationLine(t *testing.T) {
	assert := assert.New(t)

	g, _ := resolvedTestGrammar(t, testVAAGrammar())

	text := "VA ADVISORY\nVOLCANO:  ETNA 211060\n          PSN N3744 E01500"
	tokens := Tokenize(text, g)

	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Text)
	}
	assert.Equal(text, sb.String())

	// the continuation line's value is attributed to the volcano field
	var lastValueKind string
	for _, tok := range tokens {
		if !tok.IsWhitespace() && tok.Kind != "identifier" && tok.Kind != "volcanoLabel" {
			lastValueKind = tok.Kind
		}
	}
	assert.Equal("volcano", lastValueKind)
}

func Test_WrapContinuation(t *testing.T) {
	assert := assert.New(t)

	short := WrapContinuation("SHORT", 20)
	assert.Equal([]string{"SHORT"}, short)

	long := WrapContinuation("OBS VA CLD SFC/FL200 N3744 E01500 MOV SE 15KT EXTENDING FURTHER", 30)
	assert.True(len(long) > 1)
	for _, line := range long {
		assert.LessOrEqual(len(line), 30)
	}
}
