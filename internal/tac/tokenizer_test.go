package tac

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Tokenize_METARSkeleton(t *testing.T) {
	assert := assert.New(t)

	g, _ := resolvedTestGrammar(t, testMETARGrammar())

	input := "METAR LFPG 121330Z 24015KT 9999 FEW030 18/12 Q1015"
	tokens := Tokenize(input, g)

	var kinds []string
	for _, tok := range tokens {
		if tok.IsWhitespace() {
			continue
		}
		kinds = append(kinds, tok.Kind)
	}

	assert.Equal([]string{
		"identifier", "icao", "datetime", "wind",
		"visibility", "cloud", "temperature", "pressure",
	}, kinds)

	// whitespace tokens sit between every pair of real tokens
	for i := 1; i < len(tokens)-1; i += 2 {
		assert.True(tokens[i].IsWhitespace(), "token %d should be whitespace", i)
	}
}

func Test_Tokenize_RoundTripsByteForByte(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "single token", input: "METAR"},
		{name: "full report", input: "METAR LFPG 121330Z 24015KT 9999 FEW030 18/12 Q1015"},
		{name: "leading and trailing space", input: "  METAR LFPG  "},
		{name: "tabs and newlines", input: "METAR\tLFPG\n121330Z"},
		{name: "unknown tokens preserved", input: "METAR ??? Q1015"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g, _ := resolvedTestGrammar(t, testMETARGrammar())
			tokens := Tokenize(tc.input, g)

			var sb strings.Builder
			for _, tok := range tokens {
				// byte offsets must agree with the text
				assert.Equal(tok.Text, tc.input[tok.StartByte:tok.EndByte])
				sb.WriteString(tok.Text)
			}
			assert.Equal(tc.input, sb.String())
		})
	}
}

func Test_Tokenize_UnknownTokenFlagged(t *testing.T) {
	assert := assert.New(t)

	g, _ := resolvedTestGrammar(t, testMETARGrammar())
	tokens := Tokenize("METAR ?????", g)

	assert.Len(tokens, 3)
	assert.Equal(KindError, tokens[2].Kind)
	assert.Equal("Unknown token: ?????", tokens[2].Error)
}

func Test_Tokenize_EveryTokenHasAKind(t *testing.T) {
	assert := assert.New(t)

	g, _ := resolvedTestGrammar(t, testMETARGrammar())
	tokens := Tokenize("METAR LFPG  ??? \n Q1015", g)

	for i, tok := range tokens {
		assert.NotEmpty(tok.Kind, "token %d has no kind", i)
		if strings.TrimSpace(tok.Text) == "" && tok.Text != "" {
			assert.Equal(KindWhitespace, tok.Kind, "token %d", i)
		} else {
			assert.NotEqual(KindWhitespace, tok.Kind, "token %d", i)
		}
	}
}

func testSIGMETMultilineGrammar() *Grammar {
	g := &Grammar{
		Name:        "sigmet-ws",
		Identifiers: []string{"SIGMET"},
		Category:    "SIGMET",
		Multiline:   true,
		Tokens:      map[string]*TokenDef{},
	}
	addToken := func(def *TokenDef) {
		g.Tokens[def.ID] = def
		g.TokenOrder = append(g.TokenOrder, def.ID)
	}

	addToken(&TokenDef{ID: "fir", Pattern: `[A-Z]{4}`, Style: "station"})
	addToken(&TokenDef{ID: "identifier", Values: []string{"SIGMET"}, Style: "keyword"})
	addToken(&TokenDef{ID: "seq", Pattern: `\d{1,2}`, Style: "number"})
	addToken(&TokenDef{ID: "validLabel", Pattern: `VALID`, Style: "keyword"})
	addToken(&TokenDef{ID: "colourCode", Pattern: `AVIATION COLOUR CODE: [A-Z]+`, Style: "keyword"})
	addToken(&TokenDef{ID: "period", Pattern: `\d{6}/\d{6}`, Style: "datetime"})

	g.Structure = []*Node{
		tokNode("fir"),
		tokNode("identifier"),
		tokNode("seq"),
		tokNode("validLabel"),
		tokNode("period"),
	}

	return g
}

func Test_Tokenize_MultilineLabelMode(t *testing.T) {
	assert := assert.New(t)

	g, _ := resolvedTestGrammar(t, testSIGMETMultilineGrammar())

	input := "LFFF SIGMET 3 VALID 121200/121600"
	tokens := Tokenize(input, g)

	var kinds []string
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Text)
		if tok.IsWhitespace() {
			continue
		}
		kinds = append(kinds, tok.Kind)
	}

	assert.Equal(input, sb.String())
	assert.Equal([]string{"fir", "identifier", "seq", "validLabel", "period"}, kinds)
}

func Test_MultiWordLiterals_ExtractedLongestFirst(t *testing.T) {
	assert := assert.New(t)

	g := &Grammar{
		Name:   "lit",
		Tokens: map[string]*TokenDef{},
	}
	g.Tokens["short"] = &TokenDef{ID: "short", Pattern: `COLOUR CODE`}
	g.Tokens["long"] = &TokenDef{ID: "long", Pattern: `AVIATION COLOUR CODE: RED`}
	g.Tokens["nonliteral"] = &TokenDef{ID: "nonliteral", Pattern: `\d{4} KT`}
	g.Tokens["oneword"] = &TokenDef{ID: "oneword", Pattern: `VALID`}
	g.TokenOrder = []string{"short", "long", "nonliteral", "oneword"}

	lits := multiWordLiterals(g)

	assert.Len(lits, 2)
	assert.Equal("long", lits[0].kind)
	assert.Equal("short", lits[1].kind)
}
