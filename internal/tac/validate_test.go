package tac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Validate_METAR(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectValid  bool
		expectErrMsg string
	}{
		{
			name:        "complete report",
			input:       "METAR LFPG 121330Z 24015KT 9999 FEW030 18/12 Q1015",
			expectValid: true,
		},
		{
			name:        "CAVOK instead of visibility",
			input:       "METAR LFPG 121330Z 24015KT CAVOK 18/12 Q1015",
			expectValid: true,
		},
		{
			name:         "missing pressure",
			input:        "METAR LFPG 121330Z 24015KT 9999 FEW030 18/12",
			expectValid:  false,
			expectErrMsg: "Missing pressure (QNH)",
		},
		{
			name:         "missing wind",
			input:        "METAR LFPG 121330Z 9999 FEW030 18/12 Q1015",
			expectValid:  false,
			expectErrMsg: "Missing wind group",
		},
		{
			name:         "missing visibility and no CAVOK",
			input:        "METAR LFPG 121330Z 24015KT FEW030 18/12 Q1015",
			expectValid:  false,
			expectErrMsg: "Missing visibility or CAVOK",
		},
		{
			name:         "identifier must come first",
			input:        "LFPG METAR 121330Z 24015KT 9999 FEW030 18/12 Q1015",
			expectValid:  false,
			expectErrMsg: "Report type identifier must come first",
		},
		{
			name:        "NIL short-circuits required fields",
			input:       "METAR LFPG 121330Z NIL",
			expectValid: true,
		},
		{
			name:         "unknown token",
			input:        "METAR LFPG 121330Z 24015KT 9999 FEW030 18/12 Q1015 BOGUS!!",
			expectValid:  false,
			expectErrMsg: "Unknown token: BOGUS!!",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g, _ := resolvedTestGrammar(t, testMETARGrammar())
			result := Validate(tc.input, g)

			assert.Equal(tc.expectValid, result.Valid)

			if tc.expectErrMsg != "" {
				var found bool
				for _, e := range result.Errors {
					if e.Message == tc.expectErrMsg {
						found = true
						break
					}
				}
				assert.True(found, "no error %q in %v", tc.expectErrMsg, result.Errors)
			}
		})
	}
}

func Test_Validate_MissingFieldPositionIsEndOfText(t *testing.T) {
	assert := assert.New(t)

	g, _ := resolvedTestGrammar(t, testMETARGrammar())

	input := "METAR LFPG 121330Z 24015KT 9999 FEW030 18/12"
	result := Validate(input, g)

	assert.False(result.Valid)
	for _, e := range result.Errors {
		assert.Equal(len(input), e.Position)
	}
}

func testTAFGrammar() *Grammar {
	g := &Grammar{
		Name:        "taf",
		Identifiers: []string{"TAF"},
		Category:    "TAF",
		Tokens:      map[string]*TokenDef{},
	}
	addToken := func(def *TokenDef) {
		g.Tokens[def.ID] = def
		g.TokenOrder = append(g.TokenOrder, def.ID)
	}

	addToken(&TokenDef{ID: "identifier", Values: []string{"TAF"}, Style: "keyword"})
	addToken(&TokenDef{ID: "icao", Pattern: `[A-Z]{4}`, Style: "station"})
	addToken(&TokenDef{ID: "issueTime", Pattern: `\d{6}Z`, Style: "datetime"})
	addToken(&TokenDef{ID: "validity", Pattern: `\d{4}/\d{4}`, Style: "datetime"})
	addToken(&TokenDef{ID: "wind", Pattern: `(\d{5}|VRB\d{2})(G\d{2})?(KT|MPS)`, Style: "wind"})
	addToken(&TokenDef{ID: "cavok", Values: []string{"CAVOK"}, Style: "keyword"})
	addToken(&TokenDef{ID: "visibility", Pattern: `\d{4}`, Style: "visibility"})
	addToken(&TokenDef{ID: "cloud", Pattern: `(FEW|SCT|BKN|OVC)\d{3}(CB|TCU)?`, Style: "cloud"})
	addToken(&TokenDef{ID: "nsc", Values: []string{"NSC"}, Style: "keyword"})
	addToken(&TokenDef{ID: "nil", Values: []string{"NIL"}, Style: "keyword"})
	addToken(&TokenDef{ID: "cnl", Values: []string{"CNL"}, Style: "keyword"})

	g.Structure = []*Node{
		tokNode("identifier"),
		tokNode("icao"),
		tokNode("issueTime"),
		tokNode("validity"),
		tokNode("wind"),
		oneOfNode(1, 1, tokNode("visibility"), tokNode("cavok")),
		oneOfNode(1, 1, tokNodeCard("cloud", 1, 4), tokNode("nsc")),
	}

	return g
}

func Test_Validate_TAF(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectValid  bool
		expectErrMsg string
	}{
		{
			name:        "complete forecast",
			input:       "TAF LFPG 121100Z 1212/1318 24015KT 9999 SCT030",
			expectValid: true,
		},
		{
			name:        "CAVOK covers visibility and cloud",
			input:       "TAF LFPG 121100Z 1212/1318 24015KT CAVOK",
			expectValid: true,
		},
		{
			name:         "missing cloud and no NSC",
			input:        "TAF LFPG 121100Z 1212/1318 24015KT 9999",
			expectValid:  false,
			expectErrMsg: "Missing cloud group, NSC, or CAVOK",
		},
		{
			name:        "CNL needs only the header",
			input:       "TAF LFPG 121100Z 1212/1318 CNL",
			expectValid: true,
		},
		{
			name:         "CNL still needs validity period",
			input:        "TAF LFPG 121100Z CNL",
			expectValid:  false,
			expectErrMsg: "Missing validity period",
		},
		{
			name:        "NIL short-circuits everything",
			input:       "TAF LFPG 121100Z NIL",
			expectValid: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g, _ := resolvedTestGrammar(t, testTAFGrammar())
			result := Validate(tc.input, g)

			assert.Equal(tc.expectValid, result.Valid, "errors: %v", result.Errors)

			if tc.expectErrMsg != "" {
				var found bool
				for _, e := range result.Errors {
					if e.Message == tc.expectErrMsg {
						found = true
						break
					}
				}
				assert.True(found, "no error %q in %v", tc.expectErrMsg, result.Errors)
			}
		})
	}
}
