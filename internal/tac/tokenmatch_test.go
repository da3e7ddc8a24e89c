package tac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Match(t *testing.T) {
	testCases := []struct {
		name       string
		text       string
		expectKind string
		expectErr  bool
	}{
		{name: "pattern match", text: "121330Z", expectKind: "datetime"},
		{name: "value match is case-insensitive", text: "metar", expectKind: "identifier"},
		{name: "value match exact", text: "CAVOK", expectKind: "cavok"},
		{name: "patterns are anchored", text: "X121330ZX", expectErr: true},
		{name: "no match", text: "!!!", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g, _ := resolvedTestGrammar(t, testMETARGrammar())
			def, err := Match(tc.text, g)

			if tc.expectErr {
				assert.Error(err)
				assert.Equal("Unknown token: "+tc.text, err.Error())
				return
			}

			assert.NoError(err)
			assert.Equal(tc.expectKind, def.ID)
		})
	}
}

func Test_Match_DefinitionOrderWins(t *testing.T) {
	assert := assert.New(t)

	// two patterns that both match "1234"; the one defined first wins
	g := &Grammar{
		Name: "overlap",
		Tokens: map[string]*TokenDef{
			"first":  {ID: "first", Pattern: `\d{4}`},
			"second": {ID: "second", Pattern: `\d+`},
		},
		TokenOrder: []string{"first", "second"},
	}
	resolved, _ := resolvedTestGrammar(t, g)

	def, err := Match("1234", resolved)
	assert.NoError(err)
	assert.Equal("first", def.ID)
}

func Test_MatchExpected_PrefersExpectedKinds(t *testing.T) {
	assert := assert.New(t)

	// "1234" is ambiguous between visibilityish and groupish; the expected
	// cursor disambiguates toward the later definition
	g := &Grammar{
		Name: "ambiguous",
		Tokens: map[string]*TokenDef{
			"visibility": {ID: "visibility", Pattern: `\d{4}`},
			"group":      {ID: "group", Pattern: `\d{4}`},
		},
		TokenOrder: []string{"visibility", "group"},
	}
	resolved, _ := resolvedTestGrammar(t, g)

	def, err := MatchExpected("1234", resolved, []string{"group"})
	assert.NoError(err)
	assert.Equal("group", def.ID)
}

func Test_MatchExpected_FallsBackToFullTable(t *testing.T) {
	assert := assert.New(t)

	g, _ := resolvedTestGrammar(t, testMETARGrammar())

	// expected kinds cannot match the text; the full table still can
	def, err := MatchExpected("Q1015", g, []string{"icao", "datetime"})
	assert.NoError(err)
	assert.Equal("pressure", def.ID)
}

func Test_MatchExpected_OnlyTriesFirstFiveExpected(t *testing.T) {
	assert := assert.New(t)

	g := &Grammar{
		Name: "many",
		Tokens: map[string]*TokenDef{
			"a": {ID: "a", Pattern: `AAAA`},
			"b": {ID: "b", Pattern: `BBBB`},
			"c": {ID: "c", Pattern: `CCCC`},
			"d": {ID: "d", Pattern: `DDDD`},
			"e": {ID: "e", Pattern: `EEEE`},
			"x": {ID: "x", Pattern: `\d{4}`},
			"y": {ID: "y", Pattern: `\d{4}`},
		},
		TokenOrder: []string{"a", "b", "c", "d", "e", "x", "y"},
	}
	resolved, _ := resolvedTestGrammar(t, g)

	// y is sixth in the expected list, so the expected pass skips it and the
	// full-table fallback resolves to x by definition order instead
	def, err := MatchExpected("1234", resolved, []string{"a", "b", "c", "d", "e", "y"})
	assert.NoError(err)
	assert.Equal("x", def.ID)
}
