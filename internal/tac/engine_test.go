package tac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	eng := NewEngine(nil)
	eng.RegisterGrammar("metar", testMETARGrammar())
	warnings := eng.ResolveInheritance()
	assert.Empty(t, warnings)
	return eng
}

func Test_Engine_SetGrammarUnknownIsNoOp(t *testing.T) {
	assert := assert.New(t)

	eng := newTestEngine(t)

	assert.True(eng.SetGrammar("metar"))
	assert.False(eng.SetGrammar("bogus"))

	g, ok := eng.CurrentGrammar()
	assert.True(ok)
	assert.Equal("metar", g.Name)
}

func Test_Engine_TokenizeWithoutGrammar(t *testing.T) {
	assert := assert.New(t)

	eng := newTestEngine(t)
	assert.Nil(eng.Tokenize("METAR LFPG"))
}

func Test_Engine_GetSuggestionsAtCursor(t *testing.T) {
	assert := assert.New(t)

	eng := newTestEngine(t)

	g := testGrammarWithSuggestions()
	eng.RegisterGrammar("metar", g)
	eng.ResolveInheritance()
	assert.True(eng.SetGrammar("metar"))

	// cursor at end of "METAR LFPG " means the last token is the icao
	text := "METAR LFPG "
	sugs := eng.GetSuggestions(text, len(text), nil)

	assert.Len(sugs, 1)
	assert.Equal("datetime", sugs[0].Style)
}

func Test_Engine_GetSuggestionsCursorClamped(t *testing.T) {
	assert := assert.New(t)

	eng := newTestEngine(t)
	assert.True(eng.SetGrammar("metar"))

	// out-of-range cursors do not panic
	_ = eng.GetSuggestions("METAR", -5, nil)
	_ = eng.GetSuggestions("METAR", 9000, nil)
}

func Test_Engine_TrackAndExpected(t *testing.T) {
	assert := assert.New(t)

	eng := newTestEngine(t)
	assert.True(eng.SetGrammar("metar"))

	for _, tok := range eng.Tokenize("METAR LFPG 121330Z") {
		if tok.IsWhitespace() {
			continue
		}
		assert.True(eng.TrackToken(tok.Kind))
	}

	expected := eng.ExpectedTokenIDs()
	assert.Contains(expected, "wind")

	eng.Reset()
	expected = eng.ExpectedTokenIDs()
	assert.Contains(expected, "identifier")
}

func Test_Engine_TrackerStatePersistRestore(t *testing.T) {
	assert := assert.New(t)

	eng := newTestEngine(t)
	assert.True(eng.SetGrammar("metar"))

	assert.True(eng.TrackToken("identifier"))
	assert.True(eng.TrackToken("icao"))

	st, ok := eng.TrackerState()
	assert.True(ok)

	eng2 := newTestEngine(t)
	assert.True(eng2.SetGrammar("metar"))
	assert.True(eng2.RestoreTrackerState(st))

	assert.Contains(eng2.ExpectedTokenIDs(), "datetime")
}

func Test_Engine_ValidateDelegates(t *testing.T) {
	assert := assert.New(t)

	eng := newTestEngine(t)
	assert.True(eng.SetGrammar("metar"))

	result := eng.Validate("METAR LFPG 121330Z 24015KT 9999 FEW030 18/12 Q1015")
	assert.True(result.Valid)

	result = eng.Validate("METAR LFPG 121330Z 24015KT 9999 FEW030 18/12")
	assert.False(result.Valid)
}

func Test_Engine_DetectMessageType(t *testing.T) {
	assert := assert.New(t)

	eng := newTestEngine(t)

	name, ok := eng.DetectMessageType("METAR LFPG 121330Z")
	assert.True(ok)
	assert.Equal("metar", name)

	_, ok = eng.DetectMessageType("GARBAGE IN")
	assert.False(ok)
}
