package tac

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testGrammarWithSuggestions() *Grammar {
	g := testMETARGrammar()

	g.Suggestions = &SuggestionBlock{
		Declarations: []SuggestionDecl{
			{ID: "sug-datetime", Ref: "datetime", Pattern: `\d{6}Z`, Description: "Observation time"},
			{ID: "sug-wind-calm", Ref: "wind", Text: "00000KT", Description: "Calm wind"},
			{ID: "sug-wind-var", Ref: "wind", Text: "VRB02KT", Description: "Variable wind", Editable: &EditableRange{Start: 3, End: 5}},
			{ID: "sug-cb", Ref: "cloud", Text: "CB", Description: "Cumulonimbus", AppendToPrevious: true},
			{ID: "sug-cloud-menu", Category: "Clouds", Children: []SuggestionDecl{
				{ID: "sug-few", Ref: "cloud", Text: "FEW030", Description: "Few clouds"},
				{ID: "sug-sct", Ref: "cloud", Text: "SCT030", Description: "Scattered clouds"},
			}},
		},
		After: map[string][]AfterEntry{
			"icao": {
				{DeclRef: "sug-datetime"},
			},
			"datetime": {
				{DeclRef: "sug-wind-calm"},
				{DeclRef: "sug-wind-var"},
			},
			"cloud": {
				{DeclRef: "sug-cb"},
				{DeclRef: "sug-cloud-menu"},
			},
			"visibility": {
				{Inline: &SuggestionDecl{ID: "legacy-few", Ref: "cloud", Text: "FEW030", Description: "Few clouds (legacy)"}},
			},
		},
	}

	return g
}

func Test_Builder_InitialSuggestionsFromGrammars(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry()
	reg.Register("metar", testMETARGrammar())
	reg.ResolveInheritance()

	b := NewBuilder(reg, nil)
	sugs := b.InitialSuggestions(nil)

	assert.Len(sugs, 1)
	assert.Equal("METAR", sugs[0].Text)
	assert.Equal("Routine aviation weather report", sugs[0].Description)
}

func Test_Builder_InitialSuggestionsFromSupportedTypes(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry()
	reg.ResolveInheritance()
	b := NewBuilder(reg, nil)

	sugs := b.InitialSuggestions([]string{"TAF", "VAA", "TAF"})

	assert.Len(sugs, 2)
	assert.Equal("TAF", sugs[0].Text)
	assert.Equal("Terminal aerodrome forecast", sugs[0].Description)
	assert.Equal("VAA", sugs[1].Text)
}

func Test_Builder_SIGMETSubmenuStructure(t *testing.T) {
	assert := assert.New(t)

	wsGrammar := testSIGMETMultilineGrammar()
	wsGrammar.Category = "WS"
	wsGrammar.Description = "Significant weather SIGMET"

	reg := NewRegistry()
	reg.Register("sigmet-ws", wsGrammar)
	reg.ResolveInheritance()
	b := NewBuilder(reg, nil)

	sugs := b.InitialSuggestions([]string{"SIGMET"})

	assert.Len(sugs, 1)
	top := sugs[0]
	assert.Equal("SIGMET", top.Category)
	assert.Len(top.Children, 1)

	catMenu := top.Children[0]
	assert.Equal("WS", catMenu.Category)
	assert.NotEmpty(catMenu.Children)
	for _, fir := range catMenu.Children {
		assert.NotNil(fir.Editable)
		assert.Equal(0, fir.Editable.Start)
		assert.Equal(4, fir.Editable.End)
		assert.Equal("WS", fir.SwitchGrammar)
	}
}

func Test_Builder_SuggestionsAfterKind(t *testing.T) {
	assert := assert.New(t)

	g := testGrammarWithSuggestions()
	_, reg := resolvedTestGrammar(t, g)
	reg.SetCurrent("metar")

	clock := FixedClock(time.Date(2024, 1, 12, 13, 20, 0, 0, time.UTC))
	b := NewBuilder(reg, clock)

	sugs := b.SuggestionsAfter("icao", "LFPG", nil)

	assert.Len(sugs, 1)
	// datetime-styled declaration gets its text from the clock
	assert.Equal("121330Z", sugs[0].Text)
	assert.Equal("datetime", sugs[0].Style)
}

func Test_Builder_EditableSortsFirst(t *testing.T) {
	assert := assert.New(t)

	g := testGrammarWithSuggestions()
	_, reg := resolvedTestGrammar(t, g)
	reg.SetCurrent("metar")
	b := NewBuilder(reg, nil)

	sugs := b.SuggestionsAfter("datetime", "", nil)

	assert.Len(sugs, 2)
	assert.Equal("VRB02KT", sugs[0].Text)
	assert.NotNil(sugs[0].Editable)
	assert.Equal("00000KT", sugs[1].Text)
}

func Test_Builder_CBNotReAppended(t *testing.T) {
	testCases := []struct {
		name     string
		prevText string
		expectCB bool
	}{
		{name: "plain cloud offers CB", prevText: "FEW030", expectCB: true},
		{name: "cloud already ending in CB does not", prevText: "FEW030CB", expectCB: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := testGrammarWithSuggestions()
			_, reg := resolvedTestGrammar(t, g)
			reg.SetCurrent("metar")
			b := NewBuilder(reg, nil)

			sugs := b.SuggestionsAfter("cloud", tc.prevText, nil)

			var hasCB bool
			for _, s := range sugs {
				if s.Text == "CB" {
					hasCB = true
				}
			}
			assert.Equal(tc.expectCB, hasCB)
		})
	}
}

func Test_Builder_CategoryChildrenExpanded(t *testing.T) {
	assert := assert.New(t)

	g := testGrammarWithSuggestions()
	_, reg := resolvedTestGrammar(t, g)
	reg.SetCurrent("metar")
	b := NewBuilder(reg, nil)

	sugs := b.SuggestionsAfter("cloud", "FEW030", nil)

	var menu *Suggestion
	for i := range sugs {
		if sugs[i].Category == "Clouds" {
			menu = &sugs[i]
		}
	}
	assert.NotNil(menu)
	assert.Len(menu.Children, 2)
	assert.Equal("FEW030", menu.Children[0].Text)
}

func Test_Builder_LegacyInlineEntries(t *testing.T) {
	assert := assert.New(t)

	g := testGrammarWithSuggestions()
	_, reg := resolvedTestGrammar(t, g)
	reg.SetCurrent("metar")
	b := NewBuilder(reg, nil)

	sugs := b.SuggestionsAfter("visibility", "9999", nil)

	assert.Len(sugs, 1)
	assert.Equal("FEW030", sugs[0].Text)
	assert.Equal("Few clouds (legacy)", sugs[0].Description)
	// the inline entry's ref still resolves a style from the token table
	assert.Equal("cloud", sugs[0].Style)
}

func Test_Builder_NoGrammarFallsBackToInitial(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry()
	reg.Register("metar", testMETARGrammar())
	reg.ResolveInheritance()
	b := NewBuilder(reg, nil)

	// no SetCurrent: any kind yields the initial identifier list
	sugs := b.SuggestionsAfter("", "", nil)

	assert.Len(sugs, 1)
	assert.Equal("METAR", sugs[0].Text)
}

func Test_Builder_TemplateSuggestions(t *testing.T) {
	assert := assert.New(t)

	g := testVAAGrammar()
	g.Template.Fields[0].SuggestionRefs = []string{"sug-dtg"}
	g.Template.Fields[1].Placeholder = "VAAC CENTRE"
	g.Suggestions = &SuggestionBlock{
		Declarations: []SuggestionDecl{
			{ID: "sug-dtg", Ref: "dtg", Pattern: `\d{8}/\d{4}Z`, Description: "Advisory date/time"},
		},
	}

	_, reg := resolvedTestGrammar(t, g)
	reg.SetCurrent("vaa")

	clock := FixedClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	b := NewBuilder(reg, clock)

	dtgSugs := b.TemplateSuggestions("dtgLabel")
	assert.Len(dtgSugs, 1)
	assert.Equal("20240115/1200Z", dtgSugs[0].Text)

	vaacSugs := b.TemplateSuggestions("vaacLabel")
	assert.Len(vaacSugs, 1)
	assert.Equal("VAAC CENTRE", vaacSugs[0].Placeholder)
}
