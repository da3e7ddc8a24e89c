package tac

import "testing"

// testMETARGrammar builds a small but realistic METAR grammar for tests:
// enough of the real format to exercise pattern matching, value matching,
// structure tracking, and validation without pulling in a full grammar pack.
func testMETARGrammar() *Grammar {
	g := &Grammar{
		Name:        "metar",
		Version:     "1.0",
		Description: "Routine aviation weather report",
		Identifiers: []string{"METAR"},
		Category:    "METAR",
		Tokens:      map[string]*TokenDef{},
	}

	addToken := func(def *TokenDef) {
		g.Tokens[def.ID] = def
		g.TokenOrder = append(g.TokenOrder, def.ID)
	}

	addToken(&TokenDef{ID: "identifier", Values: []string{"METAR", "SPECI"}, Style: "keyword", Description: "Report type"})
	addToken(&TokenDef{ID: "icao", Pattern: `[A-Z]{4}`, Style: "station", Description: "ICAO station identifier"})
	addToken(&TokenDef{ID: "datetime", Pattern: `\d{6}Z`, Style: "datetime", Description: "Observation date/time"})
	addToken(&TokenDef{ID: "wind", Pattern: `(\d{5}|VRB\d{2})(G\d{2})?(KT|MPS)`, Style: "wind", Description: "Wind group"})
	addToken(&TokenDef{ID: "cavok", Values: []string{"CAVOK"}, Style: "keyword", Description: "Ceiling and visibility OK"})
	addToken(&TokenDef{ID: "visibility", Pattern: `\d{4}`, Style: "visibility", Description: "Prevailing visibility"})
	addToken(&TokenDef{ID: "cloud", Pattern: `(FEW|SCT|BKN|OVC)\d{3}(CB|TCU)?`, Style: "cloud", Description: "Cloud group"})
	addToken(&TokenDef{ID: "temperature", Pattern: `M?\d{2}/M?\d{2}`, Style: "temperature", Description: "Temperature/dewpoint"})
	addToken(&TokenDef{ID: "pressure", Pattern: `Q\d{4}`, Style: "pressure", Description: "Pressure (QNH)"})
	addToken(&TokenDef{ID: "nil", Values: []string{"NIL"}, Style: "keyword", Description: "Nil report"})

	g.Structure = []*Node{
		tokNode("identifier"),
		tokNode("icao"),
		tokNode("datetime"),
		tokNode("wind"),
		oneOfNode(1, 1, tokNode("visibility"), tokNode("cavok")),
		tokNodeCard("cloud", 0, 4),
		tokNode("temperature"),
		tokNode("pressure"),
	}

	return g
}

// resolvedTestGrammar registers g under its own name, resolves, and returns
// the resolved (pattern-compiled) grammar along with its registry.
func resolvedTestGrammar(t *testing.T, g *Grammar) (*Grammar, *Registry) {
	t.Helper()

	reg := NewRegistry()
	reg.Register(g.Name, g)
	reg.ResolveInheritance()

	resolved, ok := reg.Resolved(g.Name)
	if !ok {
		t.Fatalf("grammar %q did not resolve; warnings: %v", g.Name, reg.Warnings)
	}
	return resolved, reg
}
