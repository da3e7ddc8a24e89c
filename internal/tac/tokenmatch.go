package tac

import (
	"fmt"
	"strings"
)

// Match classifies one text span against a grammar's token table. It
// iterates the table in definition order; the first entry whose pattern
// matches wins, otherwise the first entry whose enumerated values contain
// text (case-insensitive) wins. If nothing matches, an error is returned
// whose message is "Unknown token: <text>".
//
// Table iteration order is not guaranteed by Go's map iteration, so callers
// that care about definition order (disambiguating overlapping patterns)
// should use MatchExpected, which is told which kinds to prefer.
func Match(text string, g *Grammar) (*TokenDef, error) {
	return matchAmong(text, g, g.tokenOrder())
}

// MatchExpected is the structure-aware token matcher: it accepts an ordered
// list of expected kind IDs (typically the next up-to-five kinds the
// Structure Tracker or the multiline-label flattening predicts) and tries
// those first, before falling back to a full-table search. This lets short
// or overlapping patterns be disambiguated by context.
func MatchExpected(text string, g *Grammar, expected []string) (*TokenDef, error) {
	tryFirst := expected
	if len(tryFirst) > 5 {
		tryFirst = tryFirst[:5]
	}

	if def, ok := matchAgainst(text, g, tryFirst); ok {
		return def, nil
	}

	return matchAmong(text, g, g.tokenOrder())
}

func matchAmong(text string, g *Grammar, order []string) (*TokenDef, error) {
	if def, ok := matchAgainst(text, g, order); ok {
		return def, nil
	}
	return nil, fmt.Errorf("Unknown token: %s", text)
}

// matchAgainst tries each kind ID in order, regex patterns first across the
// whole list, then literal-value membership across the whole list -- this
// keeps "first regex match wins, otherwise first literal-value match wins"
// from being short-circuited by visiting one kind's regex before another
// kind's regex earlier in iteration order.
func matchAgainst(text string, g *Grammar, order []string) (*TokenDef, bool) {
	for _, id := range order {
		def, ok := g.Tokens[id]
		if !ok || def.re == nil {
			continue
		}
		if def.re.MatchString(text) {
			return def, true
		}
	}
	for _, id := range order {
		def, ok := g.Tokens[id]
		if !ok || def.re != nil || len(def.Values) == 0 {
			continue
		}
		for _, v := range def.Values {
			if strings.EqualFold(v, text) {
				return def, true
			}
		}
	}
	return nil, false
}

// tokenOrder returns this grammar's token IDs in a stable definition order.
// Grammar documents are loaded with an explicit order preserved by the
// loader (see internal/tacgramio); Tokens itself is a map for O(1) lookup,
// so Grammar additionally records the order it was declared in.
func (g *Grammar) tokenOrder() []string {
	if len(g.TokenOrder) > 0 {
		return g.TokenOrder
	}
	ids := make([]string, 0, len(g.Tokens))
	for id := range g.Tokens {
		ids = append(ids, id)
	}
	return ids
}
