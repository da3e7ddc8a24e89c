package tacgramio

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/softwarity/tac-editor/internal/tac"
)

const nameChars = `a-zA-Z0-9_\-`

var nameRegexp = regexp.MustCompile(fmt.Sprintf(`^[%s]+$`, nameChars))

type stringSet map[string]bool

// parseGrammarData converts unmarshaled document data into a GrammarSet,
// checking every definition for internal consistency as it goes. References
// that can only be resolved across grammars (extends targets, token kinds
// inherited from a parent) are left for registry resolution.
func parseGrammarData(data topLevelGrammarData) (GrammarSet, error) {
	if len(data.Grammars) < 1 {
		return GrammarSet{}, fmt.Errorf("no grammar definitions were read")
	}

	gs := GrammarSet{Grammars: make(map[string]*tac.Grammar, len(data.Grammars))}

	for i, mg := range data.Grammars {
		name := strings.TrimSpace(mg.Name)
		if name == "" {
			return gs, fmt.Errorf("grammar %d: name is empty", i)
		}
		if !nameRegexp.MatchString(name) {
			return gs, fmt.Errorf("grammar %q: name may only contain letters, digits, underscores, and dashes", name)
		}
		if _, dupe := gs.Grammars[name]; dupe {
			return gs, fmt.Errorf("grammar %q: defined more than once", name)
		}

		g, err := mg.toGrammar()
		if err != nil {
			return gs, fmt.Errorf("grammar %q: %w", name, err)
		}

		if err := checkGrammar(g); err != nil {
			return gs, fmt.Errorf("grammar %q: %w", name, err)
		}

		gs.Grammars[name] = g
	}

	return gs, nil
}

func checkGrammar(g *tac.Grammar) error {
	if g.Extends == g.Name && g.Extends != "" {
		return fmt.Errorf("extends itself")
	}

	// a grammar that extends nothing must have every structure/template
	// token reference satisfied by its own token table; an extending grammar
	// may pull kinds from its parent, which the registry checks at resolve
	// time.
	if g.Extends == "" {
		known := make(stringSet, len(g.Tokens))
		for id := range g.Tokens {
			known[id] = true
		}

		for i, n := range g.Structure {
			if err := checkNodeRefs(n, known); err != nil {
				return fmt.Errorf("structure node %d: %w", i, err)
			}
		}

		if g.Template != nil {
			for i, f := range g.Template.Fields {
				if strings.TrimSpace(f.Label) == "" {
					return fmt.Errorf("template field %d: label is empty", i)
				}
				if f.LabelKind == "" {
					return fmt.Errorf("template field %q: label_kind is empty", f.Label)
				}
				if f.ValueKind != "" && !known[f.ValueKind] {
					return fmt.Errorf("template field %q: value kind %q is not a defined token", f.Label, f.ValueKind)
				}
			}
		}
	}

	for i, n := range g.Structure {
		if err := checkNodeShape(n); err != nil {
			return fmt.Errorf("structure node %d: %w", i, err)
		}
	}

	return nil
}

func checkNodeRefs(n *tac.Node, known stringSet) error {
	if n.Kind == tac.NodeToken {
		if !known[n.TokenID] {
			return fmt.Errorf("references undefined token %q", n.TokenID)
		}
		return nil
	}
	for i, c := range n.Children {
		if err := checkNodeRefs(c, known); err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
	}
	return nil
}

func checkNodeShape(n *tac.Node) error {
	if n.Card.Min < 0 {
		return fmt.Errorf("min cardinality %d is negative", n.Card.Min)
	}
	if n.Card.Max != tac.Infinite && n.Card.Max < n.Card.Min {
		return fmt.Errorf("max cardinality %d is below min %d", n.Card.Max, n.Card.Min)
	}
	for i, c := range n.Children {
		if err := checkNodeShape(c); err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
	}
	return nil
}
