package tac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Registry_InheritanceMerge(t *testing.T) {
	assert := assert.New(t)

	parent := &Grammar{
		Name:       "parent",
		Tokens:     map[string]*TokenDef{"a": {ID: "a", Pattern: `A+`}},
		TokenOrder: []string{"a"},
		Structure:  []*Node{tokNode("a")},
	}
	child := &Grammar{
		Name:       "child",
		Extends:    "parent",
		Tokens:     map[string]*TokenDef{"b": {ID: "b", Pattern: `B+`}},
		TokenOrder: []string{"b"},
	}

	reg := NewRegistry()
	reg.Register("parent", parent)
	reg.Register("child", child)
	reg.ResolveInheritance()

	resolved, ok := reg.Resolved("child")
	assert.True(ok)
	assert.Contains(resolved.Tokens, "a")
	assert.Contains(resolved.Tokens, "b")
	assert.Len(resolved.Structure, 1)
	assert.Equal("a", resolved.Structure[0].TokenID)
	assert.Empty(resolved.Extends)
}

func Test_Registry_ChildOverridesParent(t *testing.T) {
	assert := assert.New(t)

	parent := &Grammar{
		Name:        "parent",
		Description: "parent desc",
		Tokens: map[string]*TokenDef{
			"a": {ID: "a", Pattern: `A+`, Description: "parent a"},
		},
		TokenOrder: []string{"a"},
		Structure:  []*Node{tokNode("a")},
	}
	child := &Grammar{
		Name:    "child",
		Extends: "parent",
		Tokens: map[string]*TokenDef{
			"a": {ID: "a", Pattern: `AA+`, Description: "child a"},
		},
		TokenOrder: []string{"a"},
		Structure:  []*Node{tokNode("a"), tokNode("a")},
	}

	reg := NewRegistry()
	reg.Register("parent", parent)
	reg.Register("child", child)
	reg.ResolveInheritance()

	resolved, ok := reg.Resolved("child")
	assert.True(ok)
	assert.Equal("child a", resolved.Tokens["a"].Description)
	assert.Len(resolved.Structure, 2)
	assert.Equal("parent desc", resolved.Description)
}

func Test_Registry_ResolveIsIdempotent(t *testing.T) {
	assert := assert.New(t)

	parent := &Grammar{
		Name:       "parent",
		Tokens:     map[string]*TokenDef{"a": {ID: "a", Pattern: `A+`}},
		TokenOrder: []string{"a"},
		Structure:  []*Node{tokNode("a")},
	}
	child := &Grammar{
		Name:       "child",
		Extends:    "parent",
		Tokens:     map[string]*TokenDef{"b": {ID: "b", Pattern: `B+`}},
		TokenOrder: []string{"b"},
	}

	reg := NewRegistry()
	reg.Register("parent", parent)
	reg.Register("child", child)
	reg.ResolveInheritance()

	first, _ := reg.Resolved("child")

	reg.ResolveInheritance()
	second, ok := reg.Resolved("child")

	assert.True(ok)
	assert.Equal(first.TokenOrder, second.TokenOrder)
	assert.Equal(len(first.Tokens), len(second.Tokens))
	assert.Equal(len(first.Structure), len(second.Structure))
}

func Test_Registry_ReregisterReplaces(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry()
	reg.Register("g", &Grammar{
		Name:       "g",
		Tokens:     map[string]*TokenDef{"a": {ID: "a", Pattern: `A+`}},
		TokenOrder: []string{"a"},
	})
	reg.Register("g", &Grammar{
		Name:       "g",
		Tokens:     map[string]*TokenDef{"b": {ID: "b", Pattern: `B+`}},
		TokenOrder: []string{"b"},
	})
	reg.ResolveInheritance()

	resolved, ok := reg.Resolved("g")
	assert.True(ok)
	assert.NotContains(resolved.Tokens, "a")
	assert.Contains(resolved.Tokens, "b")
}

func Test_Registry_ExtendsCycleLeavesUnresolved(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry()
	reg.Register("x", &Grammar{Name: "x", Extends: "y"})
	reg.Register("y", &Grammar{Name: "y", Extends: "x"})
	reg.ResolveInheritance()

	_, xOK := reg.Resolved("x")
	_, yOK := reg.Resolved("y")
	assert.False(xOK)
	assert.False(yOK)
	assert.NotEmpty(reg.Warnings)
}

func Test_Registry_DanglingExtendsLeavesUnresolved(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry()
	reg.Register("orphan", &Grammar{Name: "orphan", Extends: "ghost"})
	reg.ResolveInheritance()

	_, ok := reg.Resolved("orphan")
	assert.False(ok)
	assert.NotEmpty(reg.Warnings)
}

func Test_Registry_SetCurrentUnknownIsNoOp(t *testing.T) {
	assert := assert.New(t)

	g := testMETARGrammar()
	_, reg := resolvedTestGrammar(t, g)

	assert.True(reg.SetCurrent("metar"))
	assert.False(reg.SetCurrent("nonexistent"))

	cur, ok := reg.Current()
	assert.True(ok)
	assert.Equal("metar", cur.Name)
}

func Test_Registry_Detect(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		expectName string
		expectOK   bool
	}{
		{name: "first word identifier", input: "METAR LFPG 121330Z", expectName: "metar", expectOK: true},
		{name: "lowercase input normalized", input: "metar lfpg", expectName: "metar", expectOK: true},
		{name: "SIGMET identifier is second word after FIR", input: "LFFF SIGMET 1 VALID", expectName: "sigmet-ws", expectOK: true},
		{name: "no match", input: "HELLO WORLD", expectOK: false},
		{name: "empty input", input: "", expectOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			reg := NewRegistry()
			reg.Register("metar", testMETARGrammar())
			reg.Register("sigmet-ws", testSIGMETMultilineGrammar())
			reg.ResolveInheritance()

			name, ok := reg.Detect(tc.input)
			assert.Equal(tc.expectOK, ok)
			if tc.expectOK {
				assert.Equal(tc.expectName, name)
			}
		})
	}
}

func Test_Registry_DeregisterRemoves(t *testing.T) {
	assert := assert.New(t)

	_, reg := resolvedTestGrammar(t, testMETARGrammar())
	assert.True(reg.SetCurrent("metar"))

	reg.Deregister("metar")

	_, ok := reg.Resolved("metar")
	assert.False(ok)
	_, ok = reg.Current()
	assert.False(ok)
}
