package tac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// node-builder helpers for tests; cardinality defaults to [1,1].
func tokNode(id string) *Node {
	return &Node{Kind: NodeToken, TokenID: id, Card: Cardinality{Min: 1, Max: 1}}
}

func tokNodeCard(id string, min, max int) *Node {
	return &Node{Kind: NodeToken, TokenID: id, Card: Cardinality{Min: min, Max: max}}
}

func oneOfNode(min, max int, children ...*Node) *Node {
	return &Node{Kind: NodeOneOf, Card: Cardinality{Min: min, Max: max}, Children: children}
}

func seqNode(min, max int, children ...*Node) *Node {
	return &Node{Kind: NodeSequence, Card: Cardinality{Min: min, Max: max}, Children: children}
}

func grammarWithStructure(nodes ...*Node) *Grammar {
	g := &Grammar{
		Name:      "test",
		Tokens:    map[string]*TokenDef{},
		Structure: nodes,
	}
	var addTok func(n *Node)
	addTok = func(n *Node) {
		if n.Kind == NodeToken {
			if _, ok := g.Tokens[n.TokenID]; !ok {
				g.Tokens[n.TokenID] = &TokenDef{ID: n.TokenID}
				g.TokenOrder = append(g.TokenOrder, n.TokenID)
			}
			return
		}
		for _, c := range n.Children {
			addTok(c)
		}
	}
	for _, n := range nodes {
		addTok(n)
	}
	return g
}

func Test_Tracker_LookaheadPastOptional(t *testing.T) {
	assert := assert.New(t)

	// root sequence A B? C
	g := grammarWithStructure(
		tokNode("A"),
		tokNodeCard("B", 0, 1),
		tokNode("C"),
	)
	tr := NewTracker(g)

	assert.True(tr.TryMatch("A"))

	expected := tr.GetExpectedTokenIDs()
	assert.True(expected.Has("B"))
	assert.True(expected.Has("C"))
	assert.False(expected.Has("A"))

	// C is legal even though B has not matched; it advances past B
	assert.True(tr.TryMatch("C"))
	assert.False(tr.TryMatch("B"))
}

func Test_Tracker_RepeatableOneOfNewIteration(t *testing.T) {
	assert := assert.New(t)

	// one-of {X, Y} with cardinality [1, inf)
	g := grammarWithStructure(
		oneOfNode(1, Infinite, tokNode("X"), tokNode("Y")),
	)
	tr := NewTracker(g)

	assert.True(tr.TryMatch("X"))

	expected := tr.GetExpectedTokenIDs()
	assert.True(expected.Has("X"))
	assert.True(expected.Has("Y"))

	assert.True(tr.TryMatch("Y"))
	assert.Equal(2, tr.state.Counts[rootPath(0)])
	assert.Equal(1, tr.state.Choices[rootPath(0)])
}

func Test_Tracker_FailedMatchLeavesStateUnchanged(t *testing.T) {
	assert := assert.New(t)

	g := grammarWithStructure(
		tokNode("A"),
		tokNode("B"),
	)
	tr := NewTracker(g)

	assert.True(tr.TryMatch("A"))
	before := tr.State()

	// Z is not even a kind in the grammar; B-before-A ordering issues do not
	// apply since B is expected, so feed something totally illegal
	assert.False(tr.TryMatch("Z"))

	after := tr.State()
	assert.Equal(before.Counts, after.Counts)
	assert.Equal(before.Choices, after.Choices)
	assert.Equal(before.CurrentIndex, after.CurrentIndex)
}

func Test_Tracker_ExpectedIsSubsetOfGrammarKinds(t *testing.T) {
	assert := assert.New(t)

	g := grammarWithStructure(
		tokNode("A"),
		oneOfNode(0, 1, tokNode("B"), tokNode("C")),
		seqNode(1, Infinite, tokNode("D"), tokNodeCard("E", 0, 1)),
	)
	tr := NewTracker(g)

	kinds := map[string]bool{}
	for _, id := range g.TokenKindIDs() {
		kinds[id] = true
	}

	for _, feed := range []string{"A", "B", "D"} {
		for _, id := range tr.GetExpectedTokenIDs().Elements() {
			assert.True(kinds[id], "expected kind %q is not in the grammar", id)
		}
		assert.True(tr.TryMatch(feed))
	}
}

func Test_Tracker_FullValidMessageMatches(t *testing.T) {
	testCases := []struct {
		name  string
		nodes []*Node
		feed  []string
	}{
		{
			name:  "flat sequence",
			nodes: []*Node{tokNode("A"), tokNode("B"), tokNode("C")},
			feed:  []string{"A", "B", "C"},
		},
		{
			name: "optional in middle skipped",
			nodes: []*Node{
				tokNode("A"),
				tokNodeCard("B", 0, 1),
				tokNode("C"),
			},
			feed: []string{"A", "C"},
		},
		{
			name: "repeated token",
			nodes: []*Node{
				tokNode("A"),
				tokNodeCard("B", 1, 3),
				tokNode("C"),
			},
			feed: []string{"A", "B", "B", "C"},
		},
		{
			name: "one-of picks an alternative",
			nodes: []*Node{
				tokNode("A"),
				oneOfNode(1, 1, tokNode("B"), tokNode("C")),
				tokNode("D"),
			},
			feed: []string{"A", "C", "D"},
		},
		{
			name: "repeatable sequence iterates",
			nodes: []*Node{
				tokNode("A"),
				seqNode(1, Infinite, tokNode("B"), tokNode("C")),
				tokNode("D"),
			},
			feed: []string{"A", "B", "C", "B", "C", "D"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := grammarWithStructure(tc.nodes...)
			tr := NewTracker(g)

			for i, kind := range tc.feed {
				expected := tr.GetExpectedTokenIDs()
				assert.True(expected.Has(kind), "token %d (%q) not in expected set %v", i, kind, expected.Elements())
				assert.True(tr.TryMatch(kind), "token %d (%q) did not match", i, kind)
			}

			// every root node must have its minimum satisfied
			for i, n := range g.Structure {
				count := tr.state.Counts[rootPath(i)]
				assert.True(count >= n.Card.Min || effectivelyOptional(n), "root node %d min unsatisfied", i)
			}
		})
	}
}

func Test_Tracker_SequenceCompletionCount(t *testing.T) {
	assert := assert.New(t)

	// sequence (B C) [1, inf) completes once per full iteration
	g := grammarWithStructure(
		seqNode(1, Infinite, tokNode("B"), tokNode("C")),
	)
	tr := NewTracker(g)

	assert.True(tr.TryMatch("B"))
	assert.Equal(0, tr.state.Counts[rootPath(0)])

	assert.True(tr.TryMatch("C"))
	assert.Equal(1, tr.state.Counts[rootPath(0)])

	// next iteration
	assert.True(tr.TryMatch("B"))
	assert.True(tr.TryMatch("C"))
	assert.Equal(2, tr.state.Counts[rootPath(0)])
}

func Test_Tracker_ResetClearsEverything(t *testing.T) {
	assert := assert.New(t)

	g := grammarWithStructure(tokNode("A"), tokNode("B"))
	tr := NewTracker(g)

	assert.True(tr.TryMatch("A"))
	assert.True(tr.TryMatch("B"))

	tr.Reset()
	assert.Empty(tr.state.Counts)
	assert.Empty(tr.state.Choices)
	assert.Zero(tr.state.CurrentIndex)
	assert.True(tr.TryMatch("A"))
}

func Test_Tracker_StateRoundTrip(t *testing.T) {
	assert := assert.New(t)

	g := grammarWithStructure(tokNode("A"), tokNodeCard("B", 1, 2), tokNode("C"))
	tr := NewTracker(g)

	assert.True(tr.TryMatch("A"))
	assert.True(tr.TryMatch("B"))

	snapshot := tr.State()

	tr2 := NewTracker(g)
	tr2.SetState(snapshot)

	assert.ElementsMatch(tr.GetExpectedTokenIDs().Elements(), tr2.GetExpectedTokenIDs().Elements())
	assert.True(tr2.TryMatch("C"))
}
