package tac

import (
	"strings"

	"github.com/softwarity/tac-editor/internal/util"
)

// Tracker is the incremental Structure Tracker: it walks a
// Grammar's structure tree in lock-step with an input token stream,
// maintaining match counts and one-of choices, and answers "what tokens are
// legal next?" and "does this token advance the cursor?". A Tracker is a
// pure function of its TrackerState plus the Grammar; it holds no other
// hidden state, so a TrackerState snapshot taken at any point can be
// resumed later by a fresh Tracker over the same (resolved) Grammar.
type Tracker struct {
	grammar *Grammar
	state   TrackerState
}

// NewTracker returns a Tracker over g, starting from a fresh TrackerState.
func NewTracker(g *Grammar) *Tracker {
	return &Tracker{grammar: g, state: NewTrackerState()}
}

// State returns a copy of the Tracker's current state, suitable for
// persistence.
func (t *Tracker) State() TrackerState {
	cp := NewTrackerState()
	for k, v := range t.state.Counts {
		cp.Counts[k] = v
	}
	for k, v := range t.state.Choices {
		cp.Choices[k] = v
	}
	cp.CurrentIndex = t.state.CurrentIndex
	return cp
}

// SetState replaces the Tracker's state wholesale, e.g. to resume a
// previously-saved edit session.
func (t *Tracker) SetState(s TrackerState) {
	t.state = s
	if t.state.Counts == nil {
		t.state.Counts = make(map[string]int)
	}
	if t.state.Choices == nil {
		t.state.Choices = make(map[string]int)
	}
}

// Reset clears counts, choices, and the root cursor.
func (t *Tracker) Reset() {
	t.state = NewTrackerState()
}

// iterDoneSuffix marks, per sequence node, whether the current (possibly
// still in-progress) iteration has already been counted toward that node's
// own completion count. This is bookkeeping beyond the three maps named in
// the data model, needed to let a repeatable sequence complete more than
// once without conflating "total completions so far" (the node's Counts
// entry, read by every other node kind the same way) with "has this
// iteration's completion already been recorded". It lives under the same
// Counts map, keyed by a reserved suffix, so snapshotting/clearing still
// only has to touch one map.
const iterDoneSuffix = ".iterdone"

func repeatable(c Cardinality) bool {
	return c.Unbounded() || c.Max > 1
}

func fullyComplete(c Cardinality, count int) bool {
	return count >= c.Min && (c.Unbounded() || count >= c.Max)
}

// effectivelyOptional reports whether n can be satisfied with zero matches,
// either directly (min == 0) or recursively through every alternative/child.
func effectivelyOptional(n *Node) bool {
	if n.Card.Min == 0 {
		return true
	}
	switch n.Kind {
	case NodeOneOf:
		for _, c := range n.Children {
			if !effectivelyOptional(c) {
				return false
			}
		}
		return true
	case NodeSequence:
		for _, c := range n.Children {
			if !effectivelyOptional(c) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// hasActiveChildren reports whether n, at path, can still accept further
// matches by way of its children (as opposed to its own cardinality).
func hasActiveChildren(n *Node, path string, st *TrackerState) bool {
	switch n.Kind {
	case NodeOneOf:
		if choice, ok := st.Choices[path]; ok && choice >= 0 && choice < len(n.Children) {
			return hasActiveChildren(n.Children[choice], altPath(path, choice), st)
		}
		for j, c := range n.Children {
			if hasActiveChildren(c, altPath(path, j), st) {
				return true
			}
		}
		return false
	case NodeSequence:
		count := st.Counts[path]
		if repeatable(n.Card) && count >= 1 {
			return true
		}
		for k, c := range n.Children {
			if hasActiveChildren(c, seqElemPath(path, k), st) {
				return true
			}
		}
		return false
	default: // NodeToken
		count := st.Counts[path]
		return !n.Card.Full(count)
	}
}

func canMatchMore(n *Node, path string, st *TrackerState) bool {
	count := st.Counts[path]
	return !n.Card.Full(count) || hasActiveChildren(n, path, st)
}

// GetExpectedTokenIDs returns the set of token kind IDs that would be legal
// at the current position. It is always a subset of the grammar's token kinds with no duplicates.
func (t *Tracker) GetExpectedTokenIDs() util.ISet[string] {
	expected := util.NewStringSet()
	t.collectFromSiblings(t.grammar.Structure, rootPath, expected)
	return expected
}

// pathFunc builds the path string for the k-th element of some ordered
// list of siblings (root children, or a sequence's body elements).
type pathFunc func(k int) string

func (t *Tracker) collectFromSiblings(nodes []*Node, pathOf pathFunc, expected util.ISet[string]) {
	for i, n := range nodes {
		path := pathOf(i)
		if canMatchMore(n, path, &t.state) {
			t.collectFirstTokens(n, path, expected)
		}
		count := t.state.Counts[path]
		if !(count >= n.Card.Min || effectivelyOptional(n)) {
			break
		}
	}
}

func (t *Tracker) collectFirstTokens(n *Node, path string, expected util.ISet[string]) {
	switch n.Kind {
	case NodeToken:
		expected.Add(n.TokenID)
	case NodeOneOf:
		choice, hasChoice := t.state.Choices[path]
		if !hasChoice {
			for j, c := range n.Children {
				t.collectFirstTokens(c, altPath(path, j), expected)
			}
			return
		}
		if choice >= 0 && choice < len(n.Children) {
			t.collectFirstTokens(n.Children[choice], altPath(path, choice), expected)
		}
		if repeatable(n.Card) && t.state.Counts[path] >= 1 {
			for j, c := range n.Children {
				t.collectFirstTokens(c, altPath(path, j), expected)
			}
		}
	case NodeSequence:
		t.collectFromSiblings(n.Children, func(k int) string { return seqElemPath(path, k) }, expected)
		if repeatable(n.Card) && t.state.Counts[path] >= 1 && len(n.Children) > 0 {
			t.collectFirstTokens(n.Children[0], seqElemPath(path, 0), expected)
		}
	}
}

// TryMatch attempts to consume one token of the given kind. If the kind is
// legal at the current position, state is updated and true is returned;
// otherwise state is left completely unchanged and false is returned.
func (t *Tracker) TryMatch(kindID string) bool {
	if t.state.CurrentIndex >= 0 && t.state.CurrentIndex < len(t.grammar.Structure) {
		i := t.state.CurrentIndex
		if t.matchNode(t.grammar.Structure[i], rootPath(i), kindID) {
			t.advanceRoot(i)
			return true
		}
	}

	for i := range t.grammar.Structure {
		if i == t.state.CurrentIndex {
			continue
		}
		if t.matchNode(t.grammar.Structure[i], rootPath(i), kindID) {
			t.advanceRoot(i)
			return true
		}
	}

	return false
}

func (t *Tracker) advanceRoot(i int) {
	n := t.grammar.Structure[i]
	count := t.state.Counts[rootPath(i)]
	newIdx := i
	if fullyComplete(n.Card, count) {
		newIdx = i + 1
	}
	if newIdx > t.state.CurrentIndex {
		t.state.CurrentIndex = newIdx
	}
}

// matchNode attempts to match kindID against n at path, mutating t.state on
// success. It returns whether the match succeeded.
func (t *Tracker) matchNode(n *Node, path string, kindID string) bool {
	switch n.Kind {
	case NodeToken:
		return t.matchToken(n, path, kindID)
	case NodeOneOf:
		return t.matchOneOf(n, path, kindID)
	case NodeSequence:
		return t.matchSequence(n, path, kindID)
	default:
		return false
	}
}

func (t *Tracker) matchToken(n *Node, path string, kindID string) bool {
	count := t.state.Counts[path]
	if n.Card.Full(count) {
		return false
	}
	if n.TokenID != kindID {
		return false
	}
	t.state.Counts[path] = count + 1
	return true
}

func (t *Tracker) matchOneOf(n *Node, path string, kindID string) bool {
	ownCount := t.state.Counts[path]
	if n.Card.Full(ownCount) {
		return false
	}

	for j, child := range n.Children {
		childPath := altPath(path, j)
		oldCount := t.state.Counts[childPath]
		if t.matchNode(child, childPath, kindID) {
			t.state.Choices[path] = j
			rose := t.state.Counts[childPath] > oldCount
			switch child.Kind {
			case NodeToken, NodeOneOf:
				t.state.Counts[path] = ownCount + 1
			case NodeSequence:
				if rose {
					t.state.Counts[path] = ownCount + 1
				}
			}
			return true
		}
	}
	return false
}

func (t *Tracker) matchSequence(n *Node, path string, kindID string) bool {
	ownCount := t.state.Counts[path]
	if n.Card.Full(ownCount) {
		return false
	}

	cursorPath := seqCursorPath(path)
	cursor := t.state.Counts[cursorPath]

	matchedAt := -1
	for k := cursor; k < len(n.Children); k++ {
		child := n.Children[k]
		childPath := seqElemPath(path, k)
		if t.matchNode(child, childPath, kindID) {
			matchedAt = k
			break
		}
		count := t.state.Counts[childPath]
		if !(count >= child.Card.Min || effectivelyOptional(child)) {
			break
		}
	}

	if matchedAt >= 0 {
		t.advanceSeqCursor(n, path, cursorPath)
		t.markSequenceCompletionIfNeeded(n, path, ownCount)
		return true
	}

	// body-level match failed; consider starting a fresh new iteration if
	// the sequence is repeatable, already completed at least once, and the
	// token could match the first child from a clean state.
	if repeatable(n.Card) && ownCount >= 1 && len(n.Children) > 0 {
		if t.couldMatchFresh(n.Children[0], kindID) {
			t.clearSubtree(path)
			t.state.Counts[path] = ownCount // preserve completions tally
			for k := 0; k < len(n.Children); k++ {
				child := n.Children[k]
				childPath := seqElemPath(path, k)
				if t.matchNode(child, childPath, kindID) {
					t.advanceSeqCursor(n, path, cursorPath)
					t.markSequenceCompletionIfNeeded(n, path, ownCount)
					return true
				}
				count := t.state.Counts[childPath]
				if !(count >= child.Card.Min || effectivelyOptional(child)) {
					break
				}
			}
		}
	}

	return false
}

// advanceSeqCursor moves a sequence's cursor past every fully-complete,
// no-active-children prefix element of its body.
func (t *Tracker) advanceSeqCursor(n *Node, path, cursorPath string) {
	newCursor := t.state.Counts[cursorPath]
	for newCursor < len(n.Children) {
		child := n.Children[newCursor]
		childPath := seqElemPath(path, newCursor)
		count := t.state.Counts[childPath]
		complete := fullyComplete(child.Card, count)
		if complete && !hasActiveChildren(child, childPath, &t.state) {
			newCursor++
		} else {
			break
		}
	}
	t.state.Counts[cursorPath] = newCursor
}

func (t *Tracker) markSequenceCompletionIfNeeded(n *Node, path string, ownCountBeforeMatch int) {
	allComplete := true
	for k, c := range n.Children {
		if effectivelyOptional(c) {
			continue
		}
		cp := seqElemPath(path, k)
		if t.state.Counts[cp] < c.Card.Min {
			allComplete = false
			break
		}
	}
	if !allComplete {
		return
	}
	if t.state.Counts[path+iterDoneSuffix] == 1 {
		return
	}
	t.state.Counts[path] = ownCountBeforeMatch + 1
	t.state.Counts[path+iterDoneSuffix] = 1
}

// couldMatchFresh reports whether kindID would match n starting from an
// entirely empty state, without mutating the tracker.
func (t *Tracker) couldMatchFresh(n *Node, kindID string) bool {
	scratch := &Tracker{grammar: t.grammar, state: NewTrackerState()}
	return scratch.matchNode(n, "scratch", kindID)
}

// clearSubtree wipes every Counts/Choices entry rooted at path (i.e. path
// itself, or keyed "path.something"), so a repeatable node can start a
// fresh iteration. Sub-tree clearing is atomic from the caller's
// perspective: no partial state is observable between the clear and the
// re-attempted match above.
func (t *Tracker) clearSubtree(path string) {
	prefix := path + "."
	for k := range t.state.Counts {
		if k == path || strings.HasPrefix(k, prefix) {
			delete(t.state.Counts, k)
		}
	}
	for k := range t.state.Choices {
		if k == path || strings.HasPrefix(k, prefix) {
			delete(t.state.Choices, k)
		}
	}
}
