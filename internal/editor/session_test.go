package editor

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softwarity/tac-editor/internal/command"
	"github.com/softwarity/tac-editor/internal/tac"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()

	g := &tac.Grammar{
		Name:        "metar",
		Description: "Routine aviation weather report",
		Identifiers: []string{"METAR"},
		Tokens:      map[string]*tac.TokenDef{},
	}
	addToken := func(def *tac.TokenDef) {
		g.Tokens[def.ID] = def
		g.TokenOrder = append(g.TokenOrder, def.ID)
	}
	addToken(&tac.TokenDef{ID: "identifier", Values: []string{"METAR"}, Style: "keyword"})
	addToken(&tac.TokenDef{ID: "icao", Pattern: `[A-Z]{4}`, Style: "station"})
	addToken(&tac.TokenDef{ID: "datetime", Pattern: `\d{6}Z`, Style: "datetime"})
	g.Structure = []*tac.Node{
		{Kind: tac.NodeToken, TokenID: "identifier", Card: tac.Cardinality{Min: 1, Max: 1}},
		{Kind: tac.NodeToken, TokenID: "icao", Card: tac.Cardinality{Min: 1, Max: 1}},
		{Kind: tac.NodeToken, TokenID: "datetime", Card: tac.Cardinality{Min: 1, Max: 1}},
	}

	eng := tac.NewEngine(nil)
	eng.RegisterGrammar("metar", g)
	eng.ResolveInheritance()

	s := New(eng, nil)
	return &s
}

func runCommand(t *testing.T, s *Session, input string) (string, error) {
	t.Helper()

	cmd, err := command.ParseCommand(input)
	require.NoError(t, err)

	var buf bytes.Buffer
	out := bufio.NewWriter(&buf)
	advErr := s.Advance(cmd, out)
	out.Flush()
	return buf.String(), advErr
}

func Test_Session_TypeDetectsGrammar(t *testing.T) {
	assert := assert.New(t)

	s := newTestSession(t)

	out, err := runCommand(t, s, "TYPE METAR LFPG")
	assert.NoError(err)
	assert.Contains(out, "METAR LFPG")
	assert.Equal("METAR LFPG", s.Buffer)

	g, ok := s.Engine.CurrentGrammar()
	assert.True(ok)
	assert.Equal("metar", g.Name)
}

func Test_Session_TypeUndetectableIsError(t *testing.T) {
	assert := assert.New(t)

	s := newTestSession(t)

	_, err := runCommand(t, s, "TYPE GIBBERISH HERE")
	assert.Error(err)
	assert.Empty(s.Buffer)
}

func Test_Session_ExpectAfterTyping(t *testing.T) {
	assert := assert.New(t)

	s := newTestSession(t)

	_, err := runCommand(t, s, "TYPE METAR LFPG")
	assert.NoError(err)

	out, err := runCommand(t, s, "EXPECT")
	assert.NoError(err)
	assert.Contains(out, "datetime")
}

func Test_Session_GrammarSwitchAndList(t *testing.T) {
	assert := assert.New(t)

	s := newTestSession(t)

	out, err := runCommand(t, s, "GRAMMAR metar")
	assert.NoError(err)
	assert.Contains(out, "metar")

	out, err = runCommand(t, s, "GRAMMARS")
	assert.NoError(err)
	assert.Contains(out, "* metar")

	_, err = runCommand(t, s, "GRAMMAR nosuch")
	assert.Error(err)
}

func Test_Session_ValidateBuffer(t *testing.T) {
	assert := assert.New(t)

	s := newTestSession(t)

	_, err := runCommand(t, s, "TYPE METAR LFPG 121330Z")
	assert.NoError(err)

	out, err := runCommand(t, s, "VALIDATE")
	assert.NoError(err)
	assert.Contains(out, "Looks good")
}

func Test_Session_ClearResets(t *testing.T) {
	assert := assert.New(t)

	s := newTestSession(t)

	_, err := runCommand(t, s, "TYPE METAR LFPG")
	assert.NoError(err)

	_, err = runCommand(t, s, "CLEAR")
	assert.NoError(err)
	assert.Empty(s.Buffer)
}

func Test_Session_QuitIsForTheRunner(t *testing.T) {
	s := newTestSession(t)

	_, err := runCommand(t, s, "QUIT")
	assert.Error(t, err)
}
