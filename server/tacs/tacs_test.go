package tacs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softwarity/tac-editor/internal/tac"
	"github.com/softwarity/tac-editor/server/dao"
	"github.com/softwarity/tac-editor/server/dao/inmem"
	"github.com/softwarity/tac-editor/server/serr"
)

func testGrammar() *tac.Grammar {
	g := &tac.Grammar{
		Name:        "metar",
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
	return g
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	reg := tac.NewRegistry()
	reg.Register("metar", testGrammar())
	reg.ResolveInheritance()
	require.Empty(t, reg.Warnings)

	return New(inmem.NewDatastore(), reg)
}

func Test_Service_UserLifecycle(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	svc := newTestService(t)

	user, err := svc.CreateUser(ctx, "ayla", "hunter2hunter2", "ayla@example.com", dao.Normal)
	assert.NoError(err)
	assert.Equal("ayla", user.Username)

	// duplicate username is a conflict
	_, err = svc.CreateUser(ctx, "ayla", "otherpass", "", dao.Normal)
	assert.ErrorIs(err, serr.ErrAlreadyExists)

	// correct password logs in
	loggedIn, err := svc.Login(ctx, "ayla", "hunter2hunter2")
	assert.NoError(err)
	assert.Equal(user.ID, loggedIn.ID)

	// wrong password does not
	_, err = svc.Login(ctx, "ayla", "wrong")
	assert.ErrorIs(err, serr.ErrBadCredentials)

	// logging out bumps the last-logout time
	loggedOut, err := svc.Logout(ctx, user.ID)
	assert.NoError(err)
	assert.True(loggedOut.LastLogoutTime.After(user.LastLogoutTime) || loggedOut.LastLogoutTime.Equal(user.LastLogoutTime))
}

func Test_Service_EngineOps(t *testing.T) {
	assert := assert.New(t)

	svc := newTestService(t)

	name, err := svc.Detect("METAR LFPG 121330Z")
	assert.NoError(err)
	assert.Equal("metar", name)

	tokens, err := svc.Tokenize("", "METAR LFPG 121330Z")
	assert.NoError(err)

	var kinds []string
	for _, tok := range tokens {
		if tok.Kind == tac.KindWhitespace {
			continue
		}
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal([]string{"identifier", "icao", "datetime"}, kinds)

	res, err := svc.Validate("metar", "METAR LFPG 121330Z")
	assert.NoError(err)
	assert.True(res.Valid)

	_, err = svc.Tokenize("ghost", "METAR")
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_SessionLifecycle(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	svc := newTestService(t)

	user, err := svc.CreateUser(ctx, "editor", "longenoughpass", "", dao.Normal)
	assert.NoError(err)

	sesh, err := svc.CreateSession(ctx, user.ID, "metar")
	assert.NoError(err)
	assert.Equal("metar", sesh.GrammarName)
	assert.NotNil(sesh.State)

	// an unloaded grammar cannot back a session
	_, err = svc.CreateSession(ctx, user.ID, "ghost")
	assert.ErrorIs(err, serr.ErrNotFound)

	outcome, err := svc.SubmitRevision(ctx, sesh.ID.String(), "METAR LFPG")
	assert.NoError(err)
	assert.Equal("METAR LFPG", outcome.Revision.Text)
	assert.Contains(outcome.Expected, "datetime")
	assert.True(outcome.Validation.Valid)

	// the session remembers the newest text and tracker state
	got, err := svc.GetSession(ctx, sesh.ID.String())
	assert.NoError(err)
	assert.Equal("METAR LFPG", got.Text)
	assert.NotNil(got.State)
	assert.NotEmpty(got.State.Counts)

	revs, err := svc.GetRevisions(ctx, sesh.ID.String())
	assert.NoError(err)
	assert.Len(revs, 1)

	_, err = svc.DeleteSession(ctx, sesh.ID.String())
	assert.NoError(err)
	_, err = svc.GetSession(ctx, sesh.ID.String())
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_PerRequestEngineIsolation(t *testing.T) {
	assert := assert.New(t)

	svc := newTestService(t)

	// two engine ops in a row must not leak tracker state into each other
	tokens1, err := svc.Tokenize("metar", "METAR LFPG")
	assert.NoError(err)
	tokens2, err := svc.Tokenize("metar", "METAR EGLL")
	assert.NoError(err)

	assert.Len(tokens1, 3)
	assert.Len(tokens2, 3)
}
