package tacs

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/softwarity/tac-editor/internal/tac"
	"github.com/softwarity/tac-editor/server/dao"
	"github.com/softwarity/tac-editor/server/serr"
)

// RevisionOutcome is what the engine made of one submitted revision: the
// colored token stream, the token kinds legal at the end of the text, and
// the validation diagnosis.
type RevisionOutcome struct {
	Revision   dao.Revision
	Tokens     []tac.TokenizedToken
	Expected   []string
	Validation tac.ValidationResult
}

// CreateSession starts a new edit session for the given user under the
// named grammar, with empty text and a fresh tracker state.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the named grammar is not
// loaded, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB.
func (svc *Service) CreateSession(ctx context.Context, userID uuid.UUID, grammarName string) (dao.Session, error) {
	eng := svc.engine()
	if !eng.SetGrammar(grammarName) {
		return dao.Session{}, serr.New("no loaded grammar named "+grammarName, serr.ErrNotFound)
	}

	st := tac.NewTrackerState()
	sesh := dao.Session{
		UserID:      userID,
		GrammarName: grammarName,
		State:       &st,
	}

	created, err := svc.DB.Sessions().Create(ctx, sesh)
	if err != nil {
		return dao.Session{}, serr.WrapDB("could not create session", err)
	}

	return created, nil
}

// GetSession returns the edit session with the given ID.
func (svc *Service) GetSession(ctx context.Context, id string) (dao.Session, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Session{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	sesh, err := svc.DB.Sessions().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Session{}, serr.ErrNotFound
		}
		return dao.Session{}, serr.WrapDB("could not get session", err)
	}

	return sesh, nil
}

// GetAllSessionsByUser returns every edit session belonging to the given
// user.
func (svc *Service) GetAllSessionsByUser(ctx context.Context, userID uuid.UUID) ([]dao.Session, error) {
	seshes, err := svc.DB.Sessions().GetAllByUser(ctx, userID)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}

	return seshes, nil
}

// DeleteSession deletes the edit session with the given ID, returning it as
// it was just before deletion.
func (svc *Service) DeleteSession(ctx context.Context, id string) (dao.Session, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Session{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	sesh, err := svc.DB.Sessions().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Session{}, serr.ErrNotFound
		}
		return dao.Session{}, serr.WrapDB("could not delete session", err)
	}

	return sesh, nil
}

// SubmitRevision records text as the session's newest full message text,
// re-runs the engine over it, persists the updated tracker state, and
// returns the engine's reading of the new text.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the session does not
// exist, it will match serr.ErrNotFound. If the session's grammar is no
// longer loaded, it will match serr.ErrBadArgument. If the error occured due
// to an unexpected problem with the DB, it will match serr.ErrDB.
func (svc *Service) SubmitRevision(ctx context.Context, sessionID string, text string) (RevisionOutcome, error) {
	sesh, err := svc.GetSession(ctx, sessionID)
	if err != nil {
		return RevisionOutcome{}, err
	}

	eng := svc.engine()
	if !eng.SetGrammar(sesh.GrammarName) {
		return RevisionOutcome{}, serr.New("session grammar "+sesh.GrammarName+" is no longer loaded", serr.ErrBadArgument)
	}

	// the tracker walks token kinds from the start of the message, so it is
	// rebuilt from the full text on every submission rather than diffed.
	tokens := eng.Tokenize(text)
	eng.Reset()
	for _, tok := range tokens {
		if tok.IsWhitespace() || tok.Kind == tac.KindError {
			continue
		}
		eng.TrackToken(tok.Kind)
	}

	outcome := RevisionOutcome{
		Tokens:     tokens,
		Expected:   eng.ExpectedTokenIDs(),
		Validation: eng.Validate(text),
	}

	rev, err := svc.DB.Revisions().Create(ctx, dao.Revision{
		SessionID: sesh.ID,
		Text:      text,
	})
	if err != nil {
		return RevisionOutcome{}, serr.WrapDB("could not record revision", err)
	}
	outcome.Revision = rev

	sesh.Text = text
	if st, ok := eng.TrackerState(); ok {
		sesh.State = &st
	}
	if _, err := svc.DB.Sessions().Update(ctx, sesh.ID, sesh); err != nil {
		return RevisionOutcome{}, serr.WrapDB("could not update session", err)
	}

	return outcome, nil
}

// GetRevisions returns every revision submitted to the given session, oldest
// first. A session with no revisions yet returns an empty list.
func (svc *Service) GetRevisions(ctx context.Context, sessionID string) ([]dao.Revision, error) {
	uuidID, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	revs, err := svc.DB.Revisions().GetAllBySession(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return []dao.Revision{}, nil
		}
		return nil, serr.WrapDB("", err)
	}

	return revs, nil
}
