package api

import (
	"errors"
	"net/http"

	"github.com/softwarity/tac-editor/server/dao"
	"github.com/softwarity/tac-editor/server/middle"
	"github.com/softwarity/tac-editor/server/result"
	"github.com/softwarity/tac-editor/server/serr"
)

// HTTPCreateSession returns a HandlerFunc that starts a new edit session
// for the logged-in user under a named grammar.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the logged-in user of the client making the request.
func (api API) HTTPCreateSession() http.HandlerFunc {
	return api.Endpoint(api.epCreateSession)
}

func (api API) epCreateSession(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	var body SessionCreateRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if body.Grammar == "" {
		return result.BadRequest("grammar: property is empty or missing from request", "empty grammar")
	}

	sesh, err := api.Backend.CreateSession(req.Context(), user.ID, body.Grammar)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	resp := daoSessionToModel(sesh)
	return result.Created(resp, "user '%s' created session %s under grammar '%s'", user.Username, resp.ID, body.Grammar)
}

// HTTPGetAllSessions returns a HandlerFunc that lists the logged-in user's
// edit sessions.
func (api API) HTTPGetAllSessions() http.HandlerFunc {
	return api.Endpoint(api.epGetAllSessions)
}

func (api API) epGetAllSessions(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	seshes, err := api.Backend.GetAllSessionsByUser(req.Context(), user.ID)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]SessionModel, len(seshes))
	for i := range seshes {
		resp[i] = daoSessionToModel(seshes[i])
	}

	return result.OK(resp, "user '%s' got own sessions", user.Username)
}

// requireOwnSession fetches the session in the URL's id param and checks
// the logged-in user owns it (or is an admin). On failure the returned
// result is ready to send and ok is false.
func (api API) requireOwnSession(req *http.Request) (dao.Session, result.Result, bool) {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	sesh, err := api.Backend.GetSession(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return dao.Session{}, result.NotFound(), false
		}
		return dao.Session{}, result.InternalServerError(err.Error()), false
	}

	if sesh.UserID != user.ID && user.Role != dao.Admin {
		return dao.Session{}, result.Forbidden("user '%s' (role %s) access to session %s: forbidden", user.Username, user.Role, id), false
	}

	return sesh, result.Result{}, true
}

// HTTPGetSession returns a HandlerFunc that gets one edit session. All
// users may retrieve their own sessions; only an admin user may retrieve
// another user's.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the ID of the session being operated on and the logged-in user of
// the client making the request.
func (api API) HTTPGetSession() http.HandlerFunc {
	return api.Endpoint(api.epGetSession)
}

func (api API) epGetSession(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	sesh, failure, ok := api.requireOwnSession(req)
	if !ok {
		return failure
	}

	resp := daoSessionToModel(sesh)
	return result.OK(resp, "user '%s' got session %s", user.Username, resp.ID)
}

// HTTPDeleteSession returns a HandlerFunc that deletes one edit session.
// All users may delete their own sessions; only an admin user may delete
// another user's.
func (api API) HTTPDeleteSession() http.HandlerFunc {
	return api.Endpoint(api.epDeleteSession)
}

func (api API) epDeleteSession(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	sesh, failure, ok := api.requireOwnSession(req)
	if !ok {
		return failure
	}

	if _, err := api.Backend.DeleteSession(req.Context(), sesh.ID.String()); err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not delete session: " + err.Error())
	}

	return result.NoContent("user '%s' deleted session %s", user.Username, sesh.ID)
}

// HTTPCreateRevision returns a HandlerFunc that submits new message text to
// an edit session and returns the engine's reading of it: tokens, expected
// next kinds, and validation.
func (api API) HTTPCreateRevision() http.HandlerFunc {
	return api.Endpoint(api.epCreateRevision)
}

func (api API) epCreateRevision(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	sesh, failure, ok := api.requireOwnSession(req)
	if !ok {
		return failure
	}

	var body RevisionCreateRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	outcome, err := api.Backend.SubmitRevision(req.Context(), sesh.ID.String(), body.Text)
	if err != nil {
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		} else if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	resp := RevisionOutcomeModel{
		Revision:   daoRevisionToModel(outcome.Revision),
		Tokens:     tokensToModels(outcome.Tokens),
		Expected:   outcome.Expected,
		Validation: validationToModel(outcome.Validation),
	}

	return result.Created(resp, "user '%s' submitted revision to session %s", user.Username, sesh.ID)
}

// HTTPGetAllRevisions returns a HandlerFunc that lists every revision
// submitted to an edit session, oldest first.
func (api API) HTTPGetAllRevisions() http.HandlerFunc {
	return api.Endpoint(api.epGetAllRevisions)
}

func (api API) epGetAllRevisions(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	sesh, failure, ok := api.requireOwnSession(req)
	if !ok {
		return failure
	}

	revs, err := api.Backend.GetRevisions(req.Context(), sesh.ID.String())
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]RevisionModel, len(revs))
	for i := range revs {
		resp[i] = daoRevisionToModel(revs[i])
	}

	return result.OK(resp, "user '%s' got revisions of session %s", user.Username, sesh.ID)
}
