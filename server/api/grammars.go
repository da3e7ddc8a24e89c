package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/softwarity/tac-editor/server/dao"
	"github.com/softwarity/tac-editor/server/middle"
	"github.com/softwarity/tac-editor/server/result"
	"github.com/softwarity/tac-editor/server/serr"
)

// HTTPGetAllGrammars returns a HandlerFunc that retrieves the names of every
// loaded grammar plus the metadata of every grammar uploaded through the
// API. No auth is required.
func (api API) HTTPGetAllGrammars() http.HandlerFunc {
	return api.Endpoint(api.epGetAllGrammars)
}

type grammarListing struct {
	Loaded   []string       `json:"loaded"`
	Uploaded []GrammarModel `json:"uploaded"`
}

func (api API) epGetAllGrammars(req *http.Request) result.Result {
	grams, err := api.Backend.GetAllGrammars(req.Context())
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := grammarListing{
		Loaded:   api.Backend.GrammarNames(),
		Uploaded: make([]GrammarModel, len(grams)),
	}
	for i := range grams {
		resp.Uploaded[i] = daoGrammarToModel(grams[i])
	}

	return result.OK(resp, "client got all grammars")
}

// HTTPGetGrammar returns a HandlerFunc that retrieves one uploaded grammar,
// including its document bytes. No auth is required.
func (api API) HTTPGetGrammar() http.HandlerFunc {
	return api.Endpoint(api.epGetGrammar)
}

func (api API) epGetGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)

	g, doc, err := api.Backend.GetGrammarDocument(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError("could not get grammar: " + err.Error())
	}

	resp := daoGrammarToModel(g)
	resp.Document = base64.StdEncoding.EncodeToString(doc)

	return result.OK(resp, "client got grammar '%s'", g.Name)
}

// decodeGrammarRequest pulls the format and document bytes out of a grammar
// create/update request body. The document may be sent raw or base64.
func decodeGrammarRequest(req *http.Request) (string, []byte, error) {
	var body GrammarCreateRequest
	if err := parseJSON(req, &body); err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(body.Document) == "" {
		return "", nil, serr.New("document: property is empty or missing from request", serr.ErrBadArgument)
	}

	doc, err := base64.StdEncoding.DecodeString(body.Document)
	if err != nil {
		// not base64; treat it as the raw document text
		doc = []byte(body.Document)
	}

	return body.Format, doc, nil
}

// HTTPCreateGrammar returns a HandlerFunc that uploads a new grammar
// document and registers it with the live engine. Only a normal or admin
// user may upload grammars.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the logged-in user of the client making the request.
func (api API) HTTPCreateGrammar() http.HandlerFunc {
	return api.Endpoint(api.epCreateGrammar)
}

func (api API) epCreateGrammar(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	if user.Role != dao.Admin && user.Role != dao.Normal {
		return result.Forbidden("user '%s' (role %s) creation of grammar: forbidden", user.Username, user.Role)
	}

	format, doc, err := decodeGrammarRequest(req)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	created, warnings, err := api.Backend.CreateGrammar(req.Context(), user.ID, format, doc)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return result.Conflict("Grammar with that name already exists", "grammar already exists")
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	resp := daoGrammarToModel(created)
	warningStr := ""
	if len(warnings) > 0 {
		warningStr = " (with warnings: " + strings.Join(warnings, "; ") + ")"
	}
	return result.Created(resp, "user '%s' created grammar '%s'%s", user.Username, created.Name, warningStr)
}

// HTTPUpdateGrammar returns a HandlerFunc that replaces the document of an
// uploaded grammar and re-registers it with the live engine. Only the
// grammar's owner or an admin user may update it.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the ID of the grammar being updated and the logged-in user of the
// client making the request.
func (api API) HTTPUpdateGrammar() http.HandlerFunc {
	return api.Endpoint(api.epUpdateGrammar)
}

func (api API) epUpdateGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	existing, err := api.Backend.GetGrammar(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	if existing.UserID != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) update of grammar '%s': forbidden", user.Username, user.Role, existing.Name)
	}

	format, doc, err := decodeGrammarRequest(req)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	updated, warnings, err := api.Backend.UpdateGrammar(req.Context(), id.String(), format, doc)
	if err != nil {
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		} else if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	resp := daoGrammarToModel(updated)
	warningStr := ""
	if len(warnings) > 0 {
		warningStr = " (with warnings: " + strings.Join(warnings, "; ") + ")"
	}
	return result.Created(resp, "user '%s' updated grammar '%s'%s", user.Username, updated.Name, warningStr)
}

// HTTPDeleteGrammar returns a HandlerFunc that deletes an uploaded grammar
// and removes it from the live engine. Only the grammar's owner or an admin
// user may delete it.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the ID of the grammar being deleted and the logged-in user of the
// client making the request.
func (api API) HTTPDeleteGrammar() http.HandlerFunc {
	return api.Endpoint(api.epDeleteGrammar)
}

func (api API) epDeleteGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)
	user := req.Context().Value(middle.AuthUser).(dao.User)

	existing, err := api.Backend.GetGrammar(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	if existing.UserID != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) delete of grammar '%s': forbidden", user.Username, user.Role, existing.Name)
	}

	deleted, err := api.Backend.DeleteGrammar(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not delete grammar: " + err.Error())
	}

	return result.NoContent("user '%s' successfully deleted grammar '%s'", user.Username, deleted.Name)
}
