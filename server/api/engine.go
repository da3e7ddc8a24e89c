package api

import (
	"errors"
	"net/http"

	"github.com/softwarity/tac-editor/internal/tac"
	"github.com/softwarity/tac-editor/server/result"
	"github.com/softwarity/tac-editor/server/serr"
)

// The endpoints in this file expose the grammar engine itself: tokenize,
// suggest, validate, and detect. None of them require auth and none of them
// mutate server state; each request runs on its own engine instance over the
// shared resolved grammar set.

// HTTPTokenize returns a HandlerFunc that tokenizes message text under a
// named or detected grammar.
func (api API) HTTPTokenize() http.HandlerFunc {
	return api.Endpoint(api.epTokenize)
}

func (api API) epTokenize(req *http.Request) result.Result {
	var body TokenizeRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	grammarName := body.Grammar
	if grammarName == "" {
		detected, err := api.Backend.Detect(body.Text)
		if err != nil {
			return result.BadRequest("cannot detect the message type; specify a grammar", "no grammar given and detection failed")
		}
		grammarName = detected
	}

	tokens, err := api.Backend.Tokenize(grammarName, body.Text)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	resp := TokenizeResponse{
		Grammar: grammarName,
		Tokens:  tokensToModels(tokens),
	}
	return result.OK(resp, "client tokenized %d bytes under grammar '%s'", len(body.Text), grammarName)
}

// HTTPSuggest returns a HandlerFunc that produces autocomplete suggestions.
// Three request shapes are accepted: text+cursor (suggestions at a position
// in the text), token_kind (suggestions after a token of that kind), and
// label_kind (suggestions for a template field).
func (api API) HTTPSuggest() http.HandlerFunc {
	return api.Endpoint(api.epSuggest)
}

func (api API) epSuggest(req *http.Request) result.Result {
	var body SuggestRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	var raw []tac.Suggestion
	var err error

	switch {
	case body.LabelKind != "":
		if body.Grammar == "" {
			return result.BadRequest("grammar: property is required for template suggestions", "label_kind suggest with no grammar")
		}
		raw, err = api.Backend.TemplateSuggestions(body.Grammar, body.LabelKind)
	case body.TokenKind != "" || body.Cursor == nil:
		raw, err = api.Backend.SuggestForKind(body.Grammar, body.TokenKind, body.PrevText, body.SupportedTypes)
	default:
		raw, err = api.Backend.Suggest(body.Grammar, body.Text, *body.Cursor, body.SupportedTypes)
	}

	if err != nil {
		if errors.Is(err, serr.ErrNotFound) || errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	return result.OK(suggestionsToModels(raw), "client got suggestions")
}

// HTTPValidate returns a HandlerFunc that validates message text under a
// named or detected grammar.
func (api API) HTTPValidate() http.HandlerFunc {
	return api.Endpoint(api.epValidate)
}

func (api API) epValidate(req *http.Request) result.Result {
	var body ValidateRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	res, err := api.Backend.Validate(body.Grammar, body.Text)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) || errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	return result.OK(validationToModel(res), "client validated %d bytes (valid=%t)", len(body.Text), res.Valid)
}

// HTTPDetect returns a HandlerFunc that reports which loaded grammar the
// given text belongs to.
func (api API) HTTPDetect() http.HandlerFunc {
	return api.Endpoint(api.epDetect)
}

func (api API) epDetect(req *http.Request) result.Result {
	var body DetectRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	name, err := api.Backend.Detect(body.Text)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	return result.OK(DetectResponse{Grammar: name}, "client detected message type '%s'", name)
}
