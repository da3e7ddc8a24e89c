package tacs

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/softwarity/tac-editor/internal/tacgramio"
	"github.com/softwarity/tac-editor/server/dao"
	"github.com/softwarity/tac-editor/server/serr"
)

func normalizeFormat(format string) string {
	f := strings.ToLower(format)
	if f == "" {
		f = "toml"
	}
	if f == "yml" {
		f = "yaml"
	}
	return f
}

// GetAllGrammars returns the metadata of every grammar document currently in
// persistence. Grammars loaded from the server's on-disk pack but never
// uploaded through the API have no metadata row and are not included; use
// GrammarNames for the full loaded set.
func (svc *Service) GetAllGrammars(ctx context.Context) ([]dao.Grammar, error) {
	grams, err := svc.DB.Grammars().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}

	return grams, nil
}

// GetGrammar returns the grammar metadata row with the given ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no grammar with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if
// there is an issue with one of the arguments, it will match
// serr.ErrBadArgument.
func (svc *Service) GetGrammar(ctx context.Context, id string) (dao.Grammar, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Grammar{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	g, err := svc.DB.Grammars().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, serr.ErrNotFound
		}
		return dao.Grammar{}, serr.WrapDB("could not get grammar", err)
	}

	return g, nil
}

// GetGrammarDocument returns the raw document bytes backing the grammar
// metadata row with the given ID.
func (svc *Service) GetGrammarDocument(ctx context.Context, id string) (dao.Grammar, []byte, error) {
	g, err := svc.GetGrammar(ctx, id)
	if err != nil {
		return dao.Grammar{}, nil, err
	}

	data, err := svc.DB.GrammarData().GetByID(ctx, g.DataID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return g, nil, serr.New("grammar document bytes are missing", serr.ErrNotFound)
		}
		return g, nil, serr.WrapDB("could not get grammar document", err)
	}

	return g, data.Data, nil
}

// CreateGrammar parses doc as a grammar definition document in the named
// format ("toml", "json", or "yaml"), stores it, and registers the grammar
// with the live engine. The document must define exactly one grammar.
// Returns the created metadata row and any warnings inheritance resolution
// produced.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If a grammar with the same
// name is already present, it will match serr.ErrAlreadyExists. If the
// document cannot be parsed, it will match serr.ErrBadArgument. If the error
// occured due to an unexpected problem with the DB, it will match serr.ErrDB.
func (svc *Service) CreateGrammar(ctx context.Context, userID uuid.UUID, format string, doc []byte) (dao.Grammar, []string, error) {
	gs, err := tacgramio.ParseDocument(doc, format)
	if err != nil {
		return dao.Grammar{}, nil, serr.New("grammar document is not valid", err, serr.ErrBadArgument)
	}
	if len(gs.Grammars) != 1 {
		return dao.Grammar{}, nil, serr.New("grammar document must define exactly one grammar", serr.ErrBadArgument)
	}

	name := gs.Names()[0]
	parsed := gs.Grammars[name]

	_, err = svc.DB.Grammars().GetByName(ctx, name)
	if err == nil {
		return dao.Grammar{}, nil, serr.New("a grammar with that name already exists", serr.ErrAlreadyExists)
	} else if !errors.Is(err, dao.ErrNotFound) {
		return dao.Grammar{}, nil, serr.WrapDB("", err)
	}

	data, err := svc.DB.GrammarData().Create(ctx, dao.GrammarData{Data: doc})
	if err != nil {
		return dao.Grammar{}, nil, serr.WrapDB("could not store grammar document", err)
	}

	row := dao.Grammar{
		UserID:      userID,
		Name:        name,
		Category:    parsed.Category,
		Version:     parsed.Version,
		Description: parsed.Description,
		Format:      normalizeFormat(format),
		DataID:      data.ID,
	}

	created, err := svc.DB.Grammars().Create(ctx, row)
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.Grammar{}, nil, serr.ErrAlreadyExists
		}
		return dao.Grammar{}, nil, serr.WrapDB("could not create grammar", err)
	}

	warnings := svc.registerResolved(name, parsed)

	return created, warnings, nil
}

// UpdateGrammar replaces the stored document of the grammar with the given
// ID and re-registers it with the live engine. The new document must define
// exactly one grammar with the same name as the existing row.
func (svc *Service) UpdateGrammar(ctx context.Context, id string, format string, doc []byte) (dao.Grammar, []string, error) {
	existing, err := svc.GetGrammar(ctx, id)
	if err != nil {
		return dao.Grammar{}, nil, err
	}

	gs, err := tacgramio.ParseDocument(doc, format)
	if err != nil {
		return dao.Grammar{}, nil, serr.New("grammar document is not valid", err, serr.ErrBadArgument)
	}
	if len(gs.Grammars) != 1 {
		return dao.Grammar{}, nil, serr.New("grammar document must define exactly one grammar", serr.ErrBadArgument)
	}

	name := gs.Names()[0]
	if name != existing.Name {
		return dao.Grammar{}, nil, serr.New("document grammar name must match the existing grammar", serr.ErrBadArgument)
	}
	parsed := gs.Grammars[name]

	_, err = svc.DB.GrammarData().Update(ctx, existing.DataID, dao.GrammarData{ID: existing.DataID, Data: doc})
	if err != nil {
		return dao.Grammar{}, nil, serr.WrapDB("could not store grammar document", err)
	}

	existing.Category = parsed.Category
	existing.Version = parsed.Version
	existing.Description = parsed.Description
	existing.Format = normalizeFormat(format)

	updated, err := svc.DB.Grammars().Update(ctx, existing.ID, existing)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, nil, serr.ErrNotFound
		}
		return dao.Grammar{}, nil, serr.WrapDB("could not update grammar", err)
	}

	warnings := svc.registerResolved(name, parsed)

	return updated, warnings, nil
}

// DeleteGrammar deletes the grammar with the given ID, its stored document,
// and its registration with the live engine. It returns the deleted metadata
// row.
func (svc *Service) DeleteGrammar(ctx context.Context, id string) (dao.Grammar, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Grammar{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	g, err := svc.DB.Grammars().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, serr.ErrNotFound
		}
		return dao.Grammar{}, serr.WrapDB("could not delete grammar", err)
	}

	if _, err := svc.DB.GrammarData().Delete(ctx, g.DataID); err != nil && !errors.Is(err, dao.ErrNotFound) {
		return g, serr.WrapDB("could not delete grammar document", err)
	}

	svc.mu.Lock()
	svc.reg.Deregister(g.Name)
	svc.mu.Unlock()

	return g, nil
}
