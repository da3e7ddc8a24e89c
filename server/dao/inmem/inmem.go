// Package inmem provides an entirely in-memory implementation of the dao
// store, suitable for tests and for running a server with no persistence at
// all.
package inmem

import (
	"fmt"

	"github.com/softwarity/tac-editor/server/dao"
)

type store struct {
	users  *InMemoryUsersRepository
	regs   *InMemoryRegistrationsRepository
	grams  *InMemoryGrammarsRepository
	gd     *InMemoryGrammarDatasRepository
	seshes *InMemorySessionsRepository
	revs   *InMemoryRevisionsRepository
}

func NewDatastore() dao.Store {
	st := &store{
		users:  NewUsersRepository(),
		regs:   NewRegistrationsRepository(),
		grams:  NewGrammarsRepository(),
		gd:     NewGrammarDatasRepository(),
		seshes: NewSessionsRepository(),
	}
	st.revs = NewRevisionsRepository(st.seshes)
	return st
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Registrations() dao.RegistrationRepository {
	return s.regs
}

func (s *store) Grammars() dao.GrammarRepository {
	return s.grams
}

func (s *store) GrammarData() dao.GrammarDataRepository {
	return s.gd
}

func (s *store) Sessions() dao.SessionRepository {
	return s.seshes
}

func (s *store) Revisions() dao.RevisionRepository {
	return s.revs
}

func (s *store) Close() error {
	var err error

	for _, c := range []interface{ Close() error }{s.users, s.regs, s.grams, s.gd, s.seshes, s.revs} {
		nextErr := c.Close()
		if nextErr != nil {
			if err != nil {
				err = fmt.Errorf("%s\nadditionally, %w", err, nextErr)
			} else {
				err = nextErr
			}
		}
	}

	return err
}
