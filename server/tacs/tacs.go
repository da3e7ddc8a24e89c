// Package tacs has services for interacting with the TAC editor server
// backend decoupled from the API that accesses it.
package tacs

import (
	"sync"

	"github.com/softwarity/tac-editor/internal/tac"
	"github.com/softwarity/tac-editor/server/dao"
)

// Service is a service for interacting with and modifying the TAC editor
// server backend. It performs the actions requested and makes calls to
// server persistence to preserve the backend state.
//
// The zero-value of Service is not ready to be used; call New.
type Service struct {

	// DB is the persistence store of the service.
	DB dao.Store

	// reg holds every loaded grammar, resolved. Engine operations take a
	// read lock and work on a per-request Clone; grammar registration takes
	// the write lock, re-registers, and re-resolves.
	reg *tac.Registry

	mu sync.RWMutex
}

// New creates a Service over the given store and grammar registry. The
// registry is expected to have had ResolveInheritance run already; the
// Service takes ownership of it.
func New(db dao.Store, reg *tac.Registry) *Service {
	if reg == nil {
		reg = tac.NewRegistry()
	}
	return &Service{
		DB:  db,
		reg: reg,
	}
}

// engine returns a fresh per-request Engine over a clone of the shared
// registry, so one request's active-grammar selection and tracker never
// leak into another's. The read lock is held only for the clone; resolved
// grammars themselves are read-only and safe to share.
func (svc *Service) engine() *tac.Engine {
	svc.mu.RLock()
	reg := svc.reg.Clone()
	svc.mu.RUnlock()
	return tac.NewEngineFor(reg, nil)
}

// GrammarNames returns the names of every loaded grammar.
func (svc *Service) GrammarNames() []string {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.reg.GrammarNames()
}

// registerResolved adds or replaces a raw grammar under the write lock and
// re-resolves the whole set, returning any warnings the resolve produced.
func (svc *Service) registerResolved(name string, g *tac.Grammar) []string {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.reg.Register(name, g)
	before := len(svc.reg.Warnings)
	svc.reg.ResolveInheritance()
	return svc.reg.Warnings[before:]
}
