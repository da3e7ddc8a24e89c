// Package server provides the TAC editor server: an HTTP REST surface over
// the grammar engine (tokenize, suggest, validate, detect), plus persistence
// for users, uploaded grammar documents, and in-progress edit sessions.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/softwarity/tac-editor/internal/tac"
	"github.com/softwarity/tac-editor/internal/tacgramio"
	"github.com/softwarity/tac-editor/server/api"
	"github.com/softwarity/tac-editor/server/dao"
	"github.com/softwarity/tac-editor/server/middle"
	"github.com/softwarity/tac-editor/server/tacs"
)

// Server is the complete TAC editor server: connected persistence, a loaded
// grammar registry, the backend service over both, and a router exposing the
// HTTP API. Create one with New.
type Server struct {
	router chi.Router
	svc    *tacs.Service
	cfg    Config
}

// New builds a Server from the given config: it connects the configured
// persistence, loads grammar definitions from the configured pack directory
// and from any documents previously uploaded through the API, resolves
// inheritance, and wires up the HTTP routes.
func New(cfg Config) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect DB: %w", err)
	}

	reg := tac.NewRegistry()

	if cfg.GrammarsDir != "" {
		if err := loadGrammarPack(reg, cfg.GrammarsDir); err != nil {
			return nil, fmt.Errorf("load grammar pack: %w", err)
		}
	}
	if err := loadUploadedGrammars(reg, db); err != nil {
		return nil, fmt.Errorf("load uploaded grammars: %w", err)
	}

	reg.ResolveInheritance()
	for _, warning := range reg.Warnings {
		log.Printf("WARN  grammar: %s", warning)
	}

	svc := tacs.New(db, reg)

	s := &Server{
		router: chi.NewRouter(),
		svc:    svc,
		cfg:    cfg,
	}
	s.routes()

	return s, nil
}

// Backend exposes the server's service layer for direct programmatic use,
// e.g. bootstrapping an initial admin user.
func (s *Server) Backend() *tacs.Service {
	return s.svc
}

// CreateUser creates a new user account directly on the backend.
func (s *Server) CreateUser(ctx context.Context, username, password, email string, role dao.Role) (dao.User, error) {
	return s.svc.CreateUser(ctx, username, password, email, role)
}

// ServeForever starts listening on the given address and port and serves
// requests until the process is killed or the listener fails.
func (s *Server) ServeForever(address string, port int) error {
	if address == "" {
		address = "localhost"
	}
	if port < 1 {
		port = 8080
	}

	listenAddr := fmt.Sprintf("%s:%d", address, port)
	log.Printf("INFO  Listening on %s", listenAddr)
	return http.ListenAndServe(listenAddr, s.router)
}

// routes mounts every API endpoint under api.PathPrefix.
func (s *Server) routes() {
	a := api.API{
		Backend:     s.svc,
		UnauthDelay: s.cfg.UnauthDelay(),
		Secret:      s.cfg.TokenSecret,
	}

	optional := middle.OptionalAuth(s.svc.DB.Users(), s.cfg.TokenSecret, s.cfg.UnauthDelay(), dao.User{})
	required := middle.RequireAuth(s.svc.DB.Users(), s.cfg.TokenSecret, s.cfg.UnauthDelay(), dao.User{})

	s.router.Use(middle.DontPanic())

	s.router.Route(api.PathPrefix, func(r chi.Router) {
		r.With(optional).Get("/info", a.HTTPGetInfo())

		r.Post("/login", a.HTTPCreateLogin())
		r.With(required).Delete("/login/{id}", a.HTTPDeleteLogin())
		r.With(required).Post("/tokens", a.HTTPCreateToken())

		r.Route("/users", func(r chi.Router) {
			r.Use(required)
			r.Get("/", a.HTTPGetAllUsers())
			r.Post("/", a.HTTPCreateUser())
			r.Get("/{id}", a.HTTPGetUser())
			r.Patch("/{id}", a.HTTPUpdateUser())
			r.Delete("/{id}", a.HTTPDeleteUser())
		})

		r.Route("/grammars", func(r chi.Router) {
			r.Get("/", a.HTTPGetAllGrammars())
			r.Get("/{id}", a.HTTPGetGrammar())
			r.With(required).Post("/", a.HTTPCreateGrammar())
			r.With(required).Put("/{id}", a.HTTPUpdateGrammar())
			r.With(required).Delete("/{id}", a.HTTPDeleteGrammar())
		})

		// the engine itself: stateless per request, no auth
		r.Post("/tokenize", a.HTTPTokenize())
		r.Post("/suggestions", a.HTTPSuggest())
		r.Post("/validate", a.HTTPValidate())
		r.Post("/detect", a.HTTPDetect())

		r.Route("/sessions", func(r chi.Router) {
			r.Use(required)
			r.Get("/", a.HTTPGetAllSessions())
			r.Post("/", a.HTTPCreateSession())
			r.Get("/{id}", a.HTTPGetSession())
			r.Delete("/{id}", a.HTTPDeleteSession())
			r.Get("/{id}/revisions", a.HTTPGetAllRevisions())
			r.Post("/{id}/revisions", a.HTTPCreateRevision())
		})
	})
}

// grammarFileExts are the file extensions scanned for in a grammar pack
// directory.
var grammarFileExts = map[string]bool{
	".toml": true,
	".tacg": true,
	".json": true,
	".yaml": true,
	".yml":  true,
}

// loadGrammarPack registers every grammar definition found in dir. Files
// that fail to load are logged and skipped so one bad document does not take
// the whole server down.
func loadGrammarPack(reg *tac.Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !grammarFileExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		gs, err := tacgramio.LoadGrammarBundle(path)
		if err != nil {
			log.Printf("WARN  skipping grammar file %q: %s", path, err.Error())
			continue
		}
		tacgramio.RegisterAll(reg, gs)
	}

	return nil
}

// loadUploadedGrammars re-registers every grammar document previously
// uploaded through the API from persistence.
func loadUploadedGrammars(reg *tac.Registry, db dao.Store) error {
	ctx := context.Background()

	grams, err := db.Grammars().GetAll(ctx)
	if err != nil {
		return err
	}

	for _, g := range grams {
		data, err := db.GrammarData().GetByID(ctx, g.DataID)
		if err != nil {
			log.Printf("WARN  grammar %q has no stored document; skipping", g.Name)
			continue
		}

		gs, err := tacgramio.ParseDocument(data.Data, g.Format)
		if err != nil {
			log.Printf("WARN  stored grammar %q does not parse: %s", g.Name, err.Error())
			continue
		}
		tacgramio.RegisterAll(reg, gs)
	}

	return nil
}
