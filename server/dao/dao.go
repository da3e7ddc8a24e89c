// Package dao provides data access objects for use in the TAC editor server.
package dao

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/softwarity/tac-editor/internal/tac"
)

// Store holds all the repositories.
type Store interface {
	Users() UserRepository
	Registrations() RegistrationRepository
	Grammars() GrammarRepository
	GrammarData() GrammarDataRepository
	Revisions() RevisionRepository
	Sessions() SessionRepository
	Close() error
}

type RevisionRepository interface {
	Create(ctx context.Context, rev Revision) (Revision, error)
	GetByID(ctx context.Context, id uuid.UUID) (Revision, error)

	// GetAll retrieves all Revisions from persistence. If notBefore is
	// non-nil, the revisions are filtered such that only ones on or after
	// that time are included. If notAfter is non-nil, the revisions are
	// filtered such that only ones on or before that time are included.
	GetAll(ctx context.Context, notBefore *time.Time, notAfter *time.Time) ([]Revision, error)

	// GetAllByUser retrieves Revisions for all edit sessions of a given
	// user. If notBefore is non-nil, the revisions are filtered such that
	// only ones on or after that time are included. If notAfter is non-nil,
	// the revisions are filtered such that only ones on or before that time
	// are included.
	GetAllByUser(ctx context.Context, userID uuid.UUID, notBefore *time.Time, notAfter *time.Time) ([]Revision, error)

	// GetAllBySession retrieves all Revisions for a given edit session from
	// persistence.
	GetAllBySession(ctx context.Context, sessionID uuid.UUID) ([]Revision, error)
	Update(ctx context.Context, id uuid.UUID, rev Revision) (Revision, error)
	Delete(ctx context.Context, id uuid.UUID) (Revision, error)
	Close() error
}

// Revision is one submission of message text into an edit session: the full
// text of the TAC message as it stood after the submission.
type Revision struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Created   time.Time
	Text      string
}

type GrammarDataRepository interface {
	Create(ctx context.Context, data GrammarData) (GrammarData, error)
	GetByID(ctx context.Context, id uuid.UUID) (GrammarData, error)
	Update(ctx context.Context, id uuid.UUID, data GrammarData) (GrammarData, error)
	Delete(ctx context.Context, id uuid.UUID) (GrammarData, error)
	Close() error
}

// GrammarData is the raw bytes of a grammar definition document, stored
// separately from the Grammar metadata row that refers to it.
type GrammarData struct {
	ID   uuid.UUID
	Data []byte
}

type GrammarRepository interface {
	Create(ctx context.Context, g Grammar) (Grammar, error)
	GetByID(ctx context.Context, id uuid.UUID) (Grammar, error)
	GetByName(ctx context.Context, name string) (Grammar, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]Grammar, error)
	GetAll(ctx context.Context) ([]Grammar, error)
	Update(ctx context.Context, id uuid.UUID, g Grammar) (Grammar, error)
	Delete(ctx context.Context, id uuid.UUID) (Grammar, error)
	Close() error
}

// Grammar is the metadata row for one registered grammar document. The
// document bytes themselves live in GrammarData, keyed by DataID.
type Grammar struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Category    string
	Version     string
	Description string

	// Format names the encoding of the stored document: "toml", "json", or
	// "yaml".
	Format string

	Created  time.Time
	Modified time.Time

	// DataID is the GrammarData row holding the document bytes.
	DataID uuid.UUID
}

type SessionRepository interface {
	Create(ctx context.Context, sesh Session) (Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]Session, error)
	GetAllByGrammar(ctx context.Context, grammarName string) ([]Session, error)
	GetAll(ctx context.Context) ([]Session, error)
	Update(ctx context.Context, id uuid.UUID, sesh Session) (Session, error)
	Delete(ctx context.Context, id uuid.UUID) (Session, error)
	Close() error
}

// Session is one in-progress message edit: the grammar it is being edited
// under, the latest full text, and a snapshot of the structure tracker's
// state so an editor can resume where it left off.
type Session struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	GrammarName string
	Created     time.Time
	Text        string
	State       *tac.TrackerState
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg Registration) (Registration, error)
	GetByID(ctx context.Context, id uuid.UUID) (Registration, error)
	GetAll(ctx context.Context) ([]Registration, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]Registration, error)
	Update(ctx context.Context, id uuid.UUID, reg Registration) (Registration, error)
	Delete(ctx context.Context, id uuid.UUID) (Registration, error)
	Close() error
}

type Registration struct {
	ID      uuid.UUID // PK, NOT NULL
	UserID  uuid.UUID // FK (Many-to-One User.ID), NOT NULL
	Code    string    // NOT NULL
	Created time.Time // NOT NULL DEFAULT NOW()
	Expires time.Time // NOT NULL
}

type UserRepository interface {

	// Create creates a new User. All attributes except for auto-generated
	// fields are taken from the provided User.
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)

	// Close closes the connection.
	Close() error
}

type Role int

const (
	Guest Role = iota
	Unverified
	Normal

	Admin Role = 100
)

func (r Role) String() string {
	switch r {
	case Guest:
		return "guest"
	case Unverified:
		return "unverified"
	case Normal:
		return "normal"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func ParseRole(s string) (Role, error) {
	check := strings.ToLower(s)
	switch check {
	case "guest":
		return Guest, nil
	case "unverified":
		return Unverified, nil
	case "normal":
		return Normal, nil
	case "admin":
		return Admin, nil
	default:
		return Guest, fmt.Errorf("must be one of 'guest', 'unverified', 'normal', or 'admin'")
	}
}

type User struct {
	ID             uuid.UUID     // PK, NOT NULL
	Username       string        // UNIQUE, NOT NULL
	Password       string        // NOT NULL
	Email          *mail.Address // NOT NULL
	Role           Role          // NOT NULL
	Created        time.Time     // NOT NULL
	Modified       time.Time
	LastLogoutTime time.Time // NOT NULL DEFAULT NOW()
	LastLoginTime  time.Time // NOT NULL
}
