// Package sqlite provides a SQLite-backed implementation of the dao store,
// using database/sql over the modernc.org driver. Grammar document bytes are
// kept in their own table file so the main DB stays small.
package sqlite

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"path/filepath"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/softwarity/tac-editor/internal/tac"
	"github.com/softwarity/tac-editor/server/dao"
	"github.com/softwarity/tac-editor/server/serr"
)

type store struct {
	dbFilename            string
	grammarDataDBFilename string

	db            *sql.DB
	grammarDataDB *sql.DB

	users  *UsersDB
	regs   *RegistrationsDB
	grams  *GrammarsDB
	gd     *GrammarDatasDB
	seshes *SessionsDB
	revs   *RevisionsDB
}

func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{
		dbFilename:            "data.db",
		grammarDataDBFilename: "grammars.db",
	}

	fileName := filepath.Join(storageDir, st.dbFilename)
	grammarFileName := filepath.Join(storageDir, st.grammarDataDBFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}
	st.grammarDataDB, err = sql.Open("sqlite", grammarFileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.gd = &GrammarDatasDB{db: st.grammarDataDB}
	if err := st.gd.init(); err != nil {
		return nil, err
	}

	st.users = &UsersDB{db: st.db}
	if err := st.users.init(); err != nil {
		return nil, err
	}

	st.regs = &RegistrationsDB{db: st.db}
	if err := st.regs.init(true); err != nil {
		return nil, err
	}

	st.grams = &GrammarsDB{db: st.db}
	if err := st.grams.init(true); err != nil {
		return nil, err
	}

	st.seshes = &SessionsDB{db: st.db}
	if err := st.seshes.init(true); err != nil {
		return nil, err
	}

	st.revs = &RevisionsDB{db: st.db}
	if err := st.revs.init(true); err != nil {
		return nil, err
	}

	return st, nil
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
	grammarsDBErr := s.grammarDataDB.Close()
	mainDBErr := s.db.Close()

	var err error
	if grammarsDBErr != nil {
		err = fmt.Errorf("%s: %w", s.grammarDataDBFilename, grammarsDBErr)
	}
	if mainDBErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally: %s: %w", err.Error(), s.dbFilename, mainDBErr)
		} else {
			err = fmt.Errorf("%s: %w", s.dbFilename, mainDBErr)
		}
	}
	return err
}

// convertToDB_Role converts a dao.Role to storage DB format.
func convertToDB_Role(r dao.Role) string {
	return r.String()
}

// convertToDB_Email converts a *mail.Address to storage DB format. If the
// pointer is nil, it will return the zero value.
func convertToDB_Email(email *mail.Address) string {
	if email == nil {
		return ""
	}
	return email.Address
}

// convertToDB_UUID converts a uuid.UUID to storage DB format on disk.
func convertToDB_UUID(u uuid.UUID) string {
	return u.String()
}

// convertToDB_Time converts a time.Time to storage DB format on disk.
func convertToDB_Time(t time.Time) int64 {
	return t.Unix()
}

// convertToDB_ByteSlice converts bytes to storage DB format on disk.
func convertToDB_ByteSlice(b []byte) string {
	if len(b) < 1 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

// convertToDB_TrackerStatePtr converts a *tac.TrackerState to storage DB
// format on disk. If the pointer is nil, it will return the zero value.
func convertToDB_TrackerStatePtr(st *tac.TrackerState) string {
	if st == nil {
		return ""
	}

	// first get the rezi-encoded bytes
	stateData := rezi.EncBinary(trackerStateBinary{st})
	return convertToDB_ByteSlice(stateData)
}

// convertFromDB_Email converts storage DB format value to a *mail.Address
// and stores it at the address pointed to by target. If the zero value is
// provided, target is set to a nil pointer. If there is a problem with the
// decoding, the returned error will be of type serr.Error, and will wrap
// dao.ErrDecodingFailure. If this function returns a non-nil error, target
// will not have been modified.
func convertFromDB_Email(s string, target **mail.Address) error {
	if s == "" {
		*target = nil
		return nil
	}

	email, err := mail.ParseAddress(s)
	if err != nil {
		return serr.New("", err, dao.ErrDecodingFailure)
	}

	*target = email
	return nil
}

// convertFromDB_Role converts storage DB format value to a dao.Role and
// stores it at the address pointed to by target. If there is a problem with
// the decoding, the returned error will be of type serr.Error, and will wrap
// dao.ErrDecodingFailure. If this function returns a non-nil error, target
// will not have been modified.
func convertFromDB_Role(s string, target *dao.Role) error {
	r, err := dao.ParseRole(s)
	if err != nil {
		return serr.New("", err, dao.ErrDecodingFailure)
	}
	*target = r
	return nil
}

// convertFromDB_UUID converts storage DB format value to a uuid.UUID and
// stores it at the address pointed to by target. If there is a problem with
// the decoding, the returned error will be of type serr.Error, and will wrap
// dao.ErrDecodingFailure. If this function returns a non-nil error, target
// will not have been modified.
func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return serr.New("", err, dao.ErrDecodingFailure)
	}
	*target = u
	return nil
}

// convertFromDB_Time converts storage DB format value to a time.Time and
// stores it at the address pointed to by target.
func convertFromDB_Time(i int64, target *time.Time) error {
	t := time.Unix(i, 0)
	*target = t
	return nil
}

// convertFromDB_ByteSlice converts storage DB format string to an actual
// byte slice and stores it at the address pointed to by target. If there is
// a problem with the decoding, the returned error will be of type
// serr.Error, and will wrap dao.ErrDecodingFailure. If this function returns
// a non-nil error, target will not have been modified.
func convertFromDB_ByteSlice(s string, target *[]byte) error {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return serr.New("", err, dao.ErrDecodingFailure)
	}
	*target = decoded
	return nil
}

// convertFromDB_TrackerStatePtr converts a storage DB format string to an
// actual tracker state pointer and stores it at the address pointed to by
// target. If the zero value is provided, target is set to a nil pointer. If
// there is a problem with the decoding, the returned error will be of type
// serr.Error, and will wrap dao.ErrDecodingFailure. If this function returns
// a non-nil error, target will not have been modified.
func convertFromDB_TrackerStatePtr(s string, target **tac.TrackerState) error {
	if s == "" {
		*target = nil
		return nil
	}

	// first, need to get a byte slice
	var stateData []byte
	err := convertFromDB_ByteSlice(s, &stateData)
	if err != nil {
		return serr.New("decode stored to bytes", err)
	}

	st := tac.NewTrackerState()
	bin := trackerStateBinary{&st}
	n, err := rezi.DecBinary(stateData, &bin)
	if err != nil {
		return serr.New("REZI decode", err, dao.ErrDecodingFailure)
	}
	if n != len(stateData) {
		return serr.New(fmt.Sprintf("REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(stateData)), dao.ErrDecodingFailure)
	}

	*target = bin.st
	return nil
}

// trackerStateBinary adapts tac.TrackerState to the binary codec interfaces
// rezi's EncBinary/DecBinary drive.
type trackerStateBinary struct {
	st *tac.TrackerState
}

type trackerStateWire struct {
	Counts       map[string]int `json:"counts"`
	Choices      map[string]int `json:"choices"`
	CurrentIndex int            `json:"currentIndex"`
}

func (b trackerStateBinary) MarshalBinary() ([]byte, error) {
	return json.Marshal(trackerStateWire{
		Counts:       b.st.Counts,
		Choices:      b.st.Choices,
		CurrentIndex: b.st.CurrentIndex,
	})
}

func (b *trackerStateBinary) UnmarshalBinary(data []byte) error {
	var wire trackerStateWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Counts == nil {
		wire.Counts = map[string]int{}
	}
	if wire.Choices == nil {
		wire.Choices = map[string]int{}
	}
	b.st.Counts = wire.Counts
	b.st.Choices = wire.Choices
	b.st.CurrentIndex = wire.CurrentIndex
	return nil
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
