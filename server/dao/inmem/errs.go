package inmem

import "github.com/softwarity/tac-editor/server/dao"

// The in-memory repositories report failures with the same error values the
// rest of the dao layer uses, so callers never have to care which backend is
// behind the Store.
var (
	ErrConstraintViolation = dao.ErrConstraintViolation
	ErrNotFound            = dao.ErrNotFound
)
