// Package tacerr defines the error values shared by the TAC engine, the
// interactive editor, and the server, and handles splitting errors into an
// operator-facing message and a technical one.
package tacerr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownToken is the sentinel cause for a text span that matches no
	// entry in the active grammar's token table.
	ErrUnknownToken = errors.New("unknown token")

	// ErrMissingField is the sentinel cause for a required message field that
	// never appeared in the token stream.
	ErrMissingField = errors.New("missing required field")

	// ErrCycle is the sentinel cause for a grammar whose extends chain refers
	// back to itself.
	ErrCycle = errors.New("extends cycle")

	// ErrDangling is the sentinel cause for a grammar whose extends target is
	// not registered.
	ErrDangling = errors.New("extends target not registered")

	// ErrUnknownGrammar is the sentinel cause for selecting a grammar name
	// that is not in the resolved set.
	ErrUnknownGrammar = errors.New("unknown grammar")

	// ErrBadArgument is the sentinel cause for a caller-supplied value that
	// fails validation before any work is attempted.
	ErrBadArgument = errors.New("bad argument")

	// ErrNotFound is the sentinel cause for a lookup of an entity that does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is the sentinel cause for creating an entity under a
	// key that is already taken.
	ErrAlreadyExists = errors.New("already exists")
)

// editorError is an error caused by attempting to interpret operator input.
// Either the input could not be understood or it asks for something that is
// impossible or not allowed at the current time.
//
// editorError includes a human-readable message to show to an operator as
// well as a typical more technical "error message" style message.
type editorError struct {
	msg   string
	human string
	wrap  error
}

func (e *editorError) Error() string {
	return e.msg
}

// EditorMessage shows the message that should be displayed in the editor to
// describe the error.
func (e *editorError) EditorMessage() string {
	return e.human
}

// Unwrap gives the error that the editorError wraps, if it wraps one.
func (e *editorError) Unwrap() error {
	return e.wrap
}

// Editor returns a new error that has both the message to show the operator
// and the technical description of the error.
func Editor(human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got editor error %q", human)
	}
	return &editorError{
		msg:   technical,
		human: human,
	}
}

// Editorf returns a new error that has a message to show to the operator and
// an automatically generated Error() description. The arguments given are the
// format string and the arguments to the format string.
func Editorf(humanFormat string, a ...interface{}) error {
	humanMessage := fmt.Sprintf(humanFormat, a...)
	return Editor(humanMessage, "")
}

// WrapEditor returns a new error that has both the message to show the
// operator and the technical description of the error, and that wraps the
// given error.
func WrapEditor(e error, human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got editor error %q", human)
	}
	return &editorError{
		msg:   technical,
		human: human,
		wrap:  e,
	}
}

// WrapEditorf returns a new error that has both the message to show the
// operator and an automatically generated Error() description, and that wraps
// the given error. The arguments given are the error to wrap, then the format
// followed by its arguments.
func WrapEditorf(e error, humanFormat string, a ...interface{}) error {
	humanMessage := fmt.Sprintf(humanFormat, a...)
	return WrapEditor(e, humanMessage, "")
}

// EditorMessage gets the message to display on the console for the given
// error. If it is one of the types defined in tacerr, the special
// operator-facing message is returned (if it exists). Otherwise, err.Error()
// is returned.
func EditorMessage(err error) string {
	var edErr *editorError
	if errors.As(err, &edErr) {
		return edErr.EditorMessage()
	}
	return err.Error()
}
