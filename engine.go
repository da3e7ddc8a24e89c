// Package taceditor contains a CLI-driven engine for editing aviation TAC
// messages interactively: it reads editor commands and applies them to a
// grammar-engine-backed editing session continuously until the user quits.
package taceditor

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/rosed"
	"github.com/softwarity/tac-editor/internal/command"
	"github.com/softwarity/tac-editor/internal/editor"
	"github.com/softwarity/tac-editor/internal/input"
	"github.com/softwarity/tac-editor/internal/tac"
	"github.com/softwarity/tac-editor/internal/tacerr"
	"github.com/softwarity/tac-editor/internal/tacgramio"
)

// Engine contains the things needed to run an editing session from an
// interactive shell attached to an input stream and an output stream.
type Engine struct {
	session     editor.Session
	in          command.Reader
	out         *bufio.Writer
	forceDirect bool
	running     bool
}

const consoleOutputWidth = 80

// New creates a new engine ready to operate on the given input and output
// streams. It will immediately open a buffered reader on the input stream
// and a buffered writer on the output stream.
//
// If nil is given for the input stream, a bufio.Reader is opened on stdin.
// If nil is given for the output stream, a bufio.Writer is opened on stdout.
func New(inputStream io.Reader, outputStream io.Writer, grammarPath string, supportedTypes []string, forceDirectInput bool) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	// load grammar bundle
	grammars, err := tacgramio.LoadGrammarBundle(grammarPath)
	if err != nil {
		return nil, err
	}

	eng := &Engine{
		out:         bufio.NewWriter(outputStream),
		running:     false,
		forceDirect: forceDirectInput,
	}

	useReadline := !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout

	if useReadline {
		eng.in, err = input.NewInteractiveReader()
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		eng.in = input.NewDirectReader(inputStream)
	}

	tacEng := tac.NewEngine(nil)
	tacgramio.RegisterAll(tacEng.Registry(), grammars)
	for _, warning := range tacEng.ResolveInheritance() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	eng.session = editor.New(tacEng, supportedTypes)

	return eng, nil
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running editor engine")
	}

	err := eng.in.Close()
	if err != nil {
		return fmt.Errorf("close command reader: %w", err)
	}

	return nil
}

// RunUntilQuit begins reading commands from the streams and applying them to
// the editing session until the QUIT command is received. Any startCommands
// are executed first, as though the user had typed them.
func (eng *Engine) RunUntilQuit(startCommands []string) error {
	introMsg := "Welcome to the TAC Editor\n"
	if eng.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "=========================\n"
	introMsg += "\n"
	introMsg += "Type a command, or HELP to see what I understand\n"

	if _, err := eng.out.WriteString(introMsg); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}

	eng.running = true
	// so we dont have to remember to do this on every returned error condition
	defer func() {
		eng.running = false
	}()

	for _, raw := range startCommands {
		cmd, err := command.ParseCommand(raw)
		if err != nil {
			return fmt.Errorf("start command %q: %w", raw, err)
		}
		if cmd.Verb == "" {
			continue
		}
		if cmd.Verb == "QUIT" {
			eng.running = false
			break
		}
		if err := eng.session.Advance(cmd, eng.out); err != nil {
			consoleMessage := tacerr.EditorMessage(err)
			consoleMessage = rosed.Edit(consoleMessage).Wrap(consoleOutputWidth).String()
			if _, err := eng.out.WriteString(consoleMessage + "\n"); err != nil {
				return fmt.Errorf("could not write output: %w", err)
			}
			if err := eng.out.Flush(); err != nil {
				return fmt.Errorf("could not flush output: %w", err)
			}
		}
	}

	for eng.running {
		cmd, err := command.Get(eng.in, eng.out)
		if err != nil {
			return fmt.Errorf("get user command: %w", err)
		}

		// special check: the session will not use the QUIT command, only a
		// runner can do that. so check if that's what we got
		if cmd.Verb == "QUIT" {
			eng.running = false
			break
		}

		err = eng.session.Advance(cmd, eng.out)
		if err != nil {
			consoleMessage := tacerr.EditorMessage(err)
			consoleMessage = rosed.Edit(consoleMessage).Wrap(consoleOutputWidth).String()
			if _, err := eng.out.WriteString(consoleMessage + "\n"); err != nil {
				return fmt.Errorf("could not write output: %w", err)
			}
			if err := eng.out.Flush(); err != nil {
				return fmt.Errorf("could not flush output: %w", err)
			}
		}
	}

	if _, err := eng.out.WriteString("Goodbye\n"); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}

	return nil
}
