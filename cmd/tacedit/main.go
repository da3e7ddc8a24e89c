/*
Tacedit starts an interactive TAC message editing session.

It reads in a directory or bundle of grammar definition files and starts the
editor with no message loaded. The editor will then print the result of each
command to stdout and will read editor commands from stdin until the "QUIT"
command is input.

Usage:

	tacedit [flags]

The flags are:

	-v, --version
		Give the current version of the TAC editor and then exit.

	-g, --grammars FILE
		Use the provided TACG grammar definition or manifest file for the
		loaded grammars. Defaults to the file "grammars.tacg" in the current
		working directory.

	-t, --types TYPES
		Restrict the message types offered for a new message to the given
		comma-separated list of grammar identifiers (e.g. "METAR,TAF").

	-d, --direct
	    Force reading directly from the console as opposed to using GNU
		readline based routines for reading command input even if launched in
		a tty with stdin and stdout.

	-c, --command COMMANDS
		Immediately run the given command(s) at start. Can be multiple
		commands separated by the ";" character.

Once a session has started, the user input will be parsed for editor
commands. For an explanation of the commands, type "HELP" once in a session.
To exit the editor, type "QUIT".
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	taceditor "github.com/softwarity/tac-editor"
	"github.com/softwarity/tac-editor/internal/version"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitEditorError indicates an unsuccessful program execution due to a
	// problem during the editing session.
	ExitEditorError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue initializing the engine.
	ExitInitError
)

var (
	returnCode   int     = ExitSuccess
	flagVersion  *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	grammarsFile *string = pflag.StringP("grammars", "g", "grammars.tacg", "The TACG grammar definition or manifest file to load")
	typesFlag    *string = pflag.StringP("types", "t", "", "Comma-separated list of message types to offer (default: all loaded)")
	forceDirect  *bool   = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
	startCommand *string = pflag.StringP("command", "c", "", "Execute the given editor commands immediately at start and leave the editor open")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	var startCommands []string
	if *startCommand != "" {
		startCommands = strings.Split(*startCommand, ";")
	}

	var supportedTypes []string
	if *typesFlag != "" {
		for _, t := range strings.Split(*typesFlag, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				supportedTypes = append(supportedTypes, strings.ToUpper(t))
			}
		}
	}

	editEng, initErr := taceditor.New(os.Stdin, os.Stdout, *grammarsFile, supportedTypes, *forceDirect)
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer editEng.Close()

	err := editEng.RunUntilQuit(startCommands)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitEditorError
		return
	}
}
