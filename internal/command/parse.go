package command

import (
	"strings"

	"github.com/softwarity/tac-editor/internal/tacerr"
)

var (
	// VerbAliases maps shorthand verbs (which must be the first word in a
	// command) to their canonical forms. They are all uppercase.
	VerbAliases map[string]string = map[string]string{
		"T":        "TYPE",
		">":        "TYPE",
		"S":        "SUGGEST",
		"SUG":      "SUGGEST",
		"E":        "EXPECT",
		"EXPECTED": "EXPECT",
		"V":        "VALIDATE",
		"VAL":      "VALIDATE",
		"CHECK":    "VALIDATE",
		"TOK":      "TOKENS",
		"SHOW":     "TOKENS",
		"G":        "GRAMMAR",
		"USE":      "GRAMMAR",
		"LS":       "GRAMMARS",
		"LIST":     "GRAMMARS",
		"D":        "DETECT",
		"TPL":      "TEMPLATE",
		"RESET":    "CLEAR",
		"BYE":      "QUIT",
		"EXIT":     "QUIT",
		"?":        "HELP",
		"/?":       "HELP",
		"/H":       "HELP",
		"-H":       "HELP",
		"H":        "HELP",
	}
)

// verbsWithArg maps each canonical verb that accepts an argument to whether
// the argument is required.
var verbsWithArg = map[string]bool{
	"TYPE":     true,
	"GRAMMAR":  true,
	"DETECT":   true,
	"SUGGEST":  false,
	"TEMPLATE": false,
	"VALIDATE": false,
	"HELP":     false,
}

// bareVerbs is the set of canonical verbs that take no argument at all.
var bareVerbs = map[string]bool{
	"EXPECT":   true,
	"TOKENS":   true,
	"GRAMMARS": true,
	"CLEAR":    true,
	"QUIT":     true,
}

// ParseCommand parses a command from the given text. If it cannot, a non-nil
// error is returned.
//
// If an empty string or a string composed only of whitespace is passed in,
// nil error is returned and a zero value for Command will be returned.
func ParseCommand(toParse string) (Command, error) {
	var parsedCmd Command

	trimmed := strings.TrimSpace(toParse)
	if trimmed == "" {
		return parsedCmd, nil
	}

	// only the verb is case-normalized; the argument may be a grammar name
	// or message text whose casing matters.
	firstWord := strings.Fields(trimmed)[0]
	verb := strings.ToUpper(firstWord)
	if expansion, ok := VerbAliases[verb]; ok {
		verb = expansion
	}

	rest := strings.TrimSpace(trimmed[len(firstWord):])
	parsedCmd.Verb = verb
	parsedCmd.Arg = rest

	if bareVerbs[verb] {
		if rest != "" {
			errMsg := "You can't %s *something*; type %s by itself"
			return parsedCmd, tacerr.Editorf(errMsg, firstWord, firstWord)
		}
		return parsedCmd, nil
	}

	required, known := verbsWithArg[verb]
	if !known {
		return parsedCmd, tacerr.Editorf("I don't know what you mean by %q", firstWord)
	}
	if required && rest == "" {
		switch verb {
		case "TYPE":
			return parsedCmd, tacerr.Editorf("I don't know what you want to type")
		case "GRAMMAR":
			return parsedCmd, tacerr.Editorf("I don't know which grammar you want to use")
		case "DETECT":
			return parsedCmd, tacerr.Editorf("I don't know what text you want to detect")
		default:
			return parsedCmd, tacerr.Editorf("%s needs an argument", verb)
		}
	}

	return parsedCmd, nil
}

// HELP to show commands
// TYPE text to append message text
// SUGGEST to show what could come next
// EXPECT to show the legal next token kinds
// VALIDATE to check the message
// TOKENS to show the tokenized buffer
// GRAMMAR name to switch grammars
// GRAMMARS to list them
// DETECT text to sniff a message type
// TEMPLATE to render the record skeleton
// CLEAR to start over
// QUIT the editor
