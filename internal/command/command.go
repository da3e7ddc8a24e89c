// Package command defines editor command data types and handles parsing of
// commands from input sources.
package command

// Command is a valid command received from an editor input source.
type Command struct {

	// Verb is the canonical name of the command being invoked, such as
	// "TYPE", "SUGGEST", "VALIDATE", or "QUIT". Some verbs have shorthand
	// forms which are typed differently, for instance "V" could be typed
	// instead of "VALIDATE", or "?" instead of "HELP", and for all those
	// cases they would result in a Command with the canonical verb.
	Verb string

	// Arg is the remainder of the command line after the verb, with its
	// original casing preserved. For TYPE this is the message text to
	// append; for GRAMMAR it is the grammar name; for DETECT it is the text
	// to sniff. Verbs that take no argument leave it empty.
	Arg string
}
