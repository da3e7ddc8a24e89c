// Package editor holds the state of one interactive TAC editing session and
// executes editor commands against the grammar engine.
package editor

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/softwarity/tac-editor/internal/command"
	"github.com/softwarity/tac-editor/internal/tac"
	"github.com/softwarity/tac-editor/internal/tacerr"
	"github.com/softwarity/tac-editor/internal/util"
)

var commandHelp = [][2]string{
	{"HELP", "show this help"},
	{"TYPE/T text", "append text to the message being edited"},
	{"SUGGEST/S", "show what could come next at the end of the message"},
	{"EXPECT/E", "show the token kinds legal at the current position"},
	{"VALIDATE/V [text]", "check the message (or the given text) for problems"},
	{"TOKENS/SHOW", "show the message broken into classified tokens"},
	{"GRAMMAR/USE name", "switch to the named grammar"},
	{"GRAMMARS/LS", "list the loaded grammars"},
	{"DETECT/D text", "report which grammar the given text belongs to"},
	{"TEMPLATE/TPL", "render the record-format skeleton for the grammar"},
	{"CLEAR/RESET", "discard the message and start over"},
	{"QUIT/BYE", "leave the editor"},
}

// Session is one in-progress TAC message edit: the engine it runs against,
// the text typed so far, and the message types the hosting editor supports.
type Session struct {
	// Engine is the grammar engine this session drives.
	Engine *tac.Engine

	// Buffer is the message text accumulated from TYPE commands.
	Buffer string

	// SupportedTypes restricts which grammar identifiers are offered as
	// start-of-message suggestions. Empty means all loaded grammars.
	SupportedTypes []string
}

// New creates a Session over the given engine.
func New(eng *tac.Engine, supportedTypes []string) Session {
	return Session{
		Engine:         eng,
		SupportedTypes: supportedTypes,
	}
}

// Advance executes the given command against the session. If there is a
// problem executing the command, it is given in the error output and the
// session is not advanced. If it is, the result of the command is written to
// the provided output stream.
//
// Invalid commands will be returned as non-nil errors as opposed to writing
// directly to the IO stream; the caller can decide whether to do this
// themself.
//
// Note that for this, QUIT is not considered a valid command as it would be
// on a controlling engine to end the session based on that.
func (s *Session) Advance(cmd command.Command, ostream *bufio.Writer) error {
	var output string

	switch cmd.Verb {
	case "QUIT":
		return tacerr.Editorf("I can't QUIT; I'm not being executed by a quitable engine")
	case "TYPE":
		out, err := s.typeText(cmd.Arg)
		if err != nil {
			return err
		}
		output = out
	case "SUGGEST":
		output = s.showSuggestions(cmd.Arg)
	case "EXPECT":
		output = s.showExpected()
	case "VALIDATE":
		text := cmd.Arg
		if text == "" {
			text = s.Buffer
		}
		output = s.showValidation(text)
	case "TOKENS":
		output = s.showTokens()
	case "GRAMMAR":
		if !s.Engine.SetGrammar(cmd.Arg) {
			return tacerr.Editorf("%q isn't a grammar I have loaded; try GRAMMARS", cmd.Arg)
		}
		s.Buffer = ""
		output = "Now editing " + cmd.Arg + " messages"
	case "GRAMMARS":
		output = s.showGrammars()
	case "DETECT":
		name, ok := s.Engine.DetectMessageType(cmd.Arg)
		if !ok {
			return tacerr.Editorf("that text doesn't start like any message type I know")
		}
		output = "Looks like a " + name + " message"
	case "TEMPLATE":
		out, err := s.showTemplate()
		if err != nil {
			return err
		}
		output = out
	case "CLEAR":
		s.Buffer = ""
		s.Engine.Reset()
		output = "Message cleared"
	case "HELP":
		ed := rosed.
			Edit("").
			WithOptions(rosed.Options{ParagraphSeparator: "\n"}).
			InsertDefinitionsTable(0, commandHelp, 80)
		output = ed.
			Insert(0, "Here are the commands you can use:\n").
			String()
	default:
		return tacerr.Editorf("I don't know how to %q", cmd.Verb)
	}

	// IO to give output:
	if !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	if _, err := ostream.WriteString(output); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := ostream.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}

	return nil
}

// typeText appends text to the message buffer, selects a grammar by
// detection if none is active yet, and re-feeds the tracker.
func (s *Session) typeText(text string) (string, error) {
	candidate := s.Buffer
	if candidate != "" {
		candidate += " "
	}
	candidate += text

	if _, ok := s.Engine.CurrentGrammar(); !ok {
		name, detected := s.Engine.DetectMessageType(candidate)
		if !detected {
			return "", tacerr.Editorf("I can't tell what message type that is; use GRAMMAR to pick one")
		}
		s.Engine.SetGrammar(name)
	}

	s.Buffer = candidate

	// the tracker walks kinds from the start of the message, so rebuild its
	// state from the whole buffer rather than just the new text.
	s.Engine.Reset()
	var unknown []string
	for _, tok := range s.Engine.Tokenize(s.Buffer) {
		if tok.IsWhitespace() {
			continue
		}
		if tok.Kind == tac.KindError {
			unknown = append(unknown, tok.Text)
			continue
		}
		s.Engine.TrackToken(tok.Kind)
	}

	out := "Message is now:\n" + s.Buffer
	if len(unknown) > 0 {
		out += "\nI don't recognize: " + strings.Join(unknown, ", ")
	}
	return out, nil
}

func (s *Session) showExpected() string {
	expected := s.Engine.ExpectedTokenIDs()
	if len(expected) == 0 {
		return "Nothing more is expected here"
	}
	sort.Strings(expected)
	return "Next could be " + util.MakeTextList(expected)
}

func (s *Session) showSuggestions(afterKind string) string {
	var sugs []tac.Suggestion
	if afterKind != "" {
		sugs = s.Engine.GetSuggestionsForTokenType(afterKind, "", s.SupportedTypes)
	} else {
		sugs = s.Engine.GetSuggestions(s.Buffer, len(s.Buffer), s.SupportedTypes)
	}
	if len(sugs) == 0 {
		return "I have no suggestions here"
	}

	data := [][]string{{"Suggestion", "Description"}}
	addRows(&data, sugs, "")

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}
	return rosed.Edit("").
		InsertTableOpts(0, data, 80, tableOpts).
		String()
}

func addRows(data *[][]string, sugs []tac.Suggestion, indent string) {
	for _, sug := range sugs {
		label := sug.Text
		if label == "" && sug.Placeholder != "" {
			label = "<" + sug.Placeholder + ">"
		}
		if label == "" && sug.Category != "" {
			label = sug.Category + "..."
		}
		*data = append(*data, []string{indent + label, sug.Description})
		addRows(data, sug.Children, indent+"  ")
	}
}

func (s *Session) showValidation(text string) string {
	result := s.Engine.Validate(text)
	if result.Valid {
		return "Looks good to me"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d problem(s):\n", len(result.Errors)))
	for _, e := range result.Errors {
		sb.WriteString(fmt.Sprintf("  at %d: %s\n", e.Position, e.Message))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (s *Session) showTokens() string {
	tokens := s.Engine.Tokenize(s.Buffer)
	if len(tokens) == 0 {
		return "The message is empty"
	}

	data := [][]string{{"Text", "Kind", "Style"}}
	for _, tok := range tokens {
		if tok.IsWhitespace() {
			continue
		}
		data = append(data, []string{tok.Text, tok.Kind, tok.Style})
	}

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}
	return rosed.Edit("").
		InsertTableOpts(0, data, 80, tableOpts).
		String()
}

func (s *Session) showGrammars() string {
	names := s.Engine.GrammarNames()
	if len(names) == 0 {
		return "No grammars are loaded"
	}
	sort.Strings(names)

	cur := ""
	if g, ok := s.Engine.CurrentGrammar(); ok {
		cur = g.Name
	}

	var sb strings.Builder
	for _, name := range names {
		marker := "  "
		if name == cur {
			marker = "* "
		}
		sb.WriteString(marker + name + "\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (s *Session) showTemplate() (string, error) {
	g, ok := s.Engine.CurrentGrammar()
	if !ok {
		return "", tacerr.Editorf("pick a grammar first with GRAMMAR")
	}
	if !g.TemplateMode || g.Template == nil {
		return "", tacerr.Editorf("%q isn't a record-format grammar", g.Name)
	}

	ident := g.Name
	if len(g.Identifiers) > 0 {
		ident = g.Identifiers[0]
	}
	state := tac.InitializeTemplate(g, ident)
	return state.GenerateText(), nil
}
