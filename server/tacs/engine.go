package tacs

import (
	"github.com/softwarity/tac-editor/internal/tac"
	"github.com/softwarity/tac-editor/server/serr"
)

// selectGrammar activates grammarName on eng, or detects one from text if
// grammarName is empty.
func selectGrammar(eng *tac.Engine, grammarName, text string) (string, error) {
	if grammarName == "" {
		detected, ok := eng.DetectMessageType(text)
		if !ok {
			return "", serr.New("cannot detect the message type; specify a grammar", serr.ErrBadArgument)
		}
		grammarName = detected
	}
	if !eng.SetGrammar(grammarName) {
		return "", serr.New("no loaded grammar named "+grammarName, serr.ErrNotFound)
	}
	return grammarName, nil
}

// Tokenize slices text into classified tokens under the named grammar, or
// under the detected grammar if grammarName is empty.
func (svc *Service) Tokenize(grammarName, text string) ([]tac.TokenizedToken, error) {
	eng := svc.engine()
	if _, err := selectGrammar(eng, grammarName, text); err != nil {
		return nil, err
	}
	return eng.Tokenize(text), nil
}

// Suggest returns the autocomplete suggestions for the position given by
// cursor within text. With no grammar named and none detectable, the
// start-of-message identifier suggestions for supportedTypes are returned.
func (svc *Service) Suggest(grammarName, text string, cursor int, supportedTypes []string) ([]tac.Suggestion, error) {
	eng := svc.engine()
	if grammarName != "" || text != "" {
		if _, err := selectGrammar(eng, grammarName, text); err != nil {
			// fall through to initial suggestions only when nothing was
			// pinned or detectable
			if grammarName != "" {
				return nil, err
			}
		}
	}
	return eng.GetSuggestions(text, cursor, supportedTypes), nil
}

// SuggestForKind returns the suggestions that follow a token of the given
// kind under the named grammar. kind == "" means start-of-message.
func (svc *Service) SuggestForKind(grammarName, kind, prevText string, supportedTypes []string) ([]tac.Suggestion, error) {
	eng := svc.engine()
	if grammarName != "" {
		if !eng.SetGrammar(grammarName) {
			return nil, serr.New("no loaded grammar named "+grammarName, serr.ErrNotFound)
		}
	}
	return eng.GetSuggestionsForTokenType(kind, prevText, supportedTypes), nil
}

// TemplateSuggestions returns the suggestions declared for the template
// field with the given labelKind under the named grammar.
func (svc *Service) TemplateSuggestions(grammarName, labelKind string) ([]tac.Suggestion, error) {
	eng := svc.engine()
	if !eng.SetGrammar(grammarName) {
		return nil, serr.New("no loaded grammar named "+grammarName, serr.ErrNotFound)
	}
	return eng.GetTemplateSuggestions(labelKind), nil
}

// Validate tokenizes text under the named (or detected) grammar and runs
// per-token and structural checks.
func (svc *Service) Validate(grammarName, text string) (tac.ValidationResult, error) {
	eng := svc.engine()
	if _, err := selectGrammar(eng, grammarName, text); err != nil {
		return tac.ValidationResult{}, err
	}
	return eng.Validate(text), nil
}

// Detect returns the name of the grammar whose identifier matches the start
// of text.
func (svc *Service) Detect(text string) (string, error) {
	eng := svc.engine()
	name, ok := eng.DetectMessageType(text)
	if !ok {
		return "", serr.New("the text does not start like any loaded message type", serr.ErrNotFound)
	}
	return name, nil
}
