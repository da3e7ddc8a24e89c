package api

import (
	"time"

	"github.com/softwarity/tac-editor/internal/tac"
	"github.com/softwarity/tac-editor/server/dao"
)

// daoUserToModel converts a dao User entity into the model sent to clients.
// The password is never copied over.
func daoUserToModel(u dao.User) UserModel {
	m := UserModel{
		URI:            PathPrefix + "/users/" + u.ID.String(),
		ID:             u.ID.String(),
		Username:       u.Username,
		Role:           u.Role.String(),
		Created:        u.Created.Format(time.RFC3339),
		Modified:       u.Modified.Format(time.RFC3339),
		LastLogoutTime: u.LastLogoutTime.Format(time.RFC3339),
		LastLoginTime:  u.LastLoginTime.Format(time.RFC3339),
	}
	if u.Email != nil {
		m.Email = u.Email.Address
	}
	return m
}

func daoGrammarToModel(g dao.Grammar) GrammarModel {
	return GrammarModel{
		URI:         PathPrefix + "/grammars/" + g.ID.String(),
		ID:          g.ID.String(),
		Name:        g.Name,
		Category:    g.Category,
		Version:     g.Version,
		Description: g.Description,
		Format:      g.Format,
		Created:     g.Created.Format(time.RFC3339),
		Modified:    g.Modified.Format(time.RFC3339),
	}
}

func daoSessionToModel(s dao.Session) SessionModel {
	return SessionModel{
		URI:     PathPrefix + "/sessions/" + s.ID.String(),
		ID:      s.ID.String(),
		Grammar: s.GrammarName,
		Text:    s.Text,
		Created: s.Created.Format(time.RFC3339),
	}
}

func daoRevisionToModel(r dao.Revision) RevisionModel {
	return RevisionModel{
		URI:     PathPrefix + "/sessions/" + r.SessionID.String() + "/revisions/" + r.ID.String(),
		ID:      r.ID.String(),
		Text:    r.Text,
		Created: r.Created.Format(time.RFC3339),
	}
}

func tokensToModels(toks []tac.TokenizedToken) []TokenModel {
	out := make([]TokenModel, len(toks))
	for i, t := range toks {
		out[i] = TokenModel{
			Text:        t.Text,
			Kind:        t.Kind,
			Style:       t.Style,
			StartByte:   t.StartByte,
			EndByte:     t.EndByte,
			Description: t.Description,
			Error:       t.Error,
		}
	}
	return out
}

func suggestionsToModels(sugs []tac.Suggestion) []SuggestionModel {
	out := make([]SuggestionModel, len(sugs))
	for i, s := range sugs {
		m := SuggestionModel{
			ID:               s.ID,
			Text:             s.Text,
			Placeholder:      s.Placeholder,
			Description:      s.Description,
			Style:            s.Style,
			Category:         s.Category,
			AppendToPrevious: s.AppendToPrevious,
			SkipToNext:       s.SkipToNext,
			NewLineBefore:    s.NewLineBefore,
			SwitchGrammar:    s.SwitchGrammar,
		}
		if s.Editable != nil {
			start := s.Editable.Start
			end := s.Editable.End
			m.EditableStart = &start
			m.EditableEnd = &end
		}
		if len(s.Children) > 0 {
			m.Children = suggestionsToModels(s.Children)
		}
		out[i] = m
	}
	return out
}

func validationToModel(v tac.ValidationResult) ValidationModel {
	m := ValidationModel{
		Valid:  v.Valid,
		Errors: make([]ValidationErrorModel, len(v.Errors)),
	}
	for i, e := range v.Errors {
		m.Errors[i] = ValidationErrorModel{Message: e.Message, Position: e.Position}
	}
	return m
}
