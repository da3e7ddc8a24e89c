package api

// note that these are *not* the DAO models; those are distinct and closer to
// the DB format they are in. Rather these are the models that are received
// from and sent to the client.

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type InfoModel struct {
	Version struct {
		Server string `json:"server"`
		Engine string `json:"engine"`
	} `json:"version"`
}

type UserModel struct {
	URI            string `json:"uri"`
	ID             string `json:"id,omitempty"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	Email          string `json:"email,"`
	Role           string `json:"role,omitempty"`
	Created        string `json:"created,omitempty"`
	Modified       string `json:"modified,omitempty"`
	LastLogoutTime string `json:"last_logout,omitempty"`
	LastLoginTime  string `json:"last_login,omitempty"`
}

type UserUpdateRequest struct {
	ID       UpdateString `json:"id,omitempty"`
	Username UpdateString `json:"username,omitempty"`
	Password UpdateString `json:"password,omitempty"`
	Email    UpdateString `json:"email,"`
	Role     UpdateString `json:"role,omitempty"`
}

type UpdateString struct {
	Update bool   `json:"u,omitempty"`
	Value  string `json:"v,omitempty"`
}

type GrammarModel struct {
	URI         string `json:"uri"`
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Category    string `json:"category,omitempty"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
	Created     string `json:"created,omitempty"`
	Modified    string `json:"modified,omitempty"`

	// Document is the grammar definition document itself; its encoding is
	// named by Format.
	Document string `json:"document,omitempty"`
	Format   string `json:"format,omitempty"`
}

type GrammarCreateRequest struct {
	Format   string `json:"format"`
	Document string `json:"document"`
}

type TokenModel struct {
	Text        string `json:"text"`
	Kind        string `json:"kind"`
	Style       string `json:"style,omitempty"`
	StartByte   int    `json:"start"`
	EndByte     int    `json:"end"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

type SuggestionModel struct {
	ID               string            `json:"id,omitempty"`
	Text             string            `json:"text,omitempty"`
	Placeholder      string            `json:"placeholder,omitempty"`
	Description      string            `json:"description,omitempty"`
	Style            string            `json:"style,omitempty"`
	Category         string            `json:"category,omitempty"`
	EditableStart    *int              `json:"editable_start,omitempty"`
	EditableEnd      *int              `json:"editable_end,omitempty"`
	AppendToPrevious bool              `json:"append_to_previous,omitempty"`
	SkipToNext       bool              `json:"skip_to_next,omitempty"`
	NewLineBefore    bool              `json:"new_line_before,omitempty"`
	SwitchGrammar    string            `json:"switch_grammar,omitempty"`
	Children         []SuggestionModel `json:"children,omitempty"`
}

type ValidationErrorModel struct {
	Message  string `json:"message"`
	Position int    `json:"position"`
}

type ValidationModel struct {
	Valid  bool                   `json:"valid"`
	Errors []ValidationErrorModel `json:"errors"`
}

type TokenizeRequest struct {
	Grammar string `json:"grammar,omitempty"`
	Text    string `json:"text"`
}

type TokenizeResponse struct {
	Grammar string       `json:"grammar"`
	Tokens  []TokenModel `json:"tokens"`
}

type SuggestRequest struct {
	Grammar        string   `json:"grammar,omitempty"`
	Text           string   `json:"text"`
	Cursor         *int     `json:"cursor,omitempty"`
	TokenKind      string   `json:"token_kind,omitempty"`
	PrevText       string   `json:"prev_text,omitempty"`
	LabelKind      string   `json:"label_kind,omitempty"`
	SupportedTypes []string `json:"supported_types,omitempty"`
}

type ValidateRequest struct {
	Grammar string `json:"grammar,omitempty"`
	Text    string `json:"text"`
}

type DetectRequest struct {
	Text string `json:"text"`
}

type DetectResponse struct {
	Grammar string `json:"grammar"`
}

type SessionModel struct {
	URI     string `json:"uri"`
	ID      string `json:"id,omitempty"`
	Grammar string `json:"grammar,omitempty"`
	Text    string `json:"text"`
	Created string `json:"created,omitempty"`
}

type SessionCreateRequest struct {
	Grammar string `json:"grammar"`
}

type RevisionModel struct {
	URI     string `json:"uri"`
	ID      string `json:"id,omitempty"`
	Text    string `json:"text"`
	Created string `json:"created,omitempty"`
}

type RevisionCreateRequest struct {
	Text string `json:"text"`
}

type RevisionOutcomeModel struct {
	Revision   RevisionModel   `json:"revision"`
	Tokens     []TokenModel    `json:"tokens"`
	Expected   []string        `json:"expected"`
	Validation ValidationModel `json:"validation"`
}
