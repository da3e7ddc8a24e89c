package tac

import "strings"

// ValidationError is one diagnostic produced by Validate: either an inline
// "Unknown token" error positioned at the offending span, or a "missing
// required field" error positioned at the end of the text.
type ValidationError struct {
	Message  string
	Position int
}

// ValidationResult is the outcome of Validate: Valid is true iff Errors is
// empty.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// requiredKindAliases maps a semantic field name used by the structural
// checks below to the possible token kind IDs a grammar document may use for
// it, so that Validate does not depend on one fixed vocabulary of IDs.
var requiredKindAliases = map[string][]string{
	"identifier":  {"identifier"},
	"icao":        {"icao", "station"},
	"datetime":    {"datetime", "dtg"},
	"issueTime":   {"issueTime", "datetime", "dtg"},
	"validity":    {"validity", "validityPeriod"},
	"wind":        {"wind"},
	"visibility":  {"visibility"},
	"cavok":       {"cavok"},
	"temperature": {"temperature"},
	"pressure":    {"pressure", "qnh"},
	"cloud":       {"cloud"},
	"nsc":         {"nsc"},
	"nil":         {"nil"},
	"cnl":         {"cnl"},
}

// Validate tokenizes text under g and runs its per-token and structural
// checks. It never panics; an unrecognized or nil grammar simply
// yields per-token checks with no structural checks.
func Validate(text string, g *Grammar) ValidationResult {
	tokens := Tokenize(text, g)

	var errs []ValidationError
	present := make(map[string]bool)
	firstKind := ""
	var endPos int

	for _, t := range tokens {
		endPos = t.EndByte
		if t.IsWhitespace() {
			continue
		}
		if firstKind == "" {
			firstKind = t.Kind
		}
		present[t.Kind] = true
		if t.Kind == KindError {
			errs = append(errs, ValidationError{
				Message:  "Unknown token: " + t.Text,
				Position: t.StartByte,
			})
		}
	}

	has := func(alias string) bool {
		for _, id := range requiredKindAliases[alias] {
			if present[id] {
				return true
			}
		}
		return false
	}

	if g != nil {
		switch {
		case g.TemplateMode:
			errs = append(errs, validateTemplateStructure(g, present, endPos)...)
		case g.Category == "METAR" || g.Category == "SPECI":
			errs = append(errs, validateMetarStructure(has, firstKind, endPos)...)
		case g.Category == "TAF":
			errs = append(errs, validateTafStructure(has, firstKind, endPos)...)
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// isKindAlias reports whether kind is one of the token kind IDs a grammar
// may use for the semantic field named by alias.
func isKindAlias(kind, alias string) bool {
	for _, id := range requiredKindAliases[alias] {
		if kind == id {
			return true
		}
	}
	return false
}

// validateMetarStructure checks METAR/SPECI's required-field chain,
// short-circuiting once a NIL report token is seen.
func validateMetarStructure(has func(string) bool, firstKind string, endPos int) []ValidationError {
	if has("nil") {
		return nil
	}

	var errs []ValidationError
	check := func(alias, human string) {
		if !has(alias) {
			errs = append(errs, ValidationError{Message: "Missing " + human, Position: endPos})
		}
	}

	check("identifier", "report type identifier")
	if has("identifier") && !isKindAlias(firstKind, "identifier") {
		errs = append(errs, ValidationError{Message: "Report type identifier must come first", Position: endPos})
	}
	check("icao", "ICAO station identifier")
	check("datetime", "observation date/time")
	check("wind", "wind group")
	if !has("visibility") && !has("cavok") {
		errs = append(errs, ValidationError{Message: "Missing visibility or CAVOK", Position: endPos})
	}
	check("temperature", "temperature/dewpoint")
	check("pressure", "pressure (QNH)")

	return errs
}

// validateTafStructure checks TAF's required-field chain. A CNL report only
// requires identifier, ICAO, issue time, and validity period; anything else
// short-circuits on NIL.
func validateTafStructure(has func(string) bool, firstKind string, endPos int) []ValidationError {
	if has("nil") {
		return nil
	}

	var errs []ValidationError
	check := func(alias, human string) {
		if !has(alias) {
			errs = append(errs, ValidationError{Message: "Missing " + human, Position: endPos})
		}
	}

	check("identifier", "report type identifier")
	if has("identifier") && !isKindAlias(firstKind, "identifier") {
		errs = append(errs, ValidationError{Message: "Report type identifier must come first", Position: endPos})
	}
	check("icao", "ICAO station identifier")
	check("issueTime", "issue time")
	check("validity", "validity period")

	if has("cnl") {
		return errs
	}

	check("wind", "wind group")
	if !has("visibility") && !has("cavok") {
		errs = append(errs, ValidationError{Message: "Missing visibility or CAVOK", Position: endPos})
	}
	if !has("cloud") && !has("nsc") && !has("cavok") {
		errs = append(errs, ValidationError{Message: "Missing cloud group, NSC, or CAVOK", Position: endPos})
	}

	return errs
}

// validateTemplateStructure requires the identifier plus every
// required=true template field's labelKind to have appeared somewhere in the
// token stream.
func validateTemplateStructure(g *Grammar, present map[string]bool, endPos int) []ValidationError {
	var errs []ValidationError
	if !present["identifier"] {
		errs = append(errs, ValidationError{Message: "Missing report type identifier", Position: endPos})
	}
	if g.Template == nil {
		return errs
	}
	for _, f := range g.Template.Fields {
		if !f.Required {
			continue
		}
		if !present[f.LabelKind] {
			errs = append(errs, ValidationError{
				Message:  "Missing " + strings.ToLower(f.Label) + " field",
				Position: endPos,
			})
		}
	}
	return errs
}
