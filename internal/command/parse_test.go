package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParseCommand(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		expectVerb string
		expectArg  string
		expectErr  bool
	}{
		{name: "empty input", input: "", expectVerb: ""},
		{name: "whitespace only", input: "   \t ", expectVerb: ""},
		{name: "bare verb", input: "GRAMMARS", expectVerb: "GRAMMARS"},
		{name: "lowercase verb normalized", input: "grammars", expectVerb: "GRAMMARS"},
		{name: "type with text", input: "TYPE METAR LFPG 121330Z", expectVerb: "TYPE", expectArg: "METAR LFPG 121330Z"},
		{name: "type alias", input: "T METAR", expectVerb: "TYPE", expectArg: "METAR"},
		{name: "arg casing preserved", input: "grammar metar", expectVerb: "GRAMMAR", expectArg: "metar"},
		{name: "use alias for grammar", input: "USE metar", expectVerb: "GRAMMAR", expectArg: "metar"},
		{name: "suggest with optional arg", input: "SUGGEST icao", expectVerb: "SUGGEST", expectArg: "icao"},
		{name: "suggest with no arg", input: "SUGGEST", expectVerb: "SUGGEST"},
		{name: "validate alias", input: "V", expectVerb: "VALIDATE"},
		{name: "question mark is help", input: "?", expectVerb: "HELP"},
		{name: "bye is quit", input: "BYE", expectVerb: "QUIT"},
		{name: "type with no text", input: "TYPE", expectErr: true},
		{name: "grammar with no name", input: "GRAMMAR", expectErr: true},
		{name: "quit takes no args", input: "QUIT NOW", expectErr: true},
		{name: "unknown verb", input: "FROBNICATE", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			cmd, err := ParseCommand(tc.input)

			if tc.expectErr {
				assert.Error(err)
				return
			}

			assert.NoError(err)
			assert.Equal(tc.expectVerb, cmd.Verb)
			assert.Equal(tc.expectArg, cmd.Arg)
		})
	}
}
