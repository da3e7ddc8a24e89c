package tacgramio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softwarity/tac-editor/internal/tac"
)

const metarTOML = `format = "TACG"
type = "GRAMMAR"

[[grammar]]
name = "metar"
version = "1.0"
description = "Routine aviation weather report"
identifier = "METAR"
category = "METAR"

  [[grammar.token]]
  id = "identifier"
  values = ["METAR", "SPECI"]
  style = "keyword"

  [[grammar.token]]
  id = "icao"
  pattern = '[A-Z]{4}'
  style = "station"

  [[grammar.structure]]
  kind = "token"
  token = "identifier"

  [[grammar.structure]]
  kind = "token"
  token = "icao"
`

func Test_ParseDocument_TOML(t *testing.T) {
	assert := assert.New(t)

	gs, err := ParseDocument([]byte(metarTOML), "toml")
	require.NoError(t, err)

	assert.Equal([]string{"metar"}, gs.Names())

	g := gs.Grammars["metar"]
	assert.Equal("metar", g.Name)
	assert.Equal([]string{"METAR"}, g.Identifiers)
	assert.Equal([]string{"identifier", "icao"}, g.TokenOrder)
	assert.Len(g.Structure, 2)
	assert.Equal(tac.NodeToken, g.Structure[0].Kind)
	assert.Equal(tac.Cardinality{Min: 1, Max: 1}, g.Structure[0].Card)
}

func Test_ParseDocument_JSON(t *testing.T) {
	assert := assert.New(t)

	doc := `{
		"format": "TACG",
		"type": "GRAMMAR",
		"grammars": [{
			"name": "taf",
			"identifier": ["TAF", "TAF AMD"],
			"tokens": [
				{"id": "identifier", "values": ["TAF"], "style": "keyword"},
				{"id": "icao", "pattern": "[A-Z]{4}"}
			],
			"structure": [
				{"kind": "token", "token": "identifier"},
				{"kind": "token", "token": "icao", "min": 0, "max": -1}
			]
		}]
	}`

	gs, err := ParseDocument([]byte(doc), "json")
	require.NoError(t, err)

	g := gs.Grammars["taf"]
	assert.Equal([]string{"TAF", "TAF AMD"}, g.Identifiers)
	assert.Equal(tac.Cardinality{Min: 0, Max: tac.Infinite}, g.Structure[1].Card)
}

func Test_ParseDocument_YAML(t *testing.T) {
	assert := assert.New(t)

	doc := `format: TACG
type: GRAMMAR
grammars:
  - name: vaa
    identifier: VA ADVISORY
    template_mode: true
    tokens:
      - id: identifier
        pattern: 'VA ADVISORY'
      - id: dtg
        pattern: '\d{8}/\d{4}Z'
      - id: dtgLabel
        pattern: 'DTG:'
    template:
      fields:
        - label: 'DTG:'
          label_kind: dtgLabel
          value_kind: dtg
          required: true
`

	gs, err := ParseDocument([]byte(doc), "yaml")
	require.NoError(t, err)

	g := gs.Grammars["vaa"]
	assert.True(g.TemplateMode)
	assert.NotNil(g.Template)
	assert.Len(g.Template.Fields, 1)
	assert.True(g.Template.Fields[0].Required)
}

func Test_ParseDocument_SuggestionAfterEntries(t *testing.T) {
	assert := assert.New(t)

	// bare-string declaration refs and legacy inline objects side by side
	doc := `{
		"format": "TACG",
		"type": "GRAMMAR",
		"grammars": [{
			"name": "metar",
			"identifier": "METAR",
			"tokens": [
				{"id": "identifier", "values": ["METAR"]},
				{"id": "wind", "pattern": "\\d{5}KT"}
			],
			"structure": [
				{"kind": "token", "token": "identifier"},
				{"kind": "token", "token": "wind"}
			],
			"suggestions": {
				"declarations": [
					{"id": "sug-calm", "ref": "wind", "text": "00000KT"}
				],
				"after": {
					"identifier": [
						"sug-calm",
						{"id": "legacy", "ref": "wind", "text": "VRB02KT", "editable": {"start": 3, "end": 5}}
					]
				}
			}
		}]
	}`

	gs, err := ParseDocument([]byte(doc), "json")
	require.NoError(t, err)

	g := gs.Grammars["metar"]
	require.NotNil(t, g.Suggestions)

	entries := g.Suggestions.After["identifier"]
	require.Len(t, entries, 2)

	assert.Equal("sug-calm", entries[0].DeclRef)
	assert.Nil(entries[0].Inline)

	assert.Empty(entries[1].DeclRef)
	require.NotNil(t, entries[1].Inline)
	assert.Equal("VRB02KT", entries[1].Inline.Text)
	require.NotNil(t, entries[1].Inline.Editable)
	assert.Equal(3, entries[1].Inline.Editable.Start)
	assert.Equal(5, entries[1].Inline.Editable.End)
}

func Test_ParseDocument_Errors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{
			name: "no grammars at all",
			doc:  `{"format": "TACG", "type": "GRAMMAR", "grammars": []}`,
		},
		{
			name: "token node with no token id",
			doc: `{"format": "TACG", "type": "GRAMMAR", "grammars": [{
				"name": "bad",
				"tokens": [{"id": "a", "pattern": "A"}],
				"structure": [{"kind": "token"}]
			}]}`,
		},
		{
			name: "structure references undefined token",
			doc: `{"format": "TACG", "type": "GRAMMAR", "grammars": [{
				"name": "bad",
				"tokens": [{"id": "a", "pattern": "A"}],
				"structure": [{"kind": "token", "token": "ghost"}]
			}]}`,
		},
		{
			name: "one-of with no children",
			doc: `{"format": "TACG", "type": "GRAMMAR", "grammars": [{
				"name": "bad",
				"tokens": [{"id": "a", "pattern": "A"}],
				"structure": [{"kind": "oneOf"}]
			}]}`,
		},
		{
			name: "max below min",
			doc: `{"format": "TACG", "type": "GRAMMAR", "grammars": [{
				"name": "bad",
				"tokens": [{"id": "a", "pattern": "A"}],
				"structure": [{"kind": "token", "token": "a", "min": 3, "max": 2}]
			}]}`,
		},
		{
			name: "duplicate grammar name",
			doc: `{"format": "TACG", "type": "GRAMMAR", "grammars": [
				{"name": "dupe", "tokens": [{"id": "a", "pattern": "A"}]},
				{"name": "dupe", "tokens": [{"id": "a", "pattern": "A"}]}
			]}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tc.doc), "json")
			assert.Error(t, err)
		})
	}
}

func Test_LoadGrammarBundle_Manifest(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()

	manifest := `format = "TACG"
type = "MANIFEST"
files = ["metar.toml"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.toml"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metar.toml"), []byte(metarTOML), 0o644))

	gs, err := LoadGrammarBundle(filepath.Join(dir, "manifest.toml"))
	require.NoError(t, err)

	assert.Equal([]string{"metar"}, gs.Names())
}

func Test_LoadGrammarBundle_EmptyManifest(t *testing.T) {
	dir := t.TempDir()

	manifest := `format = "TACG"
type = "MANIFEST"
files = []
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.toml"), []byte(manifest), 0o644))

	_, err := LoadGrammarBundle(filepath.Join(dir, "manifest.toml"))
	assert.ErrorIs(t, err, ErrManifestEmpty)
}

func Test_LoadGrammarBundle_CircularManifest(t *testing.T) {
	dir := t.TempDir()

	manifest := `format = "TACG"
type = "MANIFEST"
files = ["manifest.toml"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.toml"), []byte(manifest), 0o644))

	_, err := LoadGrammarBundle(filepath.Join(dir, "manifest.toml"))
	assert.ErrorIs(t, err, ErrManifestCircularRef)
}

func Test_LoadGrammarBundle_WrongFormatRejected(t *testing.T) {
	dir := t.TempDir()

	doc := `format = "OTHER"
type = "GRAMMAR"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.toml"), []byte(doc), 0o644))

	_, err := LoadGrammarBundle(filepath.Join(dir, "bad.toml"))
	assert.Error(t, err)
}

func Test_RegisterAll_FeedsRegistry(t *testing.T) {
	assert := assert.New(t)

	gs, err := ParseDocument([]byte(metarTOML), "toml")
	require.NoError(t, err)

	reg := tac.NewRegistry()
	RegisterAll(reg, gs)
	reg.ResolveInheritance()

	name, ok := reg.Detect("METAR LFPG")
	assert.True(ok)
	assert.Equal("metar", name)
}
