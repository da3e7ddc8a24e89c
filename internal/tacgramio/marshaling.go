package tacgramio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// docFormat is the concrete encoding of a grammar document file.
type docFormat int

const (
	formatTOML docFormat = iota
	formatJSON
	formatYAML
)

// formatForPath picks the document encoding from the file extension,
// defaulting to TOML.
func formatForPath(path string) docFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatTOML
	}
}

func decodeAs(data []byte, format docFormat, v any) error {
	switch format {
	case formatJSON:
		return json.Unmarshal(data, v)
	case formatYAML:
		return yaml.Unmarshal(data, v)
	default:
		return toml.Unmarshal(data, v)
	}
}

func unmarshalManifest(data []byte, format docFormat) (topLevelManifest, error) {
	var manif topLevelManifest
	if err := decodeAs(data, format, &manif); err != nil {
		return manif, err
	}
	return manif, nil
}

func unmarshalGrammarData(data []byte, format docFormat) (topLevelGrammarData, error) {
	var gd topLevelGrammarData
	if err := decodeAs(data, format, &gd); err != nil {
		return gd, err
	}
	return gd, nil
}

// recursiveUnmarshalGrammars reads the file at path and, if it is a
// manifest, every file it lists, combining all grammar definitions into one
// topLevelGrammarData. manifStack is for two reasons ->
//   - detect circular deps and refuse to follow them
//   - avoid infinite recursion (allow up to MaxManifestRecursionDepth levels)
//
// Returns ErrManifestEmpty if and only if the first manifest in the stack is
// empty, otherwise it is not an error.
func recursiveUnmarshalGrammars(path string, manifStack []string) (data topLevelGrammarData, err error) {
	path = filepath.Clean(path)

	fileData, loadErr := os.ReadFile(path)
	if loadErr != nil {
		return topLevelGrammarData{}, fmt.Errorf("%q: reading from disk: %w", path, loadErr)
	}

	format := formatForPath(path)

	fileInfo, err := ScanFileInfo(fileData, format)
	if err != nil {
		return topLevelGrammarData{}, fmt.Errorf("%q: detecting file type: %w", path, err)
	}

	if strings.ToUpper(fileInfo.Format) != "TACG" {
		return topLevelGrammarData{}, fmt.Errorf("%q: file does not have a 'format = \"TACG\"' entry", path)
	}

	fileType := strings.ToUpper(fileInfo.Type)
	switch fileType {
	case "GRAMMAR":
		unmarshaled, err := unmarshalGrammarData(fileData, format)
		if err != nil {
			return unmarshaled, fmt.Errorf("grammar file %q: %w", path, err)
		}
		return unmarshaled, nil
	case "MANIFEST":
		// check the stack to be sure we havent recursed too far and to be
		// sure we aren't about to re-scan a circular-ref'd manifest file
		// we've already brought in.
		if len(manifStack) >= MaxManifestRecursionDepth {
			return topLevelGrammarData{}, fmt.Errorf("manifest file %q: %w", path, ErrManifestStackOverflow)
		}
		for i := range manifStack {
			if manifStack[i] == path {
				return topLevelGrammarData{}, fmt.Errorf("manifest file %q: %w", path, ErrManifestCircularRef)
			}
		}

		unmarshaledManif, err := unmarshalManifest(fileData, format)
		if err != nil {
			return topLevelGrammarData{}, fmt.Errorf("manifest file %q: %w", path, err)
		}

		// the len of manifStack is included in the check because an empty
		// manifest error is really only a problem for the very first
		// manifest.
		if len(unmarshaledManif.Files) < 1 && len(manifStack) == 0 {
			return topLevelGrammarData{}, fmt.Errorf("manifest file %q: %w", path, ErrManifestEmpty)
		}

		// combine all referred-to files in one single unmarshaled data struct

		unmarshaled := topLevelGrammarData{
			Format: fileInfo.Format,
			Type:   "GRAMMAR",
		}

		// copy the manif stack into a new value and add self to it for
		// recursive calls
		manifSubStack := make([]string, len(manifStack)+1)
		copy(manifSubStack, manifStack)
		manifSubStack[len(manifSubStack)-1] = path

		dir := filepath.Dir(path)
		for _, rel := range unmarshaledManif.Files {
			sub, err := recursiveUnmarshalGrammars(filepath.Join(dir, rel), manifSubStack)
			if err != nil {
				return topLevelGrammarData{}, err
			}
			unmarshaled.Grammars = append(unmarshaled.Grammars, sub.Grammars...)
		}

		return unmarshaled, nil
	default:
		return topLevelGrammarData{}, fmt.Errorf("%q: unknown file type %q", path, fileInfo.Type)
	}
}
