// Package tacgramio has functions for loading grammar definitions using the
// TACG grammar document format, a TOML-based format (with JSON and YAML
// renderings accepted too) that is used to define TAC message grammars for
// the engine to run. It is a reference loader: the engine core itself never
// touches the filesystem.
package tacgramio

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/softwarity/tac-editor/internal/tac"
)

const MaxManifestRecursionDepth = 32

var (
	// ErrManifestEmpty is the error returned when a manifest file is read
	// successfully but specifies no additional files to load.
	ErrManifestEmpty = errors.New("does not list any valid files to include")

	// ErrManifestStackOverflow is the error returned when the recursion level
	// of MaxManifestRecursionDepth is reached and an additional Manifest is
	// then specified, which would cause recursion to go deeper.
	ErrManifestStackOverflow = errors.New("too many manifests deep")

	// ErrManifestCircularRef is the error returned when a manifest specifies
	// any series of files that with their own manifests refer back to the
	// original manifest, and therefore cannot be followed.
	ErrManifestCircularRef = errors.New("manifest inclusion chain refers back to itself")
)

// Manifest contains data loaded from one or more TACG Manifest files.
type Manifest struct {
	Files []string
}

// GrammarSet contains grammar definitions loaded from one or more TACG
// grammar document files, keyed by grammar name. The grammars are still raw:
// feeding them to a registry and running inheritance resolution is up to the
// caller.
type GrammarSet struct {
	Grammars map[string]*tac.Grammar
}

// Names returns the loaded grammar names, sorted.
func (gs GrammarSet) Names() []string {
	names := make([]string, 0, len(gs.Grammars))
	for name := range gs.Grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FileInfo contains the essential information all TACG format files must
// contain. It can be obtained from a file by reading it into memory and
// calling ScanFileInfo on the bytes.
type FileInfo struct {
	Format string `toml:"format" json:"format" yaml:"format"`
	Type   string `toml:"type" json:"type" yaml:"type"`
}

// LoadGrammarBundle loads grammar definitions from the given TACG file. The
// file's type is auto-detected and decoding is handled appropriately; the
// type can either be "GRAMMAR" type or "MANIFEST" type; if it's manifest
// type, the files listed in it relative to it will also be loaded. All files
// included are combined into one single set of definitions before being
// checked, and if a manifest is encountered, all files in it are recursively
// included.
func LoadGrammarBundle(path string) (GrammarSet, error) {
	unmarshaled, err := recursiveUnmarshalGrammars(path, nil)
	if err != nil {
		return GrammarSet{}, err
	}

	return parseGrammarData(unmarshaled)
}

// LoadManifestFile loads manifest data from a TACG file.
func LoadManifestFile(path string) (manif Manifest, err error) {
	manifestData, loadErr := os.ReadFile(path)
	if loadErr != nil {
		return manif, loadErr
	}

	unmarshaled, err := unmarshalManifest(manifestData, formatForPath(path))
	if err != nil {
		return manif, err
	}
	return Manifest{Files: unmarshaled.Files}, nil
}

// LoadGrammarFile loads grammar definitions from a single grammar document
// file, ignoring any manifest indirection.
func LoadGrammarFile(path string) (GrammarSet, error) {
	data, loadErr := os.ReadFile(path)
	if loadErr != nil {
		return GrammarSet{}, loadErr
	}

	unmarshaled, err := unmarshalGrammarData(data, formatForPath(path))
	if err != nil {
		return GrammarSet{}, err
	}

	return parseGrammarData(unmarshaled)
}

// ParseDocument parses grammar definitions from raw document bytes in the
// named format: "toml", "json", or "yaml". An empty format means TOML.
func ParseDocument(data []byte, format string) (GrammarSet, error) {
	var df docFormat
	switch strings.ToLower(format) {
	case "", "toml":
		df = formatTOML
	case "json":
		df = formatJSON
	case "yaml", "yml":
		df = formatYAML
	default:
		return GrammarSet{}, fmt.Errorf("unknown grammar document format %q", format)
	}

	unmarshaled, err := unmarshalGrammarData(data, df)
	if err != nil {
		return GrammarSet{}, err
	}
	return parseGrammarData(unmarshaled)
}

// RegisterAll registers every grammar in gs into reg. It does not resolve
// inheritance; callers do that once after all bundles are in.
func RegisterAll(reg *tac.Registry, gs GrammarSet) {
	for name, g := range gs.Grammars {
		reg.Register(name, g)
	}
}

// ScanFileInfo takes the given bytes and attempts to read the TACG format
// common header info from it. For TOML data the bytes are read up to the
// first instance of a table definition header and those bytes are parsed for
// the info; JSON and YAML data is decoded whole. If there is an error
// reading the info, returns a non-nil error.
func ScanFileInfo(data []byte, format docFormat) (FileInfo, error) {
	if format != formatTOML {
		var info FileInfo
		err := decodeAs(data, format, &info)
		return info, err
	}

	// only run the toml parser up to the end of the top-lev table
	var topLevelEnd int = -1
	var onNewLine bool
	for b := range data {
		if onNewLine {
			if data[b] == '[' {
				topLevelEnd = b
				break
			}
		}

		if data[b] == '\n' {
			onNewLine = true
		} else if !unicode.IsSpace(rune(data[b])) {
			onNewLine = false
		}
	}

	scanData := data
	if topLevelEnd != -1 {
		scanData = data[:topLevelEnd]
	}

	var info FileInfo
	err := toml.Unmarshal(scanData, &info)
	return info, err
}
