package pokedex

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/ini.v1"
)

// section is one "[NAME]" block of a PBS file.
type section struct {
	name string
	keys map[string]string
}

// readSections parses the PBS file at path. A byte order mark is honoured:
// UTF-16 files are decoded to UTF-8 and a UTF-8 mark is dropped.
func readSections(path string) ([]section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	sections, err := parseSections(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sections, nil
}

// pbsOptions parse PBS text the way the game does: case-insensitive keys,
// '#' and quotes kept inside values, indented lines continuing the value
// above. Non-unique sections and shadowed keys are allowed so that
// parseSections can reject them itself.
var pbsOptions = ini.LoadOptions{
	InsensitiveKeys:            true,
	IgnoreInlineComment:        true,
	IgnoreContinuation:         true,
	PreserveSurroundedQuote:    true,
	AllowPythonMultilineValues: true,
	AllowNonUniqueSections:     true,
	AllowShadows:               true,
	AllowDuplicateShadowValues: true,
}

// parseSections reads "[name]" headers followed by "key = value" (or
// "key: value") lines. Section names are unique within a file and so are
// keys within a section.
func parseSections(r io.Reader) ([]section, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := ini.LoadSources(pbsOptions, data)
	if err != nil {
		return nil, err
	}

	var (
		sections []section
		seen     = make(map[string]bool)
	)
	for _, s := range f.Sections() {
		if s.Name() == ini.DefaultSection {
			if len(s.Keys()) > 0 {
				return nil, fmt.Errorf("entry %q outside of any section", s.Keys()[0].Name())
			}
			continue
		}
		if seen[s.Name()] {
			return nil, fmt.Errorf("duplicate section %q", s.Name())
		}
		seen[s.Name()] = true

		keys := make(map[string]string, len(s.Keys()))
		for _, k := range s.Keys() {
			if len(k.ValueWithShadows()) > 1 {
				return nil, fmt.Errorf("duplicate key %q in [%s]", k.Name(), s.Name())
			}
			keys[k.Name()] = k.Value()
		}
		sections = append(sections, section{name: s.Name(), keys: keys})
	}
	return sections, nil
}

// splitList splits a comma separated value, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
