package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Names available in the fixture PBS directory.
const (
	Species        = "PIKACHU"
	GenderlessMon  = "VOLTORB"
	MaleOnlyMon    = "NIDORANmA"
	Move           = "THUNDERSHOCK"
	SketchMove     = "SKETCH"
	Ability        = "STATIC"
	Item           = "ORANBERRY"
	Ball           = "POKEBALL"
	VoltorbMaxForm = 1
)

// SpeciesPBS is the fixture server_pokemon.txt. The leading BOM matches what
// the game editor writes.
const SpeciesPBS = "\ufeff# Species the server accepts\n" +
	"[PIKACHU]\n" +
	"abilities = STATIC,LIGHTNINGROD\n" +
	"gender_ratio = Female50Percent\n" +
	"moves = THUNDERSHOCK,TACKLE,SKETCH\n" +
	"\n" +
	"[VOLTORB]\n" +
	"abilities = SOUNDPROOF,STATIC\n" +
	"gender_ratio = Genderless\n" +
	"forms = 0,1\n" +
	"moves = TACKLE\n" +
	"\n" +
	"[NIDORANmA]\n" +
	"abilities = POISONPOINT\n" +
	"gender_ratio = AlwaysMale\n" +
	"moves = PECK,LEER\n"

var pbsFiles = map[string]string{
	"server_pokemon.txt": SpeciesPBS,
	"moves.txt":          sections("THUNDERSHOCK", "TACKLE", "SKETCH", "PECK", "LEER"),
	"abilities.txt":      sections("STATIC", "LIGHTNINGROD", "SOUNDPROOF", "POISONPOINT"),
	"items.txt":          sections("POKEBALL", "GREATBALL", "ORANBERRY", "GRASSMAIL"),
}

func sections(names ...string) string {
	var b strings.Builder
	for _, n := range names {
		b.WriteString("[" + n + "]\nname = " + n + "\n\n")
	}
	return b.String()
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// WritePBS creates a PBS directory holding the fixture data files.
func WritePBS(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range pbsFiles {
		WriteFile(t, dir, name, content)
	}
	return dir
}

// WriteRule writes a rule file whose lines are joined with newlines.
func WriteRule(t testing.TB, dir, name string, lines ...string) string {
	t.Helper()
	return WriteFile(t, dir, name, strings.Join(lines, "\n")+"\n")
}
