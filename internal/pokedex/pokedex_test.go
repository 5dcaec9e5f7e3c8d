package pokedex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

const speciesPBS = "\ufeff# Pokemon data\n" +
	"[PIKACHU]\n" +
	"abilities = STATIC,LIGHTNINGROD\n" +
	"gender_ratio = Female50Percent\n" +
	"moves = THUNDERSHOCK,TACKLE,\n" +
	"\n" +
	"[VOLTORB]\n" +
	"Abilities = SOUNDPROOF\n" +
	"gender_ratio = Genderless\n" +
	"forms = 0,1\n" +
	"moves = TACKLE\n" +
	"; trailing comment\n" +
	"[NIDORANmA]\n" +
	"abilities: POISONPOINT\n" +
	"gender_ratio: AlwaysMale\n" +
	"moves: PECK,\n" +
	"  LEER\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPokedex(t *testing.T) {
	path := writeFile(t, t.TempDir(), SpeciesFile, speciesPBS)

	dex, err := LoadPokedex(path)
	require.NoError(t, err)
	assert.Equal(t, 3, dex.Len())
	assert.Equal(t, []string{"NIDORANmA", "PIKACHU", "VOLTORB"}, dex.Names())

	pika, ok := dex.Lookup("PIKACHU")
	require.True(t, ok)
	assert.True(t, pika.Abilities.Contains("LIGHTNINGROD"))
	assert.Equal(t, 2, pika.Moves.Len(), "empty list items are dropped")
	assert.True(t, pika.Genders.Contains(0))
	assert.True(t, pika.Genders.Contains(1))
	assert.False(t, pika.Genders.Contains(2))
	assert.True(t, pika.Forms.Contains(17), "no forms key means any form")

	voltorb, ok := dex.Lookup("VOLTORB")
	require.True(t, ok)
	assert.True(t, voltorb.Abilities.Contains("SOUNDPROOF"), "keys are case-insensitive")
	assert.True(t, voltorb.Genders.Contains(2))
	assert.False(t, voltorb.Genders.Contains(0))
	assert.True(t, voltorb.Forms.Contains(1))
	assert.False(t, voltorb.Forms.Contains(2))

	nido, ok := dex.Lookup("NIDORANmA")
	require.True(t, ok)
	assert.True(t, nido.Moves.Contains("LEER"), "indented lines continue the value")
	assert.Equal(t, 1, nido.Genders.Len())

	_, ok = dex.Lookup("MISSINGNO")
	assert.False(t, ok)
}

func TestLoadSectionNamesSkipsBOM(t *testing.T) {
	path := writeFile(t, t.TempDir(), MovesFile, "\ufeff[TACKLE]\nname = Tackle\n[THUNDERSHOCK]\nname = Thunder Shock\n")
	names, err := LoadSectionNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"TACKLE", "THUNDERSHOCK"}, names)
}

func TestParseKeepsHashAndQuotes(t *testing.T) {
	sections, err := parseSections(strings.NewReader("[A]\nname = Pok\u00e9mon #1\ndesc = \"quoted\" text ; not a comment\n"))
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Pok\u00e9mon #1", sections[0].keys["name"])
	assert.Equal(t, `"quoted" text ; not a comment`, sections[0].keys["desc"])
}

func TestLoadSectionNamesUTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	content, err := enc.String("[POTION]\nname = Potion\n[REPEL]\nname = Repel\n")
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), ItemsFile, content)
	names, err := LoadSectionNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"POTION", "REPEL"}, names)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"outside section":   "name = x\n[A]\n",
		"duplicate section": "[A]\n[A]\n",
		"duplicate key":     "[A]\nname = x\nNAME = y\n",
		"no delimiter":      "[A]\njunk\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseSections(strings.NewReader(content))
			assert.Error(t, err)
		})
	}

	_, err := parseSections(strings.NewReader("[A]\nname = x\nNAME = y\n"))
	assert.EqualError(t, err, `duplicate key "name" in [A]`)
}

func TestBadForms(t *testing.T) {
	path := writeFile(t, t.TempDir(), SpeciesFile, "[A]\nforms = 0,x\n")
	_, err := LoadPokedex(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[A]")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SpeciesFile, speciesPBS)
	writeFile(t, dir, MovesFile, "[TACKLE]\n[THUNDERSHOCK]\n")
	writeFile(t, dir, AbilitiesFile, "[STATIC]\n")
	writeFile(t, dir, ItemsFile, "[POKEBALL]\n[ORANBERRY]\n")

	data, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, data.Dex.Len())
	assert.Equal(t, []string{"TACKLE", "THUNDERSHOCK"}, data.Moves)
	assert.Equal(t, []string{"STATIC"}, data.Abilities)
	assert.Equal(t, []string{"POKEBALL", "ORANBERRY"}, data.Items)
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SpeciesFile, speciesPBS)
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), MovesFile)
}
