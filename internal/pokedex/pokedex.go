// Package pokedex loads the per-species data used to cross-check incoming
// parties, plus the move, item and ability catalogs, from a PBS directory.
package pokedex

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/roach88/cableclub/internal/schema"
)

// PBS file names inside the data directory.
const (
	AbilitiesFile = "abilities.txt"
	ItemsFile     = "items.txt"
	MovesFile     = "moves.txt"
	SpeciesFile   = "server_pokemon.txt"
)

// genderRatios maps fixed gender ratios to the genders they allow. Any other
// ratio allows male (0) and female (1).
var genderRatios = map[string][]int64{
	"AlwaysMale":   {0},
	"AlwaysFemale": {1},
	"Genderless":   {2},
}

// Species holds the legal attributes of one species.
type Species struct {
	Name      string
	Abilities schema.Set[string]
	Forms     schema.Set[int64] // wildcard when the PBS entry lists no forms
	Genders   schema.Set[int64]
	Moves     schema.Set[string]
}

// Pokedex maps species names to their legal attributes. It is immutable
// once built.
type Pokedex struct {
	species map[string]Species
}

// New builds a Pokedex from already parsed entries.
func New(entries ...Species) *Pokedex {
	d := &Pokedex{species: make(map[string]Species, len(entries))}
	for _, s := range entries {
		d.species[s.Name] = s
	}
	return d
}

// Lookup returns the entry for a species.
func (d *Pokedex) Lookup(name string) (Species, bool) {
	s, ok := d.species[name]
	return s, ok
}

// Len returns the number of species.
func (d *Pokedex) Len() int {
	return len(d.species)
}

// Names returns the species names in lexical order.
func (d *Pokedex) Names() []string {
	names := make([]string, 0, len(d.species))
	for name := range d.species {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Data is everything read from a PBS directory.
type Data struct {
	Dex       *Pokedex
	Moves     []string
	Abilities []string
	Items     []string
}

// Load reads the species, move, ability and item files from dir.
func Load(dir string) (*Data, error) {
	dex, err := LoadPokedex(filepath.Join(dir, SpeciesFile))
	if err != nil {
		return nil, err
	}
	data := &Data{Dex: dex}
	for _, f := range []struct {
		name string
		dst  *[]string
	}{
		{MovesFile, &data.Moves},
		{AbilitiesFile, &data.Abilities},
		{ItemsFile, &data.Items},
	} {
		names, err := LoadSectionNames(filepath.Join(dir, f.name))
		if err != nil {
			return nil, err
		}
		*f.dst = names
	}
	return data, nil
}

// LoadSectionNames returns the section names of a PBS file in file order.
func LoadSectionNames(path string) ([]string, error) {
	sections, err := readSections(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.name
	}
	return names, nil
}

// LoadPokedex parses the species file at path.
func LoadPokedex(path string) (*Pokedex, error) {
	sections, err := readSections(path)
	if err != nil {
		return nil, fmt.Errorf("load pokedex: %w", err)
	}

	entries := make([]Species, 0, len(sections))
	for _, s := range sections {
		entry, err := parseSpecies(s)
		if err != nil {
			return nil, fmt.Errorf("load pokedex: [%s]: %w", s.name, err)
		}
		entries = append(entries, entry)
	}
	return New(entries...), nil
}

func parseSpecies(s section) (Species, error) {
	entry := Species{
		Name:      s.name,
		Abilities: schema.NewSet(splitList(s.keys["abilities"])...),
		Moves:     schema.NewSet(splitList(s.keys["moves"])...),
		Forms:     schema.Any[int64](),
		Genders:   schema.NewSet[int64](0, 1),
	}

	if raw, ok := s.keys["forms"]; ok {
		var forms []int64
		for _, item := range splitList(raw) {
			n, err := strconv.ParseInt(item, 10, 64)
			if err != nil {
				return Species{}, fmt.Errorf("forms: %w", err)
			}
			forms = append(forms, n)
		}
		entry.Forms = schema.NewSet(forms...)
	}

	if genders, ok := genderRatios[s.keys["gender_ratio"]]; ok {
		entry.Genders = schema.NewSet(genders...)
	}
	return entry, nil
}
