package party

import (
	"github.com/roach88/cableclub/internal/pokedex"
	"github.com/roach88/cableclub/internal/schema"
	"github.com/roach88/cableclub/internal/wire"
)

// Features are the optional record sections a server may have enabled.
type Features struct {
	PLA              bool // mastered moves and per-move mastery
	EssentialsDeluxe bool // scale
	MUIMementos      bool // scale and memento
	ZUDDynamax       bool // dynamax level, gmax factor, dynamax-able
	Tera             bool // tera type
	Focus            bool // focus type
}

// Limits are the numeric bounds taken from configuration.
type Limits struct {
	MaxLevel       int64
	IVStatLimit    int64
	EVStatLimit    int64
	EVLimit        int64
	PlayerNameMax  int
	PokemonNameMax int

	// MaxFusionDepth is how many fusion partners may nest below a party
	// member.
	MaxFusionDepth int
}

// Dex answers which attributes a species may legally have.
type Dex interface {
	Lookup(species string) (pokedex.Species, bool)
}

// Catalog holds the name sets fields are checked against.
type Catalog struct {
	Species   schema.Set[string]
	Moves     schema.Set[string]
	Abilities schema.Set[string]
	Items     schema.Set[string]
	Dex       Dex
}

// CatalogFromData builds a Catalog from a loaded PBS directory.
func CatalogFromData(d *pokedex.Data) Catalog {
	return Catalog{
		Species:   schema.NewSet(d.Dex.Names()...),
		Moves:     schema.NewSet(d.Moves...),
		Abilities: schema.NewSet(d.Abilities...),
		Items:     schema.NewSet(d.Items...),
		Dex:       d.Dex,
	}
}

// Schema is the immutable constraint table for every record type.
type Schema struct {
	features Features
	limits   Limits
	dex      Dex

	move        moveFields
	sketched    sketchedMoveFields
	iv          ivFields
	ev          evFields
	obtain      obtainFields
	contest     contestFields
	ext         extensionFields
	mailSpecies mailSpeciesFields
	mail        mailFields
	pokemon     pokemonFields
	party       partyFields
}

// NewSchema builds the constraint table. The result is never mutated.
func NewSchema(f Features, l Limits, c Catalog) *Schema {
	moves := setOrEmpty(c.Moves)
	dex := c.Dex
	if dex == nil {
		dex = pokedex.New()
	}
	return &Schema{
		features:    f,
		limits:      l,
		dex:         dex,
		move:        newMoveFields(moves),
		sketched:    newSketchedMoveFields(moves),
		iv:          newIVFields(l),
		ev:          newEVFields(l),
		obtain:      newObtainFields(),
		contest:     newContestFields(),
		ext:         newExtensionFields(),
		mailSpecies: newMailSpeciesFields(),
		mail:        newMailFields(),
		pokemon:     newPokemonFields(l, c),
		party:       newPartyFields(),
	}
}

// Features returns the enabled sections.
func (s *Schema) Features() Features {
	return s.features
}

// Limits returns the numeric bounds.
func (s *Schema) Limits() Limits {
	return s.limits
}

// ReadParty parses a whole party from r and cross-validates it. The reader
// must be fully consumed.
func (s *Schema) ReadParty(r *wire.Reader) (*Party, error) {
	p := schema.NewPass(r)
	party := s.readParty(p)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return party, nil
}

func setOrEmpty(set schema.Set[string]) schema.Set[string] {
	if set == nil {
		return schema.NewSet[string]()
	}
	return set
}
