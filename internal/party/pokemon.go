package party

import (
	"fmt"

	"github.com/roach88/cableclub/internal/schema"
)

// StatCount is the number of IV and EV entries per Pokemon.
const StatCount = 6

// Pokemon is one party member. Sections gated by a disabled feature stay
// unset.
type Pokemon struct {
	Species     schema.Slot[string]
	Level       schema.Slot[int64]
	PersonalID  schema.Slot[int64]
	OwnerID     schema.Slot[int64]
	OwnerName   schema.Slot[string]
	OwnerGender schema.Slot[int64]
	Exp         schema.Slot[int64]
	Form        schema.Slot[int64]
	Item        schema.Slot[schema.Optional[string]]

	SketchedMoves []SketchedMove
	RegularMoves  []Move
	MasteredMoves schema.Slot[[]Move]

	Gender        schema.Slot[int64]
	Shiny         schema.Slot[schema.Optional[bool]]
	Ability       schema.Slot[string]
	AbilityIndex  schema.Slot[schema.Optional[int64]]
	NatureID      schema.Slot[string]
	NatureStatsID schema.Slot[string]

	IVs   [StatCount]IV
	EVs   [StatCount]EV
	EVSum schema.Slot[int64]

	Happiness    schema.Slot[int64]
	Name         schema.Slot[string]
	Pokeball     schema.Slot[string]
	StepsToHatch schema.Slot[int64]
	Pokerus      schema.Slot[int64]

	Obtain  ObtainStats
	Contest ContestStats
	Ribbons []string

	Extensions Extensions

	HasMail schema.Slot[bool]
	Mail    *Mail
	Fused   schema.Slot[bool]
	Fusion  *Pokemon
}

type pokemonFields struct {
	species                    *schema.Field[string]
	level, personalID, ownerID *schema.Field[int64]
	ownerName                  *schema.Field[string]
	ownerGender, exp, form     *schema.Field[int64]
	item                       *schema.Field[schema.Optional[string]]
	mastered                   *schema.Field[[]Move]
	gender                     *schema.Field[int64]
	shiny                      *schema.Field[schema.Optional[bool]]
	ability                    *schema.Field[string]
	abilityIndex               *schema.Field[schema.Optional[int64]]
	natureID, natureStatsID    *schema.Field[string]
	evSum, happiness           *schema.Field[int64]
	name, pokeball             *schema.Field[string]
	stepsToHatch, pokerus      *schema.Field[int64]
	ribbon                     *schema.Field[string]
	hasMail, fused             *schema.Field[bool]
}

func newPokemonFields(l Limits, c Catalog) pokemonFields {
	items := setOrEmpty(c.Items)
	return pokemonFields{
		species:       schema.OneOf("Pokemon.species", setOrEmpty(c.Species)),
		level:         schema.Int("Pokemon.level", schema.Min(1), schema.Max(l.MaxLevel)),
		personalID:    schema.Int("Pokemon.personal_id", schema.Min(0)),
		ownerID:       schema.Int("Pokemon.owner_id", schema.Max(1<<32)),
		ownerName:     schema.Str("Pokemon.owner_name", l.PlayerNameMax),
		ownerGender:   schema.OneOf("Pokemon.owner_gender", schema.NewSet[int64](0, 1)),
		exp:           schema.Int("Pokemon.exp", schema.Min(0)),
		form:          schema.Int("Pokemon.form", schema.Min(0)),
		item:          schema.OptionalOneOf("Pokemon.item", items),
		mastered:      schema.Plain[[]Move]("Pokemon.mastered_moves"),
		gender:        schema.OneOf("Pokemon.gender", schema.NewSet[int64](0, 1, 2)),
		shiny:         schema.OptionalBool("Pokemon.shiny"),
		ability:       schema.OneOf("Pokemon.ability", setOrEmpty(c.Abilities)),
		abilityIndex:  schema.OptionalInt("Pokemon.ability_index", schema.Min(0)),
		natureID:      schema.Str("Pokemon.nature_id", schema.Unbounded),
		natureStatsID: schema.Str("Pokemon.nature_stats_id", schema.Unbounded),
		evSum:         schema.Int("Pokemon.ev_sum", schema.Max(l.EVLimit)),
		happiness:     schema.Int("Pokemon.happiness", schema.Min(0), schema.Max(255)),
		name:          schema.Str("Pokemon.name", l.PokemonNameMax),
		pokeball:      schema.OneOf("Pokemon.pokeball", items),
		stepsToHatch:  schema.Int("Pokemon.steps_to_hatch", schema.Min(0)),
		pokerus:       schema.Int("Pokemon.pokerus", schema.Min(0)),
		ribbon:        schema.Str("Pokemon.ribbon", schema.Unbounded),
		hasMail:       schema.Bool("Pokemon.has_mail"),
		fused:         schema.Bool("Pokemon.fused"),
	}
}

// readPokemon reads one Pokemon at the given fusion depth; party members
// are depth 0.
func (s *Schema) readPokemon(p *schema.Pass, depth int) Pokemon {
	f := &s.pokemon
	var pk Pokemon

	schema.Read(p, f.species, &pk.Species, schema.Text)
	schema.Read(p, f.level, &pk.Level, schema.Integer)
	schema.Read(p, f.personalID, &pk.PersonalID, schema.Integer)
	schema.Read(p, f.ownerID, &pk.OwnerID, schema.Integer)
	schema.Read(p, f.ownerName, &pk.OwnerName, schema.Text)
	schema.Read(p, f.ownerGender, &pk.OwnerGender, schema.Integer)
	schema.Read(p, f.exp, &pk.Exp, schema.Integer)
	schema.Read(p, f.form, &pk.Form, schema.Integer)
	schema.Read(p, f.item, &pk.Item, schema.OptText)

	n := schema.Count(p, "Pokemon.sketched_moves")
	for i := 0; i < n && p.Ok(); i++ {
		pk.SketchedMoves = append(pk.SketchedMoves, s.readSketchedMove(p))
	}
	pk.RegularMoves = s.readMoves(p, "Pokemon.regular_moves")
	if s.features.PLA {
		mastered := s.readMoves(p, "Pokemon.mastered_moves")
		if p.Ok() {
			p.Fail(f.mastered.Store(&pk.MasteredMoves, mastered))
		}
	}

	schema.Read(p, f.gender, &pk.Gender, schema.Integer)
	schema.Read(p, f.shiny, &pk.Shiny, schema.OptBoolean)
	schema.Read(p, f.ability, &pk.Ability, schema.Text)
	schema.Read(p, f.abilityIndex, &pk.AbilityIndex, schema.OptInteger)
	schema.Read(p, f.natureID, &pk.NatureID, schema.Text)
	schema.Read(p, f.natureStatsID, &pk.NatureStatsID, schema.Text)

	var evSum int64
	for i := 0; i < StatCount && p.Ok(); i++ {
		pk.IVs[i] = s.readIV(p)
		pk.EVs[i] = s.readEV(p)
		evSum += pk.EVs[i].Value.Or(0)
	}
	if p.Ok() {
		p.Fail(f.evSum.Store(&pk.EVSum, evSum))
	}

	schema.Read(p, f.happiness, &pk.Happiness, schema.Integer)
	schema.Read(p, f.name, &pk.Name, schema.Text)
	schema.Read(p, f.pokeball, &pk.Pokeball, schema.Text)
	schema.Read(p, f.stepsToHatch, &pk.StepsToHatch, schema.Integer)
	schema.Read(p, f.pokerus, &pk.Pokerus, schema.Integer)

	pk.Obtain = s.readObtainStats(p)
	pk.Contest = s.readContestStats(p)

	n = schema.Count(p, "Pokemon.ribbons")
	for i := 0; i < n && p.Ok(); i++ {
		r := schema.Value(p, f.ribbon, schema.Text)
		if p.Ok() {
			pk.Ribbons = append(pk.Ribbons, r)
		}
	}

	pk.Extensions = s.readExtensions(p)

	schema.Read(p, f.hasMail, &pk.HasMail, schema.Boolean)
	if p.Ok() && pk.HasMail.Must() {
		pk.Mail = s.readMail(p)
	}

	schema.Read(p, f.fused, &pk.Fused, schema.Boolean)
	if p.Ok() && pk.Fused.Must() {
		if depth >= s.limits.MaxFusionDepth {
			p.Fail(fmt.Errorf("%s: %w", f.fused.Name(), ErrFusionDepth))
			return pk
		}
		fusion := s.readPokemon(p, depth+1)
		pk.Fusion = &fusion
	}

	if p.Ok() {
		p.Fail(s.validatePokemon(&pk))
	}
	return pk
}

// validatePokemon checks the fields that depend on each other against the
// species data.
func (s *Schema) validatePokemon(pk *Pokemon) error {
	name := pk.Species.Must()
	species, ok := s.dex.Lookup(name)
	if !ok {
		return schema.Invalid("Pokemon.species", fmt.Sprintf("%q", name), "unknown species")
	}
	if gender := pk.Gender.Must(); species.Genders == nil || !species.Genders.Contains(gender) {
		return schema.Invalid("Pokemon.gender", gender, "not in %s for %s", setString(species.Genders), name)
	}
	if form := pk.Form.Must(); species.Forms != nil && !species.Forms.Contains(form) {
		return schema.Invalid("Pokemon.form", form, "not in %s for %s", setString(species.Forms), name)
	}
	return nil
}

func setString[T comparable](set schema.Set[T]) string {
	if set == nil {
		return "{}"
	}
	return set.String()
}
