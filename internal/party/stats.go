package party

import "github.com/roach88/cableclub/internal/schema"

// IV is one individual value.
type IV struct {
	Value schema.Slot[int64]
	Maxed schema.Slot[schema.Optional[bool]]
}

// EV is one effort value.
type EV struct {
	Value schema.Slot[int64]
}

// ObtainStats records how a Pokemon was obtained.
type ObtainStats struct {
	Mode       schema.Slot[int64]
	Map        schema.Slot[int64]
	Text       schema.Slot[string]
	Level      schema.Slot[int64]
	HatchedMap schema.Slot[int64]
}

// ContestStats are the contest condition values.
type ContestStats struct {
	Cool   schema.Slot[int64]
	Beauty schema.Slot[int64]
	Cute   schema.Slot[int64]
	Smart  schema.Slot[int64]
	Tough  schema.Slot[int64]
	Sheen  schema.Slot[int64]
}

type ivFields struct {
	value *schema.Field[int64]
	maxed *schema.Field[schema.Optional[bool]]
}

func newIVFields(l Limits) ivFields {
	return ivFields{
		value: schema.Int("IV.val", schema.Min(0), schema.Max(l.IVStatLimit)),
		maxed: schema.OptionalBool("IV.maxed"),
	}
}

type evFields struct {
	value *schema.Field[int64]
}

func newEVFields(l Limits) evFields {
	return evFields{value: schema.Int("EV.val", schema.Min(0), schema.Max(l.EVStatLimit))}
}

type obtainFields struct {
	mode, mapID, level, hatchedMap *schema.Field[int64]
	text                           *schema.Field[string]
}

func newObtainFields() obtainFields {
	return obtainFields{
		mode:       schema.Int("ObtainStats.mode", schema.Min(0)),
		mapID:      schema.Int("ObtainStats.map", schema.Min(0)),
		text:       schema.Str("ObtainStats.text", schema.Unbounded),
		level:      schema.Int("ObtainStats.level", schema.Min(0)),
		hatchedMap: schema.Int("ObtainStats.hatched_map", schema.Min(0)),
	}
}

type contestFields struct {
	cool, beauty, cute, smart, tough, sheen *schema.Field[int64]
}

func newContestFields() contestFields {
	return contestFields{
		cool:   schema.Int("ContestStats.cool", schema.Min(0)),
		beauty: schema.Int("ContestStats.beauty", schema.Min(0)),
		cute:   schema.Int("ContestStats.cute", schema.Min(0)),
		smart:  schema.Int("ContestStats.smart", schema.Min(0)),
		tough:  schema.Int("ContestStats.tough", schema.Min(0)),
		sheen:  schema.Int("ContestStats.sheen", schema.Min(0)),
	}
}

func (s *Schema) readIV(p *schema.Pass) IV {
	var iv IV
	schema.Read(p, s.iv.value, &iv.Value, schema.Integer)
	schema.Read(p, s.iv.maxed, &iv.Maxed, schema.OptBoolean)
	return iv
}

func (s *Schema) readEV(p *schema.Pass) EV {
	var ev EV
	schema.Read(p, s.ev.value, &ev.Value, schema.Integer)
	return ev
}

func (s *Schema) readObtainStats(p *schema.Pass) ObtainStats {
	var o ObtainStats
	schema.Read(p, s.obtain.mode, &o.Mode, schema.Integer)
	schema.Read(p, s.obtain.mapID, &o.Map, schema.Integer)
	schema.Read(p, s.obtain.text, &o.Text, schema.Text)
	schema.Read(p, s.obtain.level, &o.Level, schema.Integer)
	schema.Read(p, s.obtain.hatchedMap, &o.HatchedMap, schema.Integer)
	return o
}

func (s *Schema) readContestStats(p *schema.Pass) ContestStats {
	var c ContestStats
	schema.Read(p, s.contest.cool, &c.Cool, schema.Integer)
	schema.Read(p, s.contest.beauty, &c.Beauty, schema.Integer)
	schema.Read(p, s.contest.cute, &c.Cute, schema.Integer)
	schema.Read(p, s.contest.smart, &c.Smart, schema.Integer)
	schema.Read(p, s.contest.tough, &c.Tough, schema.Integer)
	schema.Read(p, s.contest.sheen, &c.Sheen, schema.Integer)
	return c
}
