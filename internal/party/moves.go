package party

import "github.com/roach88/cableclub/internal/schema"

// Move is a move name checked against the move catalog.
type Move struct {
	Name schema.Slot[string]
}

// SketchedMove is a move learnt through a copy move such as Sketch.
type SketchedMove struct {
	Name    schema.Slot[string]
	PPUp    schema.Slot[int64]
	Mastery schema.Slot[schema.Optional[bool]] // PLA only
}

type moveFields struct {
	name *schema.Field[string]
}

func newMoveFields(moves schema.Set[string]) moveFields {
	return moveFields{name: schema.OneOf("Move.name", moves)}
}

type sketchedMoveFields struct {
	name    *schema.Field[string]
	ppup    *schema.Field[int64]
	mastery *schema.Field[schema.Optional[bool]]
}

func newSketchedMoveFields(moves schema.Set[string]) sketchedMoveFields {
	return sketchedMoveFields{
		name:    schema.OneOf("SketchedMove.name", moves),
		ppup:    schema.Int("SketchedMove.ppup", schema.Min(0), schema.Max(3)),
		mastery: schema.OptionalBool("SketchedMove.mastery"),
	}
}

func (s *Schema) readMove(p *schema.Pass) Move {
	var m Move
	schema.Read(p, s.move.name, &m.Name, schema.Text)
	return m
}

func (s *Schema) readMoves(p *schema.Pass, countName string) []Move {
	n := schema.Count(p, countName)
	moves := make([]Move, 0, n)
	for i := 0; i < n && p.Ok(); i++ {
		moves = append(moves, s.readMove(p))
	}
	return moves
}

func (s *Schema) readSketchedMove(p *schema.Pass) SketchedMove {
	var m SketchedMove
	schema.Read(p, s.sketched.name, &m.Name, schema.Text)
	schema.Read(p, s.sketched.ppup, &m.PPUp, schema.Integer)
	if s.features.PLA {
		schema.Read(p, s.sketched.mastery, &m.Mastery, schema.OptBoolean)
	}
	return m
}
