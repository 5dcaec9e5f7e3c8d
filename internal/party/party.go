package party

import (
	"strings"

	"github.com/roach88/cableclub/internal/schema"
)

// Party is a player's team as sent in a find request.
type Party struct {
	Count   schema.Slot[int64]
	Members []Pokemon
}

type partyFields struct {
	count *schema.Field[int64]
}

func newPartyFields() partyFields {
	return partyFields{count: schema.Int("Party.size", schema.Min(0))}
}

func (s *Schema) readParty(p *schema.Pass) *Party {
	party := &Party{}
	n := schema.Count(p, "Party.size")
	if p.Ok() {
		p.Fail(s.party.count.Store(&party.Count, int64(n)))
	}
	for i := 0; i < n && p.Ok(); i++ {
		party.Members = append(party.Members, s.readPokemon(p, 0))
	}
	if r := p.Reader(); p.Ok() && r.Len() > 0 {
		p.Fail(schema.Invalid("Party", strings.Join(r.Remaining(), ","), "data left in reader"))
	}
	return party
}
