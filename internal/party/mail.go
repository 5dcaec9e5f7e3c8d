package party

import "github.com/roach88/cableclub/internal/schema"

// MailSlots is how many species pictures a mail can carry.
const MailSlots = 3

// MailSpecies is a species picture attached to a mail.
type MailSpecies struct {
	Gender schema.Slot[int64]
	Shiny  schema.Slot[bool]
	Form   schema.Slot[int64]
	Shadow schema.Slot[bool]
	Egg    schema.Slot[bool]
}

// Mail is a held mail item. Species slots without a picture stay unset.
type Mail struct {
	Item    schema.Slot[string]
	Message schema.Slot[string]
	Sender  schema.Slot[string]
	Species [MailSlots]schema.Slot[MailSpecies]
}

type mailSpeciesFields struct {
	gender, form       *schema.Field[int64]
	shiny, shadow, egg *schema.Field[bool]
}

func newMailSpeciesFields() mailSpeciesFields {
	return mailSpeciesFields{
		gender: schema.Int("MailSpecies.gender", schema.Min(0)),
		shiny:  schema.Bool("MailSpecies.shiny"),
		form:   schema.Int("MailSpecies.form", schema.Min(0)),
		shadow: schema.Bool("MailSpecies.shadow"),
		egg:    schema.Bool("MailSpecies.egg"),
	}
}

type mailFields struct {
	item, message, sender *schema.Field[string]
	present               *schema.Field[schema.Optional[int64]]
	species               *schema.Field[MailSpecies]
}

func newMailFields() mailFields {
	return mailFields{
		item:    schema.Str("Mail.item", schema.Unbounded),
		message: schema.Str("Mail.msg", schema.Unbounded),
		sender:  schema.Str("Mail.sender", schema.Unbounded),
		present: schema.OptionalInt("Mail.has_species"),
		species: schema.Plain[MailSpecies]("Mail.species"),
	}
}

func (s *Schema) readMailSpecies(p *schema.Pass) MailSpecies {
	var m MailSpecies
	schema.Read(p, s.mailSpecies.gender, &m.Gender, schema.Integer)
	schema.Read(p, s.mailSpecies.shiny, &m.Shiny, schema.Boolean)
	schema.Read(p, s.mailSpecies.form, &m.Form, schema.Integer)
	schema.Read(p, s.mailSpecies.shadow, &m.Shadow, schema.Boolean)
	schema.Read(p, s.mailSpecies.egg, &m.Egg, schema.Boolean)
	return m
}

func (s *Schema) readMail(p *schema.Pass) *Mail {
	m := &Mail{}
	schema.Read(p, s.mail.item, &m.Item, schema.Text)
	schema.Read(p, s.mail.message, &m.Message, schema.Text)
	schema.Read(p, s.mail.sender, &m.Sender, schema.Text)
	for i := 0; i < MailSlots && p.Ok(); i++ {
		// A missing or zero flag means the slot is empty.
		present := schema.Value(p, s.mail.present, schema.OptInteger)
		if !p.Ok() || !present.Valid || present.Value == 0 {
			continue
		}
		species := s.readMailSpecies(p)
		if p.Ok() {
			p.Fail(s.mail.species.Store(&m.Species[i], species))
		}
	}
	return m
}
