package party

import "github.com/roach88/cableclub/internal/schema"

// Extensions are the plugin-dependent fields at the end of a Pokemon. Each
// one stays unset unless its feature is enabled.
type Extensions struct {
	Scale            schema.Slot[int64]
	Memento          schema.Slot[string]
	DynamaxLevel     schema.Slot[int64]
	GigantamaxFactor schema.Slot[bool]
	DynamaxAble      schema.Slot[bool]
	TeraType         schema.Slot[string]
	FocusType        schema.Slot[string]
}

type extensionFields struct {
	scale, dynamaxLevel     *schema.Field[int64]
	memento, tera, focus    *schema.Field[string]
	gigantamax, dynamaxAble *schema.Field[bool]
}

func newExtensionFields() extensionFields {
	return extensionFields{
		scale:        schema.Int("Extensions.scale", schema.Min(0)),
		memento:      schema.Str("Extensions.memento", schema.Unbounded),
		dynamaxLevel: schema.Int("Extensions.dmax_level", schema.Min(0)),
		gigantamax:   schema.Bool("Extensions.gmax_factor"),
		dynamaxAble:  schema.Bool("Extensions.dmax_able"),
		tera:         schema.Str("Extensions.tera_type", schema.Unbounded),
		focus:        schema.Str("Extensions.focus_type", schema.Unbounded),
	}
}

func (s *Schema) readExtensions(p *schema.Pass) Extensions {
	var e Extensions
	f := s.features
	if f.EssentialsDeluxe || f.MUIMementos {
		schema.Read(p, s.ext.scale, &e.Scale, schema.Integer)
	}
	if f.MUIMementos {
		schema.Read(p, s.ext.memento, &e.Memento, schema.Text)
	}
	if f.ZUDDynamax {
		schema.Read(p, s.ext.dynamaxLevel, &e.DynamaxLevel, schema.Integer)
		schema.Read(p, s.ext.gigantamax, &e.GigantamaxFactor, schema.Boolean)
		schema.Read(p, s.ext.dynamaxAble, &e.DynamaxAble, schema.Boolean)
	}
	if f.Tera {
		schema.Read(p, s.ext.tera, &e.TeraType, schema.Text)
	}
	if f.Focus {
		schema.Read(p, s.ext.focus, &e.FocusType, schema.Text)
	}
	return e
}
