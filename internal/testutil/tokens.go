package testutil

import "strconv"

// Flags mirrors the feature switches that add sections to a Pokemon.
type Flags struct {
	PLA      bool
	Deluxe   bool
	Mementos bool
	Dynamax  bool
	Tera     bool
	Focus    bool
}

// Mon describes a Pokemon to encode. The zero value of each field is
// replaced by a legal default in Tokens.
type Mon struct {
	Species   string
	Level     int
	OwnerName string
	Form      int
	Item      string
	Gender    int
	Ability   string
	Name      string
	Ball      string
	IVs       [6]int
	EVs       [6]int
	Sketched  []string
	Moves     []string
	Ribbons   []string
	Mail      bool
	Fusion    *Mon
}

// DefaultMon returns a Pokemon accepted by the fixture PBS data.
func DefaultMon() Mon {
	return Mon{
		Species:   Species,
		Level:     50,
		OwnerName: "Red",
		Item:      Item,
		Gender:    0,
		Ability:   Ability,
		Name:      "Sparky",
		Ball:      Ball,
		IVs:       [6]int{31, 31, 31, 31, 31, 31},
		EVs:       [6]int{252, 252, 4, 0, 0, 0},
		Moves:     []string{Move},
	}
}

// Tokens encodes m in wire order for the given flags.
func (m Mon) Tokens(f Flags) []string {
	itoa := strconv.Itoa
	out := []string{
		m.Species, itoa(m.Level), "12345", "54321", m.OwnerName, "0", "125000",
		itoa(m.Form), m.Item,
	}

	out = append(out, itoa(len(m.Sketched)))
	for _, mv := range m.Sketched {
		out = append(out, mv, "0")
		if f.PLA {
			out = append(out, "")
		}
	}
	out = append(out, itoa(len(m.Moves)))
	out = append(out, m.Moves...)
	if f.PLA {
		out = append(out, "0")
	}

	out = append(out, itoa(m.Gender), "false", m.Ability, "0", "HARDY", "HARDY")
	for i := 0; i < 6; i++ {
		out = append(out, itoa(m.IVs[i]), "false", itoa(m.EVs[i]))
	}

	out = append(out, "70", m.Name, m.Ball, "0", "0")
	out = append(out, "0", "1", "", "5", "0") // obtain
	out = append(out, "0", "0", "0", "0", "0", "0")
	out = append(out, itoa(len(m.Ribbons)))
	out = append(out, m.Ribbons...)

	if f.Deluxe || f.Mementos {
		out = append(out, "100")
	}
	if f.Mementos {
		out = append(out, "")
	}
	if f.Dynamax {
		out = append(out, "0", "false", "true")
	}
	if f.Tera {
		out = append(out, "ELECTRIC")
	}
	if f.Focus {
		out = append(out, "")
	}

	if m.Mail {
		out = append(out, "true", "GRASSMAIL", "Hello, friend", "Red")
		out = append(out, "1", "0", "false", "0", "false", "false")
		out = append(out, "0", "")
	} else {
		out = append(out, "false")
	}

	if m.Fusion != nil {
		out = append(out, "true")
		out = append(out, m.Fusion.Tokens(f)...)
	} else {
		out = append(out, "false")
	}
	return out
}

// PartyTokens encodes a party of the given members.
func PartyTokens(f Flags, mons ...Mon) []string {
	out := []string{strconv.Itoa(len(mons))}
	for _, m := range mons {
		out = append(out, m.Tokens(f)...)
	}
	return out
}

// Find describes the header of a find request.
type Find struct {
	Version     string
	PeerID      int64
	Name        string
	ID          int64
	TrainerType string
	WinText     string
	LoseText    string
	Party       []string
}

// Tokens encodes the request, command tag included.
func (r Find) Tokens() []string {
	version := r.Version
	if version == "" {
		version = "1.0.0"
	}
	out := []string{
		"find", version,
		strconv.FormatInt(r.PeerID, 10),
		r.Name,
		strconv.FormatInt(r.ID, 10),
		r.TrainerType, r.WinText, r.LoseText,
	}
	return append(out, r.Party...)
}
