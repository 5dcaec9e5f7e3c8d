package server

import (
	"fmt"

	"github.com/roach88/cableclub/internal/config"
	"github.com/roach88/cableclub/internal/party"
	"github.com/roach88/cableclub/internal/pokedex"
	"github.com/roach88/cableclub/internal/wire"
)

// ParseFind decodes and validates one find request line (without its
// newline). Failures are *SessionError values carrying the reason a client
// would be sent.
func ParseFind(line []byte, sc *party.Schema, minVersion string) (*Finding, error) {
	r, ok := wire.NewReader(line)
	if !ok {
		return nil, sessionEnd(CodeProtocol, "", wire.ErrUnreadable)
	}
	if tag, _ := r.Consume(); tag != "find" {
		return nil, sessionEnd(CodeRejected, ReasonNotCableClub, nil)
	}

	version, err := r.Consume()
	if err != nil {
		return nil, classifyHeader(fmt.Errorf("version: %w", err))
	}
	if !config.VersionAtLeast(version, minVersion) {
		return nil, sessionEnd(CodeRejected, ReasonInvalidVersion,
			fmt.Errorf("client version %q is below %s", version, minVersion))
	}

	f, err := readFindHeader(r)
	if err != nil {
		return nil, classifyHeader(err)
	}
	f.PartyRaw = r.Remaining()
	p, err := sc.ReadParty(r)
	if err != nil {
		return nil, classifyParty(err)
	}
	f.Party = p
	return f, nil
}

// ParseParty decodes a bare party payload line, as it follows the find
// header on the wire.
func ParseParty(line []byte, sc *party.Schema) (*party.Party, error) {
	r, ok := wire.NewReader(line)
	if !ok {
		return nil, sessionEnd(CodeProtocol, "", wire.ErrUnreadable)
	}
	p, err := sc.ReadParty(r)
	if err != nil {
		return nil, classifyParty(err)
	}
	return p, nil
}

func readFindHeader(r *wire.Reader) (*Finding, error) {
	f := &Finding{}
	var err error
	if f.PeerID, err = r.ConsumeInt(); err != nil {
		return nil, fmt.Errorf("peer_id: %w", err)
	}
	if f.Name, err = r.Consume(); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	if f.ID, err = r.ConsumeInt(); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if f.TrainerType, err = r.Consume(); err != nil {
		return nil, fmt.Errorf("trainertype: %w", err)
	}
	if f.WinText, err = r.Consume(); err != nil {
		return nil, fmt.Errorf("win_text: %w", err)
	}
	if f.LoseText, err = r.Consume(); err != nil {
		return nil, fmt.Errorf("lose_text: %w", err)
	}
	return f, nil
}

// LoadSchema reads the PBS directory named by cfg and builds the party
// schema for its feature flags and limits.
func LoadSchema(cfg *config.Config) (*party.Schema, *pokedex.Data, error) {
	data, err := pokedex.Load(cfg.PBSDir)
	if err != nil {
		return nil, nil, err
	}
	return party.NewSchema(cfg.Features(), cfg.Limits(), party.CatalogFromData(data)), data, nil
}
