package server

import (
	"github.com/roach88/cableclub/internal/party"
	"github.com/roach88/cableclub/internal/wire"
)

// State is a connection's phase.
type State interface {
	Name() string
}

// Connecting is the initial state: the server waits for a find request.
type Connecting struct{}

func (Connecting) Name() string { return "connecting" }

// Finding holds a validated request while the client waits for a peer.
type Finding struct {
	PeerID      int64 // public ID the client wants to meet
	ID          int64 // the client's own, untruncated ID
	Name        string
	TrainerType string
	WinText     string
	LoseText    string
	Party       *party.Party
	PartyRaw    []string
}

func (*Finding) Name() string { return "finding" }

// PublicID is the rendezvous key other clients ask for.
func (f *Finding) PublicID() int64 {
	return PublicID(f.ID)
}

// AppendTo writes what a peer learns about this trainer.
func (f *Finding) AppendTo(w *wire.Writer) *wire.Writer {
	return w.Add(f.Name).
		Add(f.TrainerType).
		Add(f.WinText).
		Add(f.LoseText).
		AddRaw(f.PartyRaw)
}

// Connected relays every line to Peer.
type Connected struct {
	Peer  ConnID
	Match string
}

func (Connected) Name() string { return "connected" }
