package server

import "github.com/roach88/cableclub/internal/wire"

// PublicID truncates an identifier to its low 16 bits.
func PublicID(id int64) int64 {
	return id & 0xFFFF
}

// Matches reports whether two waiting clients asked for each other. The
// relation is symmetric.
func Matches(a, b *Finding) bool {
	return a.PeerID == b.PublicID() && b.PeerID == a.PublicID()
}

// findPeer returns the first waiting client, in accept order, that matches
// c.
func (s *Server) findPeer(c *Client) (*Client, bool) {
	want, ok := c.State.(*Finding)
	if !ok {
		return nil, false
	}
	var peer *Client
	s.clients.each(func(other *Client) bool {
		if other.ID == c.ID {
			return true
		}
		if f, ok := other.State.(*Finding); ok && Matches(want, f) {
			peer = other
			return false
		}
		return true
	})
	return peer, peer != nil
}

// connect introduces a newly arrived client to the one already waiting.
// Each side gets the other's trainer data followed by the current rules;
// the flag is 0 in the arrival's copy and 1 in the waiting client's copy.
func (s *Server) connect(arrival, waiting *Client) {
	a := arrival.State.(*Finding)
	w := waiting.State.(*Finding)
	rules := s.watcher.Current()

	arrival.Queue(rules.AppendTo(w.AppendTo(wire.NewWriter("found", "0"))).Bytes())
	waiting.Queue(rules.AppendTo(a.AppendTo(wire.NewWriter("found", "1"))).Bytes())

	token := s.tokens.Generate()
	arrival.State = Connected{Peer: waiting.ID, Match: token}
	waiting.State = Connected{Peer: arrival.ID, Match: token}

	s.metrics.Matches.Inc()
	s.logger.Info("clients matched",
		"match", token,
		"client", arrival.String(), "session", arrival.Session,
		"peer", waiting.String(), "peer_session", waiting.Session,
	)
	s.journal.MatchMade(Match{
		Token:            token,
		WaitingSession:   waiting.Session,
		ArrivingSession:  arrival.Session,
		WaitingPublicID:  w.PublicID(),
		ArrivingPublicID: a.PublicID(),
		WaitingTrainer:   w.Name,
		ArrivingTrainer:  a.Name,
		At:               s.clock.Now(),
	})
}
