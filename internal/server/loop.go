package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/roach88/cableclub/internal/wire"
)

// loop is the single owner of all client state. It returns nil when ctx is
// done and an error when the listener fails.
func (s *Server) loop(ctx context.Context) error {
	var hints <-chan struct{}
	if s.hinter != nil {
		hints = s.hinter.Hints()
	}

	for {
		s.maybeRefresh()

		timer := s.clock.Timer(s.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-s.queue.Wait():
		case <-timer.C:
		case <-hints:
			s.refreshRules()
		}
		timer.Stop()

		if err := s.process(s.queue.Drain()); err != nil {
			return err
		}
		s.flush()
	}
}

// process handles one batch: failures first, then finished writes, then
// accepts, reads and closes in arrival order.
func (s *Server) process(events []event) error {
	for _, e := range events {
		switch {
		case e.typ == eventListenError:
			return fmt.Errorf("server: listener: %w", e.err)
		case e.typ == eventReadError && !errors.Is(e.err, io.EOF):
			s.disconnectID(e.id, sessionEnd(CodeTransport, ReasonClientClosed, e.err))
		case e.typ == eventWritten && e.err != nil:
			s.disconnectID(e.id, sessionEnd(CodeTransport, ReasonClientClosed, e.err))
		}
	}

	for _, e := range events {
		if e.typ != eventWritten || e.err != nil {
			continue
		}
		if c, ok := s.clients.get(e.id); ok {
			c.outbound = c.outbound[e.n:]
			c.writing = false
		}
	}

	for _, e := range events {
		switch e.typ {
		case eventAccept:
			s.accept(e.conn)
		case eventData:
			if c, ok := s.clients.get(e.id); ok {
				s.receive(c, e.data)
			}
		case eventReadError:
			if errors.Is(e.err, io.EOF) {
				s.disconnectID(e.id, sessionEnd(CodeTransport, ReasonClientClosed, nil))
			}
		}
	}
	return nil
}

// flush hands every pending outbound buffer to its writer. At most one
// write per client is in flight.
func (s *Server) flush() {
	s.clients.each(func(c *Client) bool {
		if !c.writing && len(c.outbound) > 0 {
			c.writing = true
			c.writes <- bytes.Clone(c.outbound)
		}
		return true
	})
}

func (s *Server) accept(conn net.Conn) {
	s.nextID++
	c := newClient(s.nextID, conn, s.tokens.Generate())
	s.clients.add(c)

	s.metrics.ConnectionsTotal.Inc()
	s.metrics.ConnectionsActive.Inc()
	s.logger.Info("client connected", "client", c.String(), "session", c.Session)
	s.journal.SessionOpened(Session{Token: c.Session, Addr: c.Addr, At: s.clock.Now()})

	s.wg.Add(2)
	go s.readLoop(c.ID, conn)
	go s.writeLoop(c.ID, conn, c.writes)
}

// receive appends data to the inbound buffer and dispatches every complete
// line. The unterminated remainder stays buffered.
func (s *Server) receive(c *Client, data []byte) {
	c.inbound = append(c.inbound, data...)
	for {
		i := bytes.IndexByte(c.inbound, '\n')
		if i < 0 {
			break
		}
		line := c.inbound[:i]
		c.inbound = c.inbound[i+1:]

		if err := s.dispatch(c, line); err != nil {
			s.disconnect(c, asSessionError(err))
			return
		}
		if _, ok := s.clients.get(c.ID); !ok {
			return
		}
	}

	if len(c.inbound) > s.cfg.MaxLineBytes {
		s.disconnect(c, sessionEnd(CodeProtocol, "", fmt.Errorf("line exceeds %d bytes", s.cfg.MaxLineBytes)))
		return
	}
	c.inbound = bytes.Clone(c.inbound)
}

// dispatch hands one line to the client's state. A panic is turned into an
// error for this client alone.
func (s *Server) dispatch(c *Client, line []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = sessionEnd(CodeInternal, ReasonServerError, fmt.Errorf("panic: %v", r))
		}
	}()

	switch st := c.State.(type) {
	case Connecting:
		return s.handleFind(c, line)
	case *Finding:
		s.logger.Debug("message ignored while finding", "client", c.String())
		return nil
	case Connected:
		s.forward(c, st, line)
		return nil
	default:
		return fmt.Errorf("unknown state %T", st)
	}
}

// handleFind validates a find request and, when a waiting client matches,
// connects the two.
func (s *Server) handleFind(c *Client, line []byte) error {
	f, err := ParseFind(line, s.schema, s.minVersion)
	if err != nil {
		return err
	}
	c.State = f

	s.logger.Debug("client finding",
		"client", c.String(), "trainer", f.Name,
		"public_id", fmt.Sprintf("%#04x", f.PublicID()), "peer_id", fmt.Sprintf("%#04x", f.PeerID))

	if peer, ok := s.findPeer(c); ok {
		s.connect(c, peer)
	}
	return nil
}

// forward relays a line unchanged to the peer. A peer whose unsent backlog
// passes max_outbound_bytes is not reading and is dropped without a
// farewell, which it would not read either.
func (s *Server) forward(c *Client, st Connected, line []byte) {
	peer, ok := s.clients.get(st.Peer)
	if !ok {
		s.logger.Debug("message dropped (no peer)", "client", c.String())
		return
	}
	peer.Queue(line)
	peer.Queue([]byte{'\n'})
	if peer.Pending() > s.cfg.MaxOutboundBytes {
		s.logger.Warn("peer backlog over limit", "client", peer.String(), "pending", peer.Pending())
		s.disconnect(peer, sessionEnd(CodeTransport, "", fmt.Errorf("outbound backlog exceeds %d bytes", s.cfg.MaxOutboundBytes)))
	}
}

func (s *Server) disconnectID(id ConnID, se *SessionError) {
	if c, ok := s.clients.get(id); ok {
		s.disconnect(c, se)
	}
}

// disconnect removes c and, when it was connected, its peer too. A client
// already removed is ignored.
func (s *Server) disconnect(c *Client, se *SessionError) {
	if _, ok := s.clients.remove(c.ID); !ok {
		return
	}
	s.release(c, se)

	if st, ok := c.State.(Connected); ok {
		if peer, ok := s.clients.get(st.Peer); ok {
			s.disconnect(peer, sessionEnd(CodePeer, ReasonPeerDisconnected, nil))
		}
	}
}

// release sends the farewell, closes the transport and records the end of
// the session. c must already be out of the table.
func (s *Server) release(c *Client, se *SessionError) {
	reason := reasonFor(se, s.cfg.DetailedRejections)
	if reason != "" {
		_ = c.conn.SetWriteDeadline(time.Now().Add(farewellTimeout))
		if _, err := wire.NewWriter("disconnect", reason).SendNow(c.conn); err != nil {
			s.logger.Debug("could not send disconnect reason", "client", c.String(), "error", err)
		}
	}
	c.conn.Close()
	close(c.writes)

	s.metrics.ConnectionsActive.Dec()
	s.metrics.Disconnects.WithLabelValues(string(se.Code)).Inc()
	s.logger.Info("client disconnected", "client", c.String(), "session", c.Session,
		"code", string(se.Code), "reason", reason)
	if se.Err != nil {
		s.logger.Debug("disconnect detail", "session", c.Session, "error", se.Err)
	}
	s.journal.SessionClosed(Session{
		Token:  c.Session,
		Addr:   c.Addr,
		At:     s.clock.Now(),
		Code:   se.Code,
		Reason: reason,
	})
}

func (s *Server) maybeRefresh() {
	now := s.clock.Now()
	if now.Before(s.nextRefresh) {
		return
	}
	s.refreshRules()
	s.nextRefresh = now.Add(s.refresh)
}

func (s *Server) refreshRules() {
	changed, err := s.watcher.Check()
	if err != nil {
		s.logger.Warn("rules reload failed", "dir", s.watcher.Dir(), "error", err)
		return
	}
	if changed {
		s.metrics.RuleReloads.Inc()
		s.publishRules()
		s.logger.Info("rules reloaded", "rules", s.watcher.Current().Len())
	}
}

func (s *Server) publishRules() {
	set := s.watcher.Current()
	s.snapshot.Store(set)
	s.metrics.RulesLoaded.Set(float64(set.Len()))
}
