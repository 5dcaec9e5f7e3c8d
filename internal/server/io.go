package server

import (
	"bytes"
	"errors"
	"net"
	"time"

	"github.com/roach88/cableclub/internal/wire"
)

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			s.queue.Enqueue(event{typ: eventListenError, err: err})
			return
		}
		if s.limiter != nil && !s.limiter.Allow() {
			s.refuse(conn)
			continue
		}
		if err := setUserTimeout(conn, s.cfg.UserTimeout()); err != nil {
			s.logger.Warn("could not set user timeout", "addr", conn.RemoteAddr().String(), "error", err)
		}
		if !s.queue.Enqueue(event{typ: eventAccept, conn: conn}) {
			conn.Close()
			return
		}
	}
}

// refuse turns away a connection over the accept rate.
func (s *Server) refuse(conn net.Conn) {
	s.metrics.AcceptsThrottled.Inc()
	s.logger.Warn("connection refused: accept rate exceeded", "addr", conn.RemoteAddr().String())
	_ = conn.SetWriteDeadline(time.Now().Add(farewellTimeout))
	_, _ = wire.NewWriter("disconnect", ReasonBusy).SendNow(conn)
	conn.Close()
}

func (s *Server) readLoop(id ConnID, conn net.Conn) {
	defer s.wg.Done()
	buf := make([]byte, readChunk)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if !s.queue.Enqueue(event{typ: eventData, id: id, data: bytes.Clone(buf[:n])}) {
				return
			}
		}
		if err != nil {
			s.queue.Enqueue(event{typ: eventReadError, id: id, err: err})
			return
		}
	}
}

func (s *Server) writeLoop(id ConnID, conn net.Conn, writes <-chan []byte) {
	defer s.wg.Done()
	for b := range writes {
		n, err := conn.Write(b)
		s.queue.Enqueue(event{typ: eventWritten, id: id, n: n, err: err})
		if err != nil {
			return
		}
	}
}
