package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cableclub/internal/config"
	"github.com/roach88/cableclub/internal/testutil"
	"github.com/roach88/cableclub/internal/wire"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns a valid configuration over fixture directories.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	rulesDir := t.TempDir()
	testutil.WriteRule(t, rulesDir, "singles.txt", "Singles", "1", "50", "PIKACHU,VOLTORB")

	cfg := config.Default()
	cfg.PBSDir = testutil.WritePBS(t)
	cfg.RulesDir = rulesDir
	cfg.Port = 0
	cfg.PollIntervalMS = 20
	require.NoError(t, cfg.Validate())
	return &cfg
}

func newTestServer(t *testing.T, cfg *config.Config, opts ...Option) *Server {
	t.Helper()
	base := []Option{WithLogger(quietLogger()), WithTokens(NewSequenceGenerator("t"))}
	s, err := New(cfg, append(base, opts...)...)
	require.NoError(t, err)
	return s
}

// newUnitServer returns a server whose loop is driven by the test itself.
func newUnitServer(t *testing.T, cfg *config.Config, opts ...Option) *Server {
	t.Helper()
	s := newTestServer(t, cfg, opts...)
	s.queue = newEventQueue()
	t.Cleanup(func() {
		s.closeAll()
		s.queue.Close()
		s.wg.Wait()
	})
	return s
}

// fakeConn records writes and blocks reads until closed.
type fakeConn struct {
	mu      sync.Mutex
	written bytes.Buffer
	closed  chan struct{}
	once    sync.Once
	addr    fakeAddr
}

type fakeAddr string

func (a fakeAddr) Network() string { return "fake" }
func (a fakeAddr) String() string  { return string(a) }

var fakeSeq struct {
	sync.Mutex
	n int
}

func newFakeConn() *fakeConn {
	fakeSeq.Lock()
	fakeSeq.n++
	n := fakeSeq.n
	fakeSeq.Unlock()
	return &fakeConn{closed: make(chan struct{}), addr: fakeAddr("10.0.0." + strconv.Itoa(n) + ":5000")}
}

func (c *fakeConn) Read([]byte) (int, error) {
	<-c.closed
	return 0, net.ErrClosed
}

func (c *fakeConn) Write(b []byte) (int, error) {
	select {
	case <-c.closed:
		return 0, net.ErrClosed
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written.Write(b)
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written.String()
}

func (c *fakeConn) LocalAddr() net.Addr              { return fakeAddr("server") }
func (c *fakeConn) RemoteAddr() net.Addr             { return c.addr }
func (c *fakeConn) SetDeadline(time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

// join accepts a fake connection and returns its client.
func join(t *testing.T, s *Server) (*Client, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	s.accept(conn)
	c, ok := s.clients.get(s.nextID)
	require.True(t, ok)
	return c, conn
}

// findLine encodes a find request with an empty party.
func findLine(id, peer int64, name string) []byte {
	return wire.NewWriter(testutil.Find{
		PeerID:      peer,
		Name:        name,
		ID:          id,
		TrainerType: "POKEMONTRAINER_" + name,
		WinText:     "gg",
		LoseText:    "oh no",
		Party:       []string{"0"},
	}.Tokens()...).Bytes()
}

// partyLine encodes a find request carrying the given party tokens.
func partyLine(id, peer int64, party []string) []byte {
	return wire.NewWriter(testutil.Find{
		PeerID: peer, Name: "Red", ID: id, TrainerType: "POKEMONTRAINER_Red",
		Party: party,
	}.Tokens()...).Bytes()
}

func inTable(s *Server, c *Client) bool {
	_, ok := s.clients.get(c.ID)
	return ok
}

// startServer serves on a loopback port until the test ends.
func startServer(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := Listen(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)
	serveOn(t, s, ln)
	return ln.Addr().String()
}

// serveOn runs s on ln until the test ends.
func serveOn(t *testing.T, s *Server, ln net.Listener) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}
