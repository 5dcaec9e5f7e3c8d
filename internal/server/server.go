package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/roach88/cableclub/internal/config"
	"github.com/roach88/cableclub/internal/party"
	"github.com/roach88/cableclub/internal/rules"
)

const (
	// readChunk is the most bytes taken from a socket per read.
	readChunk = 4096

	// farewellTimeout bounds the final disconnect write.
	farewellTimeout = 250 * time.Millisecond
)

// ErrServing is returned when Serve is called on a running server.
var ErrServing = errors.New("server: already serving")

// Hinter delivers early refresh hints for the rules directory.
type Hinter interface {
	Hints() <-chan struct{}
}

// Server pairs clients and relays their traffic.
type Server struct {
	cfg     *config.Config
	schema  *party.Schema
	watcher *rules.Watcher
	logger  *slog.Logger
	clock   clock.Clock
	tokens  TokenGenerator
	journal Journal
	metrics *Metrics
	limiter *rate.Limiter
	hinter  Hinter

	minVersion  string
	poll        time.Duration
	refresh     time.Duration
	nextRefresh time.Time

	// Loop-owned state.
	clients *connTable
	nextID  ConnID
	queue   *eventQueue

	serving  atomic.Bool
	addr     atomic.Pointer[net.Addr]
	snapshot atomic.Pointer[rules.RuleSet]
	wg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock replaces the wall clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithTokens sets the session and match token generator.
func WithTokens(g TokenGenerator) Option {
	return func(s *Server) { s.tokens = g }
}

// WithJournal records sessions and matches.
func WithJournal(j Journal) Option {
	return func(s *Server) { s.journal = j }
}

// WithMetrics sets the collectors. Defaults to a fresh private set.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithSchema overrides the party schema built from the PBS directory.
func WithSchema(sc *party.Schema) Option {
	return func(s *Server) { s.schema = sc }
}

// WithHinter wakes the loop for an early rules check.
func WithHinter(h Hinter) Option {
	return func(s *Server) { s.hinter = h }
}

// New builds a server from a validated configuration. It loads the PBS
// data and the initial rules.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:        cfg,
		logger:     slog.Default(),
		clock:      clock.New(),
		tokens:     UUIDv7Generator{},
		journal:    nopJournal{},
		minVersion: cfg.MinVersion(),
		poll:       cfg.PollInterval(),
		refresh:    cfg.RefreshInterval(),
		clients:    newConnTable(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if cfg.AcceptRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), cfg.AcceptBurst)
	}

	if s.schema == nil {
		sc, data, err := LoadSchema(cfg)
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.schema = sc
		s.logger.Info("pokedex loaded", "species", data.Dex.Len(), "moves", len(data.Moves),
			"abilities", len(data.Abilities), "items", len(data.Items))
	}

	w, err := rules.NewWatcher(cfg.RulesDir, s.logger)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.watcher = w
	s.publishRules()
	s.nextRefresh = s.clock.Now().Add(s.refresh)
	return s, nil
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Rules returns the active rule snapshot. Safe from any goroutine.
func (s *Server) Rules() *rules.RuleSet {
	return s.snapshot.Load()
}

// Addr returns the listening address once Serve has started, or nil.
func (s *Server) Addr() net.Addr {
	if a := s.addr.Load(); a != nil {
		return *a
	}
	return nil
}

// ListenAndServe listens on the configured address and serves until ctx
// is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := Listen(ctx, s.cfg.Address())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the loop on ln until ctx is done, which returns nil, or the
// listener fails. ln is closed on return, as is every client connection.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.serving.CompareAndSwap(false, true) {
		return ErrServing
	}
	addr := ln.Addr()
	s.addr.Store(&addr)
	s.queue = newEventQueue()
	s.logger.Info("server started", "addr", addr.String(), "min_version", s.minVersion,
		"rules", s.watcher.Current().Len())

	s.wg.Add(1)
	go s.acceptLoop(ln)

	err := s.loop(ctx)

	ln.Close()
	s.closeAll()
	s.queue.Close()
	s.wg.Wait()
	for _, e := range s.queue.Drain() {
		if e.typ == eventAccept {
			e.conn.Close()
		}
	}
	s.logger.Info("server stopped")
	return err
}

// closeAll drops every client without a farewell message.
func (s *Server) closeAll() {
	for s.clients.len() > 0 {
		id := s.clients.order[0]
		c, _ := s.clients.remove(id)
		s.release(c, sessionEnd(CodeTransport, "", errServerStopped))
	}
}

var errServerStopped = errors.New("server stopped")
