package server

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tu "github.com/roach88/cableclub/internal/testutil"
	"github.com/roach88/cableclub/internal/wire"
)

func TestMatchSymmetry(t *testing.T) {
	s := newUnitServer(t, testConfig(t))

	a, _ := join(t, s)
	b, _ := join(t, s)

	s.receive(a, findLine(0x00001234, 0x5678, "Red"))
	require.IsType(t, &Finding{}, a.State)

	s.receive(b, findLine(0x00005678, 0x1234, "Blue"))

	sa, ok := a.State.(Connected)
	require.True(t, ok, "a is %s", a.State.Name())
	sb, ok := b.State.(Connected)
	require.True(t, ok, "b is %s", b.State.Name())

	assert.Equal(t, b.ID, sa.Peer)
	assert.Equal(t, a.ID, sb.Peer)
	assert.Equal(t, sa.Match, sb.Match)
	assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics().Matches))
}

func TestMatchUsesLow16Bits(t *testing.T) {
	s := newUnitServer(t, testConfig(t))

	a, _ := join(t, s)
	b, _ := join(t, s)

	s.receive(a, findLine(0x7FFF1234, 0x5678, "Red"))
	s.receive(b, findLine(0x00AB5678, 0x1234, "Blue"))

	assert.IsType(t, Connected{}, a.State)
	assert.IsType(t, Connected{}, b.State)
}

func TestNonMatch(t *testing.T) {
	tests := []struct {
		name       string
		idA, peerA int64
		idB, peerB int64
	}{
		{"peer of a differs", 0x1234, 0x9999, 0x5678, 0x1234},
		{"peer of b differs", 0x1234, 0x5678, 0x5678, 0x9999},
		{"peer holds full id", 0x1234, 0x15678, 0x15678, 0x1234},
		{"both ask for themselves", 0x1234, 0x1234, 0x5678, 0x5678},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newUnitServer(t, testConfig(t))
			a, _ := join(t, s)
			b, _ := join(t, s)

			s.receive(a, findLine(tt.idA, tt.peerA, "Red"))
			s.receive(b, findLine(tt.idB, tt.peerB, "Blue"))

			assert.IsType(t, &Finding{}, a.State)
			assert.IsType(t, &Finding{}, b.State)
			assert.Zero(t, a.Pending())
			assert.Zero(t, b.Pending())
		})
	}
}

func TestFirstWaitingClientWins(t *testing.T) {
	s := newUnitServer(t, testConfig(t))

	first, _ := join(t, s)
	second, _ := join(t, s)
	arrival, _ := join(t, s)

	s.receive(first, findLine(0x1234, 0x5678, "First"))
	s.receive(second, findLine(0x1234, 0x5678, "Second"))
	s.receive(arrival, findLine(0x5678, 0x1234, "Arrival"))

	st, ok := arrival.State.(Connected)
	require.True(t, ok)
	assert.Equal(t, first.ID, st.Peer)
	assert.IsType(t, Connected{}, first.State)
	assert.IsType(t, &Finding{}, second.State)
}

func TestFoundMessages(t *testing.T) {
	s := newUnitServer(t, testConfig(t))

	waiting, _ := join(t, s)
	arrival, _ := join(t, s)

	s.receive(waiting, wire.NewWriter(tu.Find{
		PeerID: 0x5678, Name: "Blue", ID: 0x1234, TrainerType: "RIVAL1",
		WinText: "Smell ya later", LoseText: "What?, no way", Party: []string{"0"},
	}.Tokens()...).Bytes())
	s.receive(arrival, wire.NewWriter(tu.Find{
		PeerID: 0x1234, Name: "Red", ID: 0x5678, TrainerType: "POKEMONTRAINER_Red",
		WinText: "I won!", LoseText: `Back\slash`, Party: []string{"0"},
	}.Tokens()...).Bytes())

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "found_arrival", arrival.outbound)
	g.Assert(t, "found_waiting", waiting.outbound)
}

func TestFoundCarriesPartyVerbatim(t *testing.T) {
	s := newUnitServer(t, testConfig(t))

	mon := tu.DefaultMon()
	mon.Name = "Zap, Zap"
	partyTokens := tu.PartyTokens(tu.Flags{}, mon)

	waiting, _ := join(t, s)
	arrival, _ := join(t, s)
	s.receive(waiting, partyLine(0x1234, 0x5678, partyTokens))
	s.receive(arrival, findLine(0x5678, 0x1234, "Blue"))

	r, ok := wire.NewReader(arrival.outbound[:len(arrival.outbound)-1])
	require.True(t, ok)
	fields := r.Remaining()

	// found, role, name, trainertype, win, lose, then the party
	require.Greater(t, len(fields), 6+len(partyTokens))
	assert.Equal(t, partyTokens, fields[6:6+len(partyTokens)])
	assert.Equal(t, s.Rules().Fields(), fields[6+len(partyTokens):])
}

func TestCascadeDisconnect(t *testing.T) {
	s := newUnitServer(t, testConfig(t))

	a, connA := join(t, s)
	b, connB := join(t, s)
	bystander, connC := join(t, s)

	s.receive(a, findLine(0x1234, 0x5678, "Red"))
	s.receive(b, findLine(0x5678, 0x1234, "Blue"))
	s.receive(bystander, findLine(0x1111, 0x2222, "Green"))

	require.NoError(t, s.process([]event{{typ: eventReadError, id: a.ID, err: io.EOF}}))

	assert.False(t, inTable(s, a))
	assert.False(t, inTable(s, b))
	assert.True(t, inTable(s, bystander))

	assert.True(t, connA.isClosed())
	assert.True(t, connB.isClosed())
	assert.False(t, connC.isClosed())
	assert.Equal(t, "disconnect,client disconnected\n", connA.Written())
	assert.Equal(t, "disconnect,peer disconnected\n", connB.Written())

	assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics().ConnectionsActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics().Disconnects.WithLabelValues(string(CodePeer))))
}

func TestDisconnectIsIdempotent(t *testing.T) {
	s := newUnitServer(t, testConfig(t))
	a, connA := join(t, s)

	require.NoError(t, s.process([]event{
		{typ: eventReadError, id: a.ID, err: io.EOF},
		{typ: eventData, id: a.ID, data: []byte("late\n")},
		{typ: eventReadError, id: a.ID, err: io.EOF},
	}))

	assert.False(t, inTable(s, a))
	assert.Equal(t, "disconnect,client disconnected\n", connA.Written())
	assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics().Disconnects.WithLabelValues(string(CodeTransport))))
}

func TestForwardVerbatim(t *testing.T) {
	s := newUnitServer(t, testConfig(t))

	a, _ := join(t, s)
	b, _ := join(t, s)
	s.receive(a, findLine(0x1234, 0x5678, "Red"))
	s.receive(b, findLine(0x5678, 0x1234, "Blue"))
	before := b.Pending()

	line := `choice,0,move\,1,x\\y`
	s.receive(a, []byte(line+"\n"))

	assert.Equal(t, line+"\n", string(b.outbound[before:]))
}

func TestFindingIgnoresMessages(t *testing.T) {
	s := newUnitServer(t, testConfig(t))
	a, conn := join(t, s)

	s.receive(a, findLine(0x1234, 0x5678, "Red"))
	s.receive(a, []byte("hello,anyone\nfind,1.0.0\n"))

	assert.IsType(t, &Finding{}, a.State)
	assert.Zero(t, a.Pending())
	assert.True(t, inTable(s, a))
	assert.Empty(t, conn.Written())
}

func TestPartialLinesAreBuffered(t *testing.T) {
	s := newUnitServer(t, testConfig(t))
	a, _ := join(t, s)

	line := findLine(0x1234, 0x5678, "Red")
	s.receive(a, line[:7])
	assert.IsType(t, Connecting{}, a.State)
	assert.Equal(t, line[:7], a.inbound)

	s.receive(a, line[7:])
	assert.IsType(t, &Finding{}, a.State)
	assert.Empty(t, a.inbound)
}

func TestRejections(t *testing.T) {
	badLevel := tu.DefaultMon()
	badLevel.Level = 101

	tests := []struct {
		name   string
		line   string
		reason string
		code   ErrorCode
	}{
		{
			name:   "wrong command",
			line:   "hello,world\n",
			reason: ReasonNotCableClub,
			code:   CodeRejected,
		},
		{
			name:   "old version",
			line:   string(wire.NewWriter(tu.Find{Version: "0.9", Party: []string{"0"}}.Tokens()...).Bytes()),
			reason: ReasonInvalidVersion,
			code:   CodeRejected,
		},
		{
			name:   "truncated header",
			line:   "find,1.0.0,5678,Red\n",
			reason: ReasonIncomplete,
			code:   CodeExhausted,
		},
		{
			name:   "non-numeric peer id",
			line:   "find,1.0.0,abc,Red,1234,T,w,l,0\n",
			reason: ReasonInvalidContent,
			code:   CodeValidation,
		},
		{
			name:   "truncated party",
			line:   string(partyLine(0x1234, 0x5678, []string{"1", tu.Species, "50"})),
			reason: ReasonIncomplete,
			code:   CodeExhausted,
		},
		{
			name:   "level above limit",
			line:   string(partyLine(0x1234, 0x5678, tu.PartyTokens(tu.Flags{}, badLevel))),
			reason: ReasonInvalidParty,
			code:   CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newUnitServer(t, testConfig(t))
			a, conn := join(t, s)

			s.receive(a, []byte(tt.line))

			assert.False(t, inTable(s, a))
			assert.True(t, conn.isClosed())
			assert.Equal(t, "disconnect,"+wire.Escape(tt.reason)+"\n", conn.Written())
			assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics().Disconnects.WithLabelValues(string(tt.code))))
		})
	}
}

func TestProtocolErrorsCloseSilently(t *testing.T) {
	fused := tu.DefaultMon()
	inner := tu.DefaultMon()
	innermost := tu.DefaultMon()
	inner.Fusion = &innermost
	fused.Fusion = &inner

	tests := []struct {
		name string
		line []byte
	}{
		{"invalid utf-8", []byte("find,1.0.0,\xff\xfe\n")},
		{"fusion too deep", partyLine(0x1234, 0x5678, tu.PartyTokens(tu.Flags{}, fused))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newUnitServer(t, testConfig(t))
			a, conn := join(t, s)

			s.receive(a, tt.line)

			assert.False(t, inTable(s, a))
			assert.True(t, conn.isClosed())
			assert.Empty(t, conn.Written())
		})
	}
}

func TestDetailedRejections(t *testing.T) {
	cfg := testConfig(t)
	cfg.DetailedRejections = true

	badLevel := tu.DefaultMon()
	badLevel.Level = 101

	t.Run("validation detail", func(t *testing.T) {
		s := newUnitServer(t, cfg)
		a, conn := join(t, s)
		s.receive(a, partyLine(0x1234, 0x5678, tu.PartyTokens(tu.Flags{}, badLevel)))

		r, ok := wire.NewReader([]byte(strings.TrimSuffix(conn.Written(), "\n")))
		require.True(t, ok)
		fields := r.Remaining()
		require.Len(t, fields, 2)
		assert.Equal(t, "disconnect", fields[0])
		assert.True(t, strings.HasPrefix(fields[1], ReasonInvalidParty+": "), fields[1])
		assert.Contains(t, fields[1], "Pokemon.level")
	})

	t.Run("protocol error is named", func(t *testing.T) {
		s := newUnitServer(t, cfg)
		a, conn := join(t, s)
		s.receive(a, []byte("\xff\n"))

		assert.Equal(t, "disconnect,invalid content\n", conn.Written())
	})

	t.Run("rejections stay plain", func(t *testing.T) {
		s := newUnitServer(t, cfg)
		a, conn := join(t, s)
		s.receive(a, []byte("hello\n"))

		assert.Equal(t, "disconnect,not a cable_club message\n", conn.Written())
	})
}

func TestPanicIsolatedToClient(t *testing.T) {
	s := newUnitServer(t, testConfig(t))

	other, _ := join(t, s)
	s.receive(other, findLine(0x1111, 0x2222, "Green"))

	a, conn := join(t, s)
	s.schema = nil
	s.receive(a, findLine(0x1234, 0x5678, "Red"))

	assert.False(t, inTable(s, a))
	assert.Equal(t, "disconnect,server error\n", conn.Written())
	assert.True(t, inTable(s, other))
	assert.IsType(t, &Finding{}, other.State)
}

func TestLineLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxLineBytes = 64
	s := newUnitServer(t, cfg)
	a, conn := join(t, s)

	s.receive(a, []byte(strings.Repeat("x", 40)))
	require.True(t, inTable(s, a))

	s.receive(a, []byte(strings.Repeat("x", 40)))
	assert.False(t, inTable(s, a))
	assert.Empty(t, conn.Written())
}

func TestSlowReaderIsDropped(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxLineBytes = 512
	cfg.MaxOutboundBytes = 1024
	s := newUnitServer(t, cfg)

	a, connA := join(t, s)
	b, connB := join(t, s)
	s.receive(a, findLine(0x1234, 0x5678, "Red"))
	s.receive(b, findLine(0x5678, 0x1234, "Blue"))
	require.IsType(t, Connected{}, a.State)

	// Nothing is flushed, so b's backlog only grows.
	line := []byte("chat," + strings.Repeat("x", 400) + "\n")
	s.receive(a, line)
	s.receive(a, line)
	require.True(t, inTable(s, b), "backlog still under the limit")

	s.receive(a, line)
	assert.False(t, inTable(s, b))
	assert.False(t, inTable(s, a))
	assert.True(t, connB.isClosed())
	assert.Empty(t, connB.Written(), "no farewell for a client that is not reading")
	assert.Equal(t, "disconnect,peer disconnected\n", connA.Written())
	assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics().Disconnects.WithLabelValues(string(CodeTransport))))
}

func TestFlushKeepsOneWriteInFlight(t *testing.T) {
	s := newUnitServer(t, testConfig(t))
	a, conn := join(t, s)

	a.Queue([]byte("abc\n"))
	s.flush()
	require.True(t, a.writing)

	a.Queue([]byte("def\n"))
	s.flush()

	var written []event
	require.Eventually(t, func() bool {
		for _, e := range s.queue.Drain() {
			if e.typ == eventWritten {
				written = append(written, e)
			}
		}
		return len(written) == 1
	}, tu.ReadTimeout, 5*time.Millisecond)

	require.NoError(t, s.process(written))
	assert.False(t, a.writing)
	assert.Equal(t, "def\n", string(a.outbound))
	assert.Equal(t, "abc\n", conn.Written())
}

type recordingJournal struct {
	opened  []Session
	closed  []Session
	matches []Match
}

func (j *recordingJournal) SessionOpened(s Session) { j.opened = append(j.opened, s) }
func (j *recordingJournal) SessionClosed(s Session) { j.closed = append(j.closed, s) }
func (j *recordingJournal) MatchMade(m Match)       { j.matches = append(j.matches, m) }

func TestJournal(t *testing.T) {
	j := &recordingJournal{}
	s := newUnitServer(t, testConfig(t), WithJournal(j), WithTokens(NewFixedGenerator("s-a", "s-b", "m-1")))

	a, _ := join(t, s)
	b, _ := join(t, s)
	s.receive(a, findLine(0x1234, 0x5678, "Red"))
	s.receive(b, findLine(0x15678, 0x1234, "Blue"))
	require.NoError(t, s.process([]event{{typ: eventReadError, id: b.ID, err: io.EOF}}))

	require.Len(t, j.opened, 2)
	assert.Equal(t, "s-a", j.opened[0].Token)
	assert.Equal(t, a.Addr, j.opened[0].Addr)

	require.Len(t, j.matches, 1)
	m := j.matches[0]
	assert.Equal(t, "m-1", m.Token)
	assert.Equal(t, "s-a", m.WaitingSession)
	assert.Equal(t, "s-b", m.ArrivingSession)
	assert.Equal(t, int64(0x1234), m.WaitingPublicID)
	assert.Equal(t, int64(0x5678), m.ArrivingPublicID)
	assert.Equal(t, "Red", m.WaitingTrainer)
	assert.Equal(t, "Blue", m.ArrivingTrainer)

	require.Len(t, j.closed, 2)
	assert.Equal(t, Session{Token: "s-b", Addr: b.Addr, At: j.closed[0].At, Code: CodeTransport, Reason: ReasonClientClosed}, j.closed[0])
	assert.Equal(t, CodePeer, j.closed[1].Code)
	assert.Equal(t, ReasonPeerDisconnected, j.closed[1].Reason)
}

func TestListenerErrorIsFatal(t *testing.T) {
	s := newUnitServer(t, testConfig(t))
	a, _ := join(t, s)

	err := s.process([]event{
		{typ: eventData, id: a.ID, data: findLine(0x1234, 0x5678, "Red")},
		{typ: eventListenError, err: io.ErrUnexpectedEOF},
	})
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.IsType(t, Connecting{}, a.State)
}
