package store

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cableclub/internal/server"
)

func TestJournal_WritesInOrder(t *testing.T) {
	s := createTestStore(t)
	var logs bytes.Buffer
	j := NewJournal(s, slog.New(slog.NewTextHandler(&logs, nil)))

	j.SessionOpened(testSession("s-1", 0))
	j.SessionOpened(testSession("s-2", 1))
	j.MatchMade(testMatch("m-1", "s-1", "s-2", 2))

	closed := testSession("s-2", 3)
	closed.Code = server.CodeTransport
	closed.Reason = server.ReasonClientClosed
	j.SessionClosed(closed)

	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	ctx := context.Background()
	matches, err := s.ListMatches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "m-1", matches[0].Token)

	rec, err := s.ReadSession(ctx, "s-2")
	require.NoError(t, err)
	assert.Equal(t, server.CodeTransport, rec.Code)

	assert.Zero(t, j.Dropped())
	assert.Empty(t, logs.String())
}

func TestJournal_LogsWriteFailures(t *testing.T) {
	s := createTestStore(t)
	var logs bytes.Buffer
	j := NewJournal(s, slog.New(slog.NewTextHandler(&logs, nil)))

	j.MatchMade(testMatch("m-1", "missing-a", "missing-b", 0))
	require.NoError(t, j.Close())

	assert.Contains(t, logs.String(), "journal write failed")
}

func TestJournal_DropsWhenBacklogFull(t *testing.T) {
	s := createTestStore(t)
	var logs bytes.Buffer
	j := &Journal{
		store:   s,
		logger:  slog.New(slog.NewTextHandler(&logs, nil)),
		records: make(chan record, 1),
		done:    make(chan struct{}),
	}

	// No writer is running yet, so the second record has nowhere to go.
	j.SessionOpened(testSession("s-1", 0))
	j.SessionOpened(testSession("s-2", 0))
	assert.Equal(t, int64(1), j.Dropped())
	assert.Contains(t, logs.String(), "record dropped")

	go j.run()
	require.NoError(t, j.Close())

	_, err := s.ReadSession(context.Background(), "s-1")
	assert.NoError(t, err)
}
