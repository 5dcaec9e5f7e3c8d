package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/cableclub/internal/server"
)

const (
	journalBacklog = 1024
	writeTimeout   = 5 * time.Second
)

type recordKind int

const (
	recordOpened recordKind = iota + 1
	recordClosed
	recordMatch
)

type record struct {
	kind    recordKind
	session server.Session
	match   server.Match
}

// Journal writes server events to a Store from a single background
// goroutine, in the order they were reported. Reporting never blocks: when
// the backlog is full the record is dropped and logged.
//
// Close must be called once the server has stopped reporting.
type Journal struct {
	store   *Store
	logger  *slog.Logger
	records chan record
	done    chan struct{}
	dropped atomic.Int64
	once    sync.Once
}

var _ server.Journal = (*Journal)(nil)

// NewJournal starts the writer goroutine.
func NewJournal(st *Store, logger *slog.Logger) *Journal {
	j := &Journal{
		store:   st,
		logger:  logger,
		records: make(chan record, journalBacklog),
		done:    make(chan struct{}),
	}
	go j.run()
	return j
}

func (j *Journal) SessionOpened(s server.Session) {
	j.enqueue(record{kind: recordOpened, session: s})
}

func (j *Journal) SessionClosed(s server.Session) {
	j.enqueue(record{kind: recordClosed, session: s})
}

func (j *Journal) MatchMade(m server.Match) {
	j.enqueue(record{kind: recordMatch, match: m})
}

// Dropped returns how many records were lost to a full backlog.
func (j *Journal) Dropped() int64 {
	return j.dropped.Load()
}

// Close writes every queued record and stops the writer.
func (j *Journal) Close() error {
	j.once.Do(func() { close(j.records) })
	<-j.done
	return nil
}

func (j *Journal) enqueue(r record) {
	select {
	case j.records <- r:
	default:
		n := j.dropped.Add(1)
		j.logger.Warn("journal backlog full, record dropped", "dropped", n)
	}
}

func (j *Journal) run() {
	defer close(j.done)
	for r := range j.records {
		if err := j.write(r); err != nil {
			j.logger.Error("journal write failed", "error", err)
		}
	}
}

func (j *Journal) write(r record) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	switch r.kind {
	case recordOpened:
		return j.store.WriteSessionOpened(ctx, r.session)
	case recordClosed:
		return j.store.WriteSessionClosed(ctx, r.session)
	default:
		return j.store.WriteMatch(ctx, r.match)
	}
}
