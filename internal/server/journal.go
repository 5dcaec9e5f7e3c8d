package server

import "time"

// Session describes one connection as recorded by a Journal.
type Session struct {
	Token  string
	Addr   string
	At     time.Time
	Code   ErrorCode // set on close
	Reason string    // set on close
}

// Match describes a pairing as recorded by a Journal.
type Match struct {
	Token            string
	WaitingSession   string
	ArrivingSession  string
	WaitingPublicID  int64
	ArrivingPublicID int64
	WaitingTrainer   string
	ArrivingTrainer  string
	At               time.Time
}

// Journal receives an audit trail of sessions and matches. It is called
// from the loop goroutine and must not block for long; failures are the
// journal's own business and never affect clients.
type Journal interface {
	SessionOpened(Session)
	SessionClosed(Session)
	MatchMade(Match)
}

type nopJournal struct{}

func (nopJournal) SessionOpened(Session) {}
func (nopJournal) SessionClosed(Session) {}
func (nopJournal) MatchMade(Match)       {}
