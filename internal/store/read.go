package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/cableclub/internal/server"
)

// SessionRecord is a stored session. ClosedAt is zero while the session is
// still open.
type SessionRecord struct {
	Token    string
	Addr     string
	OpenedAt time.Time
	ClosedAt time.Time
	Code     server.ErrorCode
	Reason   string
}

// Open reports whether the session has no recorded end.
func (r SessionRecord) Open() bool {
	return r.ClosedAt.IsZero()
}

// ReadSession returns one session by token, or ErrNotFound.
func (s *Store) ReadSession(ctx context.Context, token string) (SessionRecord, error) {
	var (
		rec      SessionRecord
		openedAt int64
		closedAt sql.NullInt64
		code     sql.NullString
		reason   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT token, addr, opened_at, closed_at, code, reason
		FROM sessions
		WHERE token = ?
	`, token).Scan(&rec.Token, &rec.Addr, &openedAt, &closedAt, &code, &reason)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, fmt.Errorf("session %q: %w", token, ErrNotFound)
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("query session: %w", err)
	}

	rec.OpenedAt = fromMillis(openedAt)
	if closedAt.Valid {
		rec.ClosedAt = fromMillis(closedAt.Int64)
	}
	rec.Code = server.ErrorCode(code.String)
	rec.Reason = reason.String
	return rec, nil
}

// ListMatches returns the most recent matches, newest first. Ties are
// broken by token so the order is deterministic. A limit <= 0 returns
// every match.
//
// Returns an empty slice (not nil) if no matches exist.
func (s *Store) ListMatches(ctx context.Context, limit int) ([]server.Match, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, waiting_session, arriving_session, waiting_public_id, arriving_public_id,
		       waiting_trainer, arriving_trainer, matched_at
		FROM matches
		ORDER BY matched_at DESC, token COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := []server.Match{}
	for rows.Next() {
		var (
			m  server.Match
			at int64
		)
		if err := rows.Scan(
			&m.Token, &m.WaitingSession, &m.ArrivingSession,
			&m.WaitingPublicID, &m.ArrivingPublicID,
			&m.WaitingTrainer, &m.ArrivingTrainer, &at,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.At = fromMillis(at)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
