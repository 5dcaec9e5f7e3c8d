package store

import (
	"context"
	"fmt"

	"github.com/roach88/cableclub/internal/server"
)

// WriteSessionOpened records a new connection.
// Uses ON CONFLICT(token) DO NOTHING for idempotency.
func (s *Store) WriteSessionOpened(ctx context.Context, sess server.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, addr, opened_at)
		VALUES (?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		sess.Token,
		sess.Addr,
		sess.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write session opened: %w", err)
	}
	return nil
}

// WriteSessionClosed records how a connection ended. A session never
// seen opening is inserted with its close time as the open time.
func (s *Store) WriteSessionClosed(ctx context.Context, sess server.Session) error {
	at := sess.At.UnixMilli()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, addr, opened_at, closed_at, code, reason)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			closed_at = excluded.closed_at,
			code = excluded.code,
			reason = excluded.reason
	`,
		sess.Token,
		sess.Addr,
		at,
		at,
		string(sess.Code),
		sess.Reason,
	)
	if err != nil {
		return fmt.Errorf("write session closed: %w", err)
	}
	return nil
}

// WriteMatch records a pairing. Both sessions must already exist
// (foreign key constraint).
func (s *Store) WriteMatch(ctx context.Context, m server.Match) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matches
		(token, waiting_session, arriving_session, waiting_public_id, arriving_public_id,
		 waiting_trainer, arriving_trainer, matched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		m.Token,
		m.WaitingSession,
		m.ArrivingSession,
		m.WaitingPublicID,
		m.ArrivingPublicID,
		m.WaitingTrainer,
		m.ArrivingTrainer,
		m.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write match: %w", err)
	}
	return nil
}
