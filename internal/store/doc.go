// Package store keeps an SQLite audit trail of cable club sessions and
// matches.
//
// The server never reads the journal back; it exists for operators. Two
// tables are kept:
//   - sessions: one row per accepted connection, closed out when it ends
//   - matches: one row per pairing, referencing both sessions
//
// # Connections
//
// The pragmas ride on the driver DSN so every pooled connection gets
// them: WAL journaling, synchronous=NORMAL, a 5s busy timeout for the
// cli reading a live journal, and enforced foreign keys. Schema upgrades
// are numbered steps tracked in PRAGMA user_version, each applied in its
// own transaction.
//
// Times are stored as Unix milliseconds in UTC.
package store
