package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/cableclub/internal/server"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return baseTime.Add(time.Duration(seconds) * time.Second)
}

func testSession(token string, seconds int) server.Session {
	return server.Session{Token: token, Addr: "127.0.0.1:40000", At: at(seconds)}
}

func testMatch(token, waiting, arriving string, seconds int) server.Match {
	return server.Match{
		Token:            token,
		WaitingSession:   waiting,
		ArrivingSession:  arriving,
		WaitingPublicID:  0x1234,
		ArrivingPublicID: 0x5678,
		WaitingTrainer:   "Red",
		ArrivingTrainer:  "Blue",
		At:               at(seconds),
	}
}
