package store

import "github.com/starford/raido/internal/session"

// SessionJournal defines the persistence operations for session history.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type SessionJournal interface {
	session.Journal
	ListSessions(limit int) ([]SessionRow, error)
	GetSession(id string) (*SessionRow, error)
	Generations(sessionID string) ([]GenerationRow, error)
	Close() error
}

// Verify *DB satisfies SessionJournal at compile time.
var _ SessionJournal = (*DB)(nil)
