package domain

import (
	"fmt"
	"time"
)

// SessionRepository defines the persistence interface for Session entities.
// Implementations may use SQLite, in-memory storage, or other backends.
type SessionRepository interface {
	// Save persists a session. New sessions (ID == 0) are inserted, or merged
	// into an existing row for the same path; the ID is set either way.
	Save(session *Session) error

	// FindByPath retrieves the session for a file.
	// Returns SessionNotFoundError if the file was never opened.
	FindByPath(path string) (*Session, error)

	// Delete removes the session for a file.
	// Returns SessionNotFoundError if no matching session exists.
	Delete(path string) error

	// DeleteOlderThan removes sessions not updated since cutoff and returns
	// how many were removed.
	DeleteOlderThan(cutoff time.Time) (int64, error)

	// Close releases any resources held by the repository.
	Close() error
}

// SessionNotFoundError is returned when no session exists for a path.
type SessionNotFoundError struct {
	Path string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.Path)
}
