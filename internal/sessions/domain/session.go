// Package domain provides the pure domain layer for editing sessions with no
// infrastructure dependencies.
//
// A session remembers where the cursor was in a file so reopening the file
// puts the user back on the same cell. The domain layer has no knowledge of
// how sessions are stored.
package domain

import (
	"fmt"
	"time"
)

// Session represents the last editing state of one file.
// All fields are unexported to enforce encapsulation; use the constructor
// and getter methods to access data.
type Session struct {
	id        int64
	path      string
	row       int
	col       int
	createdAt time.Time
	updatedAt time.Time
}

// NewSession creates a session for the file at path with the cursor on the
// first cell. path should be absolute so sessions survive a changed working
// directory.
func NewSession(path string) *Session {
	now := time.Now()
	return &Session{
		path:      path,
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstituteSession rebuilds a session from persisted state.
// It is intended for repositories only.
func ReconstituteSession(id int64, path string, row, col int, createdAt, updatedAt time.Time) *Session {
	return &Session{
		id:        id,
		path:      path,
		row:       row,
		col:       col,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the database identifier (0 until saved).
func (s *Session) ID() int64 { return s.id }

// SetID is called by repositories after insert.
func (s *Session) SetID(id int64) { s.id = id }

// Path returns the file path the session belongs to.
func (s *Session) Path() string { return s.path }

// Row returns the remembered cursor row.
func (s *Session) Row() int { return s.row }

// Col returns the remembered cursor column.
func (s *Session) Col() int { return s.col }

// CreatedAt returns when the file was first opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns when the cursor was last recorded.
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

// MoveCursor records a new cursor position. Negative coordinates are
// rejected; the sheet may have shrunk since, so callers clamp on restore.
func (s *Session) MoveCursor(row, col int) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("invalid cursor position (%d, %d)", row, col)
	}
	s.row = row
	s.col = col
	s.updatedAt = time.Now()
	return nil
}
