package sqlite

import (
	"time"

	"github.com/zjrosen/csvedit/internal/sessions/domain"
)

// SessionModel represents the database row for the sessions table.
// Times are stored as Unix milliseconds.
type SessionModel struct {
	ID        int64
	Path      string
	CursorRow int64
	CursorCol int64
	CreatedAt int64
	UpdatedAt int64
}

func toSessionModel(s *domain.Session) *SessionModel {
	return &SessionModel{
		ID:        s.ID(),
		Path:      s.Path(),
		CursorRow: int64(s.Row()),
		CursorCol: int64(s.Col()),
		CreatedAt: s.CreatedAt().UnixMilli(),
		UpdatedAt: s.UpdatedAt().UnixMilli(),
	}
}

func (m *SessionModel) toDomain() *domain.Session {
	return domain.ReconstituteSession(
		m.ID,
		m.Path,
		int(m.CursorRow),
		int(m.CursorCol),
		time.UnixMilli(m.CreatedAt),
		time.UnixMilli(m.UpdatedAt),
	)
}
