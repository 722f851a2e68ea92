package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/csvedit/internal/sessions/domain"
)

const sessionColumns = `id, path, cursor_row, cursor_col, created_at, updated_at`

// sessionRepository implements domain.SessionRepository using SQLite.
type sessionRepository struct {
	db *sql.DB
}

func newSessionRepository(db *sql.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

// Ensure sessionRepository implements domain.SessionRepository.
var _ domain.SessionRepository = (*sessionRepository)(nil)

func scanSession(scanner interface{ Scan(...any) error }) (*SessionModel, error) {
	var model SessionModel
	err := scanner.Scan(
		&model.ID, &model.Path, &model.CursorRow, &model.CursorCol,
		&model.CreatedAt, &model.UpdatedAt,
	)
	return &model, err
}

// Save upserts by path so a new Session for a file seen before replaces the
// old cursor instead of failing on the unique constraint.
func (r *sessionRepository) Save(session *domain.Session) error {
	model := toSessionModel(session)

	var id int64
	err := r.db.QueryRow(
		`INSERT INTO sessions (path, cursor_row, cursor_col, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			cursor_row = excluded.cursor_row,
			cursor_col = excluded.cursor_col,
			updated_at = excluded.updated_at
		RETURNING id`,
		model.Path, model.CursorRow, model.CursorCol, model.CreatedAt, model.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	session.SetID(id)
	return nil
}

// FindByPath retrieves the session for a file.
func (r *sessionRepository) FindByPath(path string) (*domain.Session, error) {
	row := r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE path = ?`, path)
	model, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.SessionNotFoundError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session by path: %w", err)
	}
	return model.toDomain(), nil
}

// Delete removes the session for a file.
func (r *sessionRepository) Delete(path string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return &domain.SessionNotFoundError{Path: path}
	}
	return nil
}

// DeleteOlderThan removes sessions not updated since cutoff.
func (r *sessionRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE updated_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// Close is a no-op; the connection is owned by DB.
func (r *sessionRepository) Close() error {
	return nil
}
