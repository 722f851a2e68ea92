package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/csvedit/internal/infrastructure/sqlite"
	"github.com/zjrosen/csvedit/internal/sessions/domain"
)

// NewSessionRepository opens a session store in a temp directory. It is
// closed when the test ends.
func NewSessionRepository(t *testing.T) domain.SessionRepository {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.SessionRepository()
}
