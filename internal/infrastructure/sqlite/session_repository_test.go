package sqlite

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/csvedit/internal/sessions/domain"
)

func setupTestRepo(t *testing.T) domain.SessionRepository {
	t.Helper()
	return newTestDB(t).SessionRepository()
}

func TestSessionRepository_SaveAndFind(t *testing.T) {
	repo := setupTestRepo(t)

	s := domain.NewSession("/data/a.csv")
	require.NoError(t, s.MoveCursor(3, 4))
	require.NoError(t, repo.Save(s))
	require.Greater(t, s.ID(), int64(0), "Session should have ID assigned after save")

	found, err := repo.FindByPath("/data/a.csv")
	require.NoError(t, err)
	require.Equal(t, s.ID(), found.ID())
	require.Equal(t, 3, found.Row())
	require.Equal(t, 4, found.Col())
	require.WithinDuration(t, s.CreatedAt(), found.CreatedAt(), time.Second)
	require.WithinDuration(t, s.UpdatedAt(), found.UpdatedAt(), time.Second)
}

func TestSessionRepository_SaveUpsertsByPath(t *testing.T) {
	repo := setupTestRepo(t)

	first := domain.NewSession("/data/a.csv")
	require.NoError(t, repo.Save(first))

	second := domain.NewSession("/data/a.csv")
	require.NoError(t, second.MoveCursor(9, 1))
	require.NoError(t, repo.Save(second))
	require.Equal(t, first.ID(), second.ID(), "same path keeps the same row")

	found, err := repo.FindByPath("/data/a.csv")
	require.NoError(t, err)
	require.Equal(t, 9, found.Row())
	require.Equal(t, first.CreatedAt().UnixMilli(), found.CreatedAt().UnixMilli(), "created_at is kept")
}

func TestSessionRepository_FindByPath_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.FindByPath("/missing.csv")
	var notFound *domain.SessionNotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "/missing.csv", notFound.Path)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.Save(domain.NewSession("/data/a.csv")))

	require.NoError(t, repo.Delete("/data/a.csv"))

	_, err := repo.FindByPath("/data/a.csv")
	var notFound *domain.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)

	err = repo.Delete("/data/a.csv")
	require.ErrorAs(t, err, &notFound)
}

func TestSessionRepository_DeleteOlderThan(t *testing.T) {
	repo := setupTestRepo(t)

	old := domain.ReconstituteSession(0, "/old.csv", 0, 0, time.Unix(100, 0), time.Unix(100, 0))
	require.NoError(t, repo.Save(old))
	fresh := domain.NewSession("/fresh.csv")
	require.NoError(t, repo.Save(fresh))

	n, err := repo.DeleteOlderThan(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = repo.FindByPath("/fresh.csv")
	require.NoError(t, err)
	_, err = repo.FindByPath("/old.csv")
	require.Error(t, err)
}

func TestSessionRepository_Close(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.Close())
	// The shared connection stays usable.
	require.NoError(t, repo.Save(domain.NewSession("/data/a.csv")))
}

func TestSessionRepository_LastSaveWins(t *testing.T) {
	repo := setupTestRepo(t)

	rapid.Check(t, func(t *rapid.T) {
		path := fmt.Sprintf("/prop/%d.csv", rapid.IntRange(0, 3).Draw(t, "file"))
		moves := rapid.SliceOfN(rapid.IntRange(0, 500), 1, 5).Draw(t, "moves")

		var row, col int
		for i, m := range moves {
			s := domain.NewSession(path)
			row, col = m, i
			if err := s.MoveCursor(row, col); err != nil {
				t.Fatal(err)
			}
			if err := repo.Save(s); err != nil {
				t.Fatal(err)
			}
		}

		found, err := repo.FindByPath(path)
		if err != nil {
			t.Fatal(err)
		}
		if found.Row() != row || found.Col() != col {
			t.Fatalf("got (%d, %d), want (%d, %d)", found.Row(), found.Col(), row, col)
		}
	})
}
