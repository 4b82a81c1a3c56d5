package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/bookmark-lens/internal/models"
	"github.com/xaenox/bookmark-lens/pkg/config"
)

func bookmark(id, text string) models.Bookmark {
	likes := 7
	return models.Bookmark{
		Post: models.Post{
			ID:            id,
			Text:          text,
			CreatedAt:     "2024-01-0" + id + "T00:00:00Z",
			Author:        models.User{ID: "u" + id, Name: "User " + id, ScreenName: "user" + id},
			FavoriteCount: &likes,
			Media:         []models.MediaItem{{Kind: models.MediaPhoto, URL: "https://img/" + id}},
		},
		BookmarkedAt: "2024-01-0" + id + "T00:00:00Z",
	}
}

func run(library string, at time.Time, summary string) *models.AnalysisRun {
	return &models.AnalysisRun{
		Library:   library,
		Provider:  "local",
		CreatedAt: at,
		Result: models.AnalysisResult{
			Categories: []models.Category{{ID: "category-1", Name: "Go", Color: "#1DA1F2", PostIDs: []string{"1"}}},
			Themes:     []string{"go"},
			Summary:    summary,
			Insights:   []string{},
			TopTopics:  []models.TopicCount{{Topic: "go", Count: 1}},
		},
	}
}

// testStorage runs the behaviour every backend shares
func testStorage(t *testing.T, newStorage func(t *testing.T) Storage) {
	ctx := context.Background()

	t.Run("empty library", func(t *testing.T) {
		s := newStorage(t)
		got, err := s.GetBookmarks(ctx, "nothing-here")
		require.NoError(t, err)
		assert.Empty(t, got)

		_, err = s.LatestAnalysis(ctx, "nothing-here")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.True(t, IsNotFound(err))
	})

	t.Run("replace and append keep order", func(t *testing.T) {
		s := newStorage(t)
		require.NoError(t, s.ReplaceBookmarks(ctx, "main", []models.Bookmark{bookmark("1", "one"), bookmark("2", "two")}))
		require.NoError(t, s.AppendBookmarks(ctx, "main", []models.Bookmark{bookmark("3", "three"), bookmark("1", "one again")}))

		got, err := s.GetBookmarks(ctx, "main")
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, bookmark("1", "one"), got[0])
		assert.Equal(t, "3", got[2].Post.ID)
		assert.Equal(t, "one again", got[3].Post.Text, "duplicates are kept")

		require.NoError(t, s.ReplaceBookmarks(ctx, "main", []models.Bookmark{bookmark("4", "four")}))
		got, err = s.GetBookmarks(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, []models.Bookmark{bookmark("4", "four")}, got)
	})

	t.Run("append to empty library", func(t *testing.T) {
		s := newStorage(t)
		require.NoError(t, s.AppendBookmarks(ctx, "fresh", []models.Bookmark{bookmark("5", "five")}))
		require.NoError(t, s.AppendBookmarks(ctx, "fresh", nil))

		got, err := s.GetBookmarks(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, []models.Bookmark{bookmark("5", "five")}, got)
	})

	t.Run("libraries are isolated", func(t *testing.T) {
		s := newStorage(t)
		require.NoError(t, s.ReplaceBookmarks(ctx, "a", []models.Bookmark{bookmark("1", "one")}))
		require.NoError(t, s.ReplaceBookmarks(ctx, "b", []models.Bookmark{bookmark("2", "two")}))
		require.NoError(t, s.SaveAnalysis(ctx, run("a", time.Now(), "a run")))

		require.NoError(t, s.ClearLibrary(ctx, "a"))

		got, err := s.GetBookmarks(ctx, "a")
		require.NoError(t, err)
		assert.Empty(t, got)
		_, err = s.LatestAnalysis(ctx, "a")
		assert.ErrorIs(t, err, ErrNotFound)

		got, err = s.GetBookmarks(ctx, "b")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("analysis history", func(t *testing.T) {
		s := newStorage(t)
		base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

		first := run("main", base, "first")
		require.NoError(t, s.SaveAnalysis(ctx, first))
		require.NoError(t, s.SaveAnalysis(ctx, run("main", base.Add(2*time.Hour), "third")))
		require.NoError(t, s.SaveAnalysis(ctx, run("main", base.Add(time.Hour), "second")))
		require.NoError(t, s.SaveAnalysis(ctx, run("other", base.Add(3*time.Hour), "elsewhere")))

		assert.NotEmpty(t, first.ID, "id assigned on save")

		latest, err := s.LatestAnalysis(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, "third", latest.Result.Summary)
		assert.Equal(t, "local", latest.Provider)
		assert.True(t, base.Add(2*time.Hour).Equal(latest.CreatedAt))
		assert.Equal(t, run("main", base, "").Result.Categories, latest.Result.Categories)

		runs, err := s.ListAnalyses(ctx, "main", 0, 0)
		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, "third", runs[0].Result.Summary)
		assert.Equal(t, "second", runs[1].Result.Summary)
		assert.Equal(t, "first", runs[2].Result.Summary)
		assert.Equal(t, first.ID, runs[2].ID)

		page, err := s.ListAnalyses(ctx, "main", 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "second", page[0].Result.Summary)

		tail, err := s.ListAnalyses(ctx, "main", 0, 2)
		require.NoError(t, err)
		require.Len(t, tail, 1)
		assert.Equal(t, "first", tail[0].Result.Summary)

		past, err := s.ListAnalyses(ctx, "main", 10, 10)
		require.NoError(t, err)
		assert.Empty(t, past)
	})

	t.Run("equal timestamps list newest save first", func(t *testing.T) {
		s := newStorage(t)
		at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

		for _, summary := range []string{"a", "b", "c", "d"} {
			require.NoError(t, s.SaveAnalysis(ctx, run("main", at, summary)))
		}

		runs, err := s.ListAnalyses(ctx, "main", 0, 0)
		require.NoError(t, err)
		var got []string
		for _, r := range runs {
			got = append(got, r.Result.Summary)
		}
		assert.Equal(t, []string{"d", "c", "b", "a"}, got)

		latest, err := s.LatestAnalysis(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, "d", latest.Result.Summary)
	})

	t.Run("negative offset starts at the beginning", func(t *testing.T) {
		s := newStorage(t)
		base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, s.SaveAnalysis(ctx, run("main", base, "first")))
		require.NoError(t, s.SaveAnalysis(ctx, run("main", base.Add(time.Hour), "second")))

		runs, err := s.ListAnalyses(ctx, "main", 0, -3)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "second", runs[0].Result.Summary)

		runs, err = s.ListAnalyses(ctx, "main", 1, -1)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "second", runs[0].Result.Summary)
	})

	t.Run("save assigns created at", func(t *testing.T) {
		s := newStorage(t)
		r := run("main", time.Time{}, "now")
		require.NoError(t, s.SaveAnalysis(ctx, r))
		assert.False(t, r.CreatedAt.IsZero())
		assert.WithinDuration(t, time.Now(), r.CreatedAt, time.Minute)
	})
}

func TestMemoryStorage(t *testing.T) {
	testStorage(t, func(t *testing.T) Storage {
		return NewMemoryStorage()
	})
}

func TestMemoryStorageCopiesBookmarks(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	input := []models.Bookmark{bookmark("1", "one")}
	require.NoError(t, s.ReplaceBookmarks(ctx, "main", input))
	input[0].Post.Text = "changed"

	got, err := s.GetBookmarks(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "one", got[0].Post.Text)
}

func TestSQLiteStorage(t *testing.T) {
	testStorage(t, func(t *testing.T) Storage {
		s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "data", "bookmarks.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSQLiteStorageReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bookmarks.db")

	s, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceBookmarks(ctx, "main", []models.Bookmark{bookmark("1", "one")}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStorage(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetBookmarks(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, []models.Bookmark{bookmark("1", "one")}, got)
}

func TestPostgresStorage(t *testing.T) {
	dsn := os.Getenv("BOOKMARKS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BOOKMARKS_TEST_POSTGRES_DSN not set")
	}

	testStorage(t, func(t *testing.T) Storage {
		s, err := NewPostgresStorage(dsn)
		require.NoError(t, err)
		t.Cleanup(func() {
			for _, table := range []string{"bookmarks", "analysis_runs"} {
				s.db.Exec("DELETE FROM " + table)
			}
			s.Close()
		})
		return s
	})
}

func TestRebind(t *testing.T) {
	pg := &SQLStorage{dialect: dialectPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := &SQLStorage{dialect: dialectSQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestOpen(t *testing.T) {
	s, err := Open(config.StorageConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	s, err = Open(config.StorageConfig{Driver: config.DriverSQLite, SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "x.db")}})
	require.NoError(t, err)
	assert.IsType(t, &SQLStorage{}, s)
	require.NoError(t, s.Close())

	_, err = Open(config.StorageConfig{Driver: "mongo"})
	assert.ErrorContains(t, err, "mongo")
}
