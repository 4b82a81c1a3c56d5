package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/xaenox/bookmark-lens/internal/models"
)

//go:embed schema.sql
var schema embed.FS

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLStorage keeps bookmarks as JSON payloads, one row per list position
type SQLStorage struct {
	db      *sql.DB
	dialect dialect
}

func NewSQLiteStorage(path string) (*SQLStorage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// one writer at a time; sqlite serialises them anyway
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("error applying %q: %w", p, err)
		}
	}

	return newSQLStorage(db, dialectSQLite)
}

func NewPostgresStorage(dsn string) (*SQLStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	return newSQLStorage(db, dialectPostgres)
}

func newSQLStorage(db *sql.DB, d dialect) (*SQLStorage, error) {
	s := &SQLStorage{db: db, dialect: d}
	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}
	return s, nil
}

func (s *SQLStorage) initializeSchema() error {
	ddl, err := schema.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("error reading schema file: %w", err)
	}

	for _, stmt := range strings.Split(string(ddl), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("error executing schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres
func (s *SQLStorage) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStorage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func (s *SQLStorage) ReplaceBookmarks(ctx context.Context, library string, bookmarks []models.Bookmark) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM bookmarks WHERE library = ?`), library); err != nil {
			return fmt.Errorf("error deleting bookmarks: %w", err)
		}
		return s.insertBookmarks(ctx, tx, library, 0, bookmarks)
	})
}

func (s *SQLStorage) AppendBookmarks(ctx context.Context, library string, bookmarks []models.Bookmark) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var next int
		err := tx.QueryRowContext(ctx,
			s.rebind(`SELECT COALESCE(MAX(position) + 1, 0) FROM bookmarks WHERE library = ?`),
			library,
		).Scan(&next)
		if err != nil {
			return fmt.Errorf("error reading bookmark count: %w", err)
		}
		return s.insertBookmarks(ctx, tx, library, next, bookmarks)
	})
}

func (s *SQLStorage) insertBookmarks(ctx context.Context, tx *sql.Tx, library string, start int, bookmarks []models.Bookmark) error {
	if len(bookmarks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO bookmarks (library, position, post_id, bookmarked_at, payload)
		VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range bookmarks {
		payload, err := json.Marshal(b.Post)
		if err != nil {
			return fmt.Errorf("error encoding post %s: %w", b.Post.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, library, start+i, b.Post.ID, b.BookmarkedAt, string(payload)); err != nil {
			return fmt.Errorf("error inserting bookmark %s: %w", b.Post.ID, err)
		}
	}
	return nil
}

func (s *SQLStorage) GetBookmarks(ctx context.Context, library string) ([]models.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT bookmarked_at, payload
		FROM bookmarks
		WHERE library = ?
		ORDER BY position`), library)
	if err != nil {
		return nil, fmt.Errorf("error querying bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []models.Bookmark{}
	for rows.Next() {
		var (
			b       models.Bookmark
			payload string
		)
		if err := rows.Scan(&b.BookmarkedAt, &payload); err != nil {
			return nil, fmt.Errorf("error scanning bookmark: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &b.Post); err != nil {
			return nil, fmt.Errorf("error decoding bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

func (s *SQLStorage) ClearLibrary(ctx context.Context, library string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"bookmarks", "analysis_runs"} {
			if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+table+` WHERE library = ?`), library); err != nil {
				return fmt.Errorf("error clearing %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *SQLStorage) SaveAnalysis(ctx context.Context, run *models.AnalysisRun) error {
	prepareRun(run)

	result, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("error encoding analysis: %w", err)
	}

	// seq orders runs saved with the same timestamp
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var seq int64
		if err := tx.QueryRowContext(ctx, s.rebind(`
			SELECT COALESCE(MAX(seq), 0) + 1 FROM analysis_runs WHERE library = ?`),
			run.Library).Scan(&seq); err != nil {
			return fmt.Errorf("error allocating analysis sequence: %w", err)
		}

		_, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO analysis_runs (id, library, provider, result, created_at, seq)
			VALUES (?, ?, ?, ?, ?, ?)`),
			run.ID, run.Library, run.Provider, string(result), run.CreatedAt.UnixNano(), seq)
		if err != nil {
			return fmt.Errorf("error saving analysis: %w", err)
		}
		return nil
	})
}

const selectRuns = `
	SELECT id, library, provider, result, created_at
	FROM analysis_runs
	WHERE library = ?
	ORDER BY created_at DESC, seq DESC`

func (s *SQLStorage) LatestAnalysis(ctx context.Context, library string) (*models.AnalysisRun, error) {
	runs, err := s.ListAnalyses(ctx, library, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	return &runs[0], nil
}

func (s *SQLStorage) ListAnalyses(ctx context.Context, library string, limit, offset int) ([]models.AnalysisRun, error) {
	offset = max(offset, 0)
	query := selectRuns
	args := []any{library}
	switch {
	case limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	case offset > 0 && s.dialect == dialectSQLite:
		// sqlite has no OFFSET without LIMIT
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, offset)
	case offset > 0:
		query += ` OFFSET ?`
		args = append(args, offset)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("error querying analyses: %w", err)
	}
	defer rows.Close()

	runs := []models.AnalysisRun{}
	for rows.Next() {
		var (
			run     models.AnalysisRun
			result  string
			created int64
		)
		if err := rows.Scan(&run.ID, &run.Library, &run.Provider, &result, &created); err != nil {
			return nil, fmt.Errorf("error scanning analysis: %w", err)
		}
		if err := json.Unmarshal([]byte(result), &run.Result); err != nil {
			return nil, fmt.Errorf("error decoding analysis %s: %w", run.ID, err)
		}
		run.CreatedAt = time.Unix(0, created).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}

var (
	_ Storage = (*SQLStorage)(nil)
	_ Storage = (*MemoryStorage)(nil)
)

// IsNotFound reports whether err means a missing record
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
