// Package storage persists imported bookmark lists and analysis runs. A
// library is a named bookmark list; there is a single owner.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xaenox/bookmark-lens/internal/models"
	"github.com/xaenox/bookmark-lens/pkg/config"
)

var ErrNotFound = errors.New("not found")

type Storage interface {
	// ReplaceBookmarks swaps the whole list of a library
	ReplaceBookmarks(ctx context.Context, library string, bookmarks []models.Bookmark) error
	// AppendBookmarks adds to the end of the list, keeping duplicates
	AppendBookmarks(ctx context.Context, library string, bookmarks []models.Bookmark) error
	GetBookmarks(ctx context.Context, library string) ([]models.Bookmark, error)
	// ClearLibrary drops the bookmarks and analysis history of a library
	ClearLibrary(ctx context.Context, library string) error
	Close() error

	AnalysisStorage
}

type AnalysisStorage interface {
	// SaveAnalysis stores run, assigning an ID and CreatedAt when unset
	SaveAnalysis(ctx context.Context, run *models.AnalysisRun) error
	LatestAnalysis(ctx context.Context, library string) (*models.AnalysisRun, error)
	// ListAnalyses returns runs newest first
	ListAnalyses(ctx context.Context, library string, limit, offset int) ([]models.AnalysisRun, error)
}

// Open builds the backend named by cfg.Driver
func Open(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStorage(), nil
	case config.DriverSQLite:
		return NewSQLiteStorage(cfg.SQLite.Path)
	case config.DriverPostgres:
		return NewPostgresStorage(cfg.Postgres.DSN())
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func prepareRun(run *models.AnalysisRun) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
}
