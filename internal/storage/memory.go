package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/xaenox/bookmark-lens/internal/models"
)

type MemoryStorage struct {
	mu        sync.RWMutex
	bookmarks map[string][]models.Bookmark
	analyses  map[string][]models.AnalysisRun
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		bookmarks: make(map[string][]models.Bookmark),
		analyses:  make(map[string][]models.AnalysisRun),
	}
}

func (s *MemoryStorage) ReplaceBookmarks(ctx context.Context, library string, bookmarks []models.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks[library] = slices.Clone(bookmarks)
	return nil
}

func (s *MemoryStorage) AppendBookmarks(ctx context.Context, library string, bookmarks []models.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks[library] = append(s.bookmarks[library], bookmarks...)
	return nil
}

func (s *MemoryStorage) GetBookmarks(ctx context.Context, library string) ([]models.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Bookmark, len(s.bookmarks[library]))
	copy(out, s.bookmarks[library])
	return out, nil
}

func (s *MemoryStorage) ClearLibrary(ctx context.Context, library string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bookmarks, library)
	delete(s.analyses, library)
	return nil
}

func (s *MemoryStorage) SaveAnalysis(ctx context.Context, run *models.AnalysisRun) error {
	prepareRun(run)

	s.mu.Lock()
	defer s.mu.Unlock()

	runs := append([]models.AnalysisRun{*run}, s.analyses[run.Library]...)
	slices.SortStableFunc(runs, func(a, b models.AnalysisRun) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	s.analyses[run.Library] = runs
	return nil
}

func (s *MemoryStorage) LatestAnalysis(ctx context.Context, library string) (*models.AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := s.analyses[library]
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	run := runs[0]
	return &run, nil
}

func (s *MemoryStorage) ListAnalyses(ctx context.Context, library string, limit, offset int) ([]models.AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := s.analyses[library]
	offset = max(offset, 0)
	if offset >= len(runs) {
		return []models.AnalysisRun{}, nil
	}
	runs = runs[offset:]
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return slices.Clone(runs), nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
