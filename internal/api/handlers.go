package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xaenox/bookmark-lens/internal/library"
	"github.com/xaenox/bookmark-lens/internal/models"
	"github.com/xaenox/bookmark-lens/internal/report"
	"github.com/xaenox/bookmark-lens/internal/storage"
)

const defaultAuthorLimit = 5

type importResponse struct {
	Library  string `json:"library"`
	Source   string `json:"source"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Total    int    `json:"total"`
}

type bookmarksResponse struct {
	Library   string            `json:"library"`
	Count     int               `json:"count"`
	Bookmarks []models.Bookmark `json:"bookmarks"`
}

func (s *Server) importBookmarks(c echo.Context) error {
	ctx := c.Request().Context()
	lib := c.Param("library")

	if s.maxUploadBytes > 0 {
		c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, s.maxUploadBytes)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "upload too large")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field \"file\" is required")
	}

	f, err := fh.Open()
	if err != nil {
		return mapError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return mapError(err)
	}

	result, err := s.importer.Import(fh.Filename, data)
	if err != nil {
		return mapError(err)
	}
	if len(result.Bookmarks) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "no bookmarks found in upload")
	}

	appendMode, _ := strconv.ParseBool(c.QueryParam("append"))
	if appendMode {
		err = s.store.AppendBookmarks(ctx, lib, result.Bookmarks)
	} else {
		err = s.store.ReplaceBookmarks(ctx, lib, result.Bookmarks)
	}
	if err != nil {
		s.logger.Error("Failed to store bookmarks", zap.String("library", lib), zap.Error(err))
		return mapError(err)
	}

	all, err := s.store.GetBookmarks(ctx, lib)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusCreated, importResponse{
		Library:  lib,
		Source:   result.Source,
		Imported: len(result.Bookmarks),
		Skipped:  result.Skipped,
		Total:    len(all),
	})
}

func (s *Server) listBookmarks(c echo.Context) error {
	ctx := c.Request().Context()
	lib := c.Param("library")

	bookmarks, err := s.store.GetBookmarks(ctx, lib)
	if err != nil {
		return mapError(err)
	}

	filter := library.Filter{Query: c.QueryParam("q"), CategoryID: c.QueryParam("category")}
	var categories []models.Category
	if filter.CategoryID != "" {
		run, err := s.store.LatestAnalysis(ctx, lib)
		switch {
		case err == nil:
			categories = run.Result.Categories
		case !storage.IsNotFound(err):
			return mapError(err)
		}
	}

	matched := library.Apply(bookmarks, filter, categories)
	return c.JSON(http.StatusOK, bookmarksResponse{Library: lib, Count: len(matched), Bookmarks: matched})
}

func (s *Server) listAuthors(c echo.Context) error {
	limit := defaultAuthorLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	bookmarks, err := s.store.GetBookmarks(c.Request().Context(), c.Param("library"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, library.TopAuthors(bookmarks, limit))
}

func (s *Server) analyze(c echo.Context) error {
	ctx := c.Request().Context()
	lib := c.Param("library")

	provider := c.QueryParam("provider")
	if provider == "" {
		provider = s.defaultProvider
	}
	a, err := s.analyzers(provider)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	bookmarks, err := s.store.GetBookmarks(ctx, lib)
	if err != nil {
		return mapError(err)
	}
	if len(bookmarks) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "library has no bookmarks")
	}

	result, err := a.Analyze(ctx, bookmarks)
	if err != nil {
		return mapError(err)
	}

	run := &models.AnalysisRun{Library: lib, Provider: provider, Result: *result}
	if err := s.store.SaveAnalysis(ctx, run); err != nil {
		s.logger.Error("Failed to save analysis", zap.String("library", lib), zap.Error(err))
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, run)
}

func (s *Server) latestAnalysis(c echo.Context) error {
	format, err := report.ParseFormat(c.QueryParam("format"))
	if err != nil || format == report.FormatText {
		format = report.FormatJSON
	}

	run, err := s.store.LatestAnalysis(c.Request().Context(), c.Param("library"))
	if err != nil {
		return mapError(err)
	}

	if format == report.FormatYAML {
		var buf bytes.Buffer
		if err := report.WriteYAML(&buf, run); err != nil {
			return mapError(err)
		}
		return c.Blob(http.StatusOK, "application/yaml", buf.Bytes())
	}
	return c.JSON(http.StatusOK, run)
}

func (s *Server) listAnalyses(c echo.Context) error {
	limit, err := intParam(c, "limit", 20)
	if err != nil {
		return err
	}
	offset, err := intParam(c, "offset", 0)
	if err != nil {
		return err
	}

	runs, err := s.store.ListAnalyses(c.Request().Context(), c.Param("library"), limit, offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, runs)
}

func (s *Server) clearLibrary(c echo.Context) error {
	if err := s.store.ClearLibrary(c.Request().Context(), c.Param("library")); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}
