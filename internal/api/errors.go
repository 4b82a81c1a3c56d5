package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xaenox/bookmark-lens/internal/analyzer"
	"github.com/xaenox/bookmark-lens/internal/archive"
	"github.com/xaenox/bookmark-lens/internal/storage"
)

// mapError converts a domain error into an echo.HTTPError
func mapError(err error) *echo.HTTPError {
	var (
		formatErr *archive.FormatError
		remoteErr *analyzer.RemoteError
		httpErr   *echo.HTTPError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &formatErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, formatErr.Error())
	case errors.As(err, &remoteErr):
		return echo.NewHTTPError(http.StatusBadGateway, remoteErr.Error())
	case errors.Is(err, analyzer.ErrUnknownProvider):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
