// Package archive reads bookmark exports: zip bundles or standalone .js/.json
// files, and turns their entries into canonical bookmarks.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/xaenox/bookmark-lens/internal/metrics"
	"github.com/xaenox/bookmark-lens/internal/models"
)

// Result is the outcome of one successful import
type Result struct {
	Source    string
	Bookmarks []models.Bookmark
	Skipped   int
}

type Importer struct {
	logger  *zap.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

type Option func(*Importer)

// WithClock sets the time used for entries that carry no timestamp
func WithClock(now func() time.Time) Option {
	return func(im *Importer) {
		im.now = now
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(im *Importer) {
		im.metrics = m
	}
}

func NewImporter(logger *zap.Logger, opts ...Option) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	im := &Importer{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import dispatches on content: zip data is read as a bundle, anything else
// as a standalone file.
func (im *Importer) Import(name string, data []byte) (*Result, error) {
	if isZip(name, data) {
		return im.ImportBundle(bytes.NewReader(data), int64(len(data)))
	}
	return im.ImportFile(name, data)
}

// ImportBundle locates and reads the bookmark payload of a zip bundle
func (im *Importer) ImportBundle(r io.ReaderAt, size int64) (*Result, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, im.fail("bundle", &FormatError{Reason: ReasonUnreadableBundle, Err: err})
	}

	located, err := Locate(ZipIndex(zr))
	if err != nil {
		return nil, im.fail("bundle", err)
	}

	im.logger.Debug("Located bookmark payload",
		zap.String("path", located.Path),
		zap.Bool("wrapped", located.Wrapped),
		zap.Int("bytes", len(located.Content)))

	return im.read(located.Path, located.Content, located.Wrapped)
}

// ImportFile reads a standalone export. Names ending in .js are treated as
// script-wrapped, everything else as plain JSON.
func (im *Importer) ImportFile(name string, data []byte) (*Result, error) {
	return im.read(name, data, isWrappedName(name))
}

func (im *Importer) read(source string, data []byte, wrapped bool) (*Result, error) {
	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, im.fail(source, &FormatError{Reason: ReasonUndecodableText, Err: err})
	}

	entries, err := Extract(string(text), wrapped)
	if err != nil {
		return nil, im.fail(source, err)
	}

	now := im.now()
	bookmarks := make([]models.Bookmark, 0, len(entries))
	skipped := 0
	for i, e := range entries {
		if fields := e.InvalidFields(); len(fields) > 0 {
			im.logger.Debug("Ignoring mistyped fields",
				zap.String("source", source),
				zap.Int("index", i),
				zap.Strings("fields", fields))
		}
		post, err := Normalize(e, now)
		if err != nil {
			skipped++
			im.logger.Debug("Skipping export entry",
				zap.String("source", source),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		bookmarks = append(bookmarks, models.Bookmark{Post: post, BookmarkedAt: post.CreatedAt})
	}

	SortNewestFirst(bookmarks)

	im.logger.Info("Imported bookmarks",
		zap.String("source", source),
		zap.Int("entries", len(entries)),
		zap.Int("imported", len(bookmarks)),
		zap.Int("skipped", skipped))
	im.metrics.ObserveImport(len(bookmarks), skipped)

	return &Result{Source: source, Bookmarks: bookmarks, Skipped: skipped}, nil
}

func (im *Importer) fail(source string, err error) error {
	reason := "unknown"
	var fe *FormatError
	if errors.As(err, &fe) {
		reason = fe.Reason
	}
	im.logger.Warn("Failed to import bookmarks", zap.String("source", source), zap.Error(err))
	im.metrics.ImportFailed(reason)
	return err
}

func isZip(name string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".zip") {
		return true
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}
