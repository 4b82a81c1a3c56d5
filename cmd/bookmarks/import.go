package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xaenox/bookmark-lens/internal/archive"
	"github.com/xaenox/bookmark-lens/internal/models"
)

var errNoBookmarks = errors.New("no bookmarks found")

func newImportCommand(a *app) *cobra.Command {
	var appendMode bool

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import bookmarks from export bundles or files",
		Long: `Import reads bookmarks from one or more export bundles (.zip) or bookmark
files (.js or .json). Files are parsed in parallel and stored in argument order.

The library is replaced unless --append is given.

Examples:
  bookmarks import twitter-2024.zip
  bookmarks import bookmarks.js likes.js --append`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := readExports(cmd, a.importer(), args)
			if err != nil {
				return err
			}

			var bookmarks []models.Bookmark
			for i, res := range results {
				bookmarks = append(bookmarks, res.Bookmarks...)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bookmarks from %s", args[i], len(res.Bookmarks), res.Source)
				if res.Skipped > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), " (%d skipped)", res.Skipped)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if len(bookmarks) == 0 {
				return errNoBookmarks
			}

			store, err := a.storage()
			if err != nil {
				return err
			}
			if appendMode {
				err = store.AppendBookmarks(cmd.Context(), a.library(), bookmarks)
			} else {
				err = store.ReplaceBookmarks(cmd.Context(), a.library(), bookmarks)
			}
			if err != nil {
				return fmt.Errorf("failed to store bookmarks: %w", err)
			}

			a.logger.Info("Stored bookmarks",
				zap.String("library", a.library()),
				zap.Int("count", len(bookmarks)),
				zap.Bool("append", appendMode))
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %d bookmarks in library %q.\n", len(bookmarks), a.library())
			return nil
		},
	}

	cmd.Flags().BoolVar(&appendMode, "append", false, "append to the library instead of replacing it")
	return cmd
}

// readExports parses every path concurrently. Results keep argument order.
func readExports(cmd *cobra.Command, importer *archive.Importer, paths []string) ([]*archive.Result, error) {
	results := make([]*archive.Result, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := readExport(importer, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readExport(importer *archive.Importer, path string) (*archive.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	res, err := importer.Import(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	return res, nil
}
