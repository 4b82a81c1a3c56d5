package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xaenox/bookmark-lens/internal/models"
	"github.com/xaenox/bookmark-lens/internal/report"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	var (
		provider string
		file     string
		format   string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Group bookmarks into categories, themes and insights",
		Long: `Analyze runs the local keyword heuristic or a hosted language model over the
library and stores the result. With --file the export is analyzed directly and
nothing is stored.

Examples:
  bookmarks analyze
  bookmarks analyze --provider anthropic --format yaml --output analysis.yaml
  bookmarks analyze --file bookmarks.js --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if provider == "" {
				provider = a.cfg.Analysis.Provider
			}
			provider = strings.ToLower(provider)

			analyze, err := a.analyzers()(provider)
			if err != nil {
				return err
			}

			var bookmarks []models.Bookmark
			if file != "" {
				res, err := readExport(a.importer(), file)
				if err != nil {
					return err
				}
				bookmarks = res.Bookmarks
			} else {
				store, err := a.storage()
				if err != nil {
					return err
				}
				bookmarks, err = store.GetBookmarks(cmd.Context(), a.library())
				if err != nil {
					return fmt.Errorf("failed to load bookmarks: %w", err)
				}
			}
			if len(bookmarks) == 0 {
				return errors.New("no bookmarks to analyze; run import first")
			}

			result, err := analyze.Analyze(cmd.Context(), bookmarks)
			if err != nil {
				return err
			}

			if file == "" {
				run := &models.AnalysisRun{Library: a.library(), Provider: provider, Result: *result}
				if err := a.store.SaveAnalysis(cmd.Context(), run); err != nil {
					return fmt.Errorf("failed to save analysis: %w", err)
				}
				a.logger.Debug("Saved analysis", zap.String("id", run.ID), zap.String("library", a.library()))
			}

			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return report.Write(w, f, result)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&provider, "provider", "p", "", "analysis provider: local, openai or anthropic (default from config)")
	flags.StringVar(&file, "file", "", "analyze an export file without storing anything")
	flags.StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	flags.StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

// writeOutput renders into path, or into stdout when path is empty
func writeOutput(stdout io.Writer, path string, render func(io.Writer) error) error {
	if path == "" {
		return render(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
