package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xaenox/bookmark-lens/internal/library"
	"github.com/xaenox/bookmark-lens/internal/models"
	"github.com/xaenox/bookmark-lens/internal/report"
	"github.com/xaenox/bookmark-lens/internal/storage"
)

func newSearchCommand(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Find bookmarks by text, author or category",
		Long: `Search lists the bookmarks whose text, author name or handle contains the
query, ignoring case. --category narrows the list to a category of the latest
analysis.

Examples:
  bookmarks search golang
  bookmarks search --category category-2
  bookmarks search rust --category category-1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.storage()
			if err != nil {
				return err
			}
			bookmarks, err := store.GetBookmarks(cmd.Context(), a.library())
			if err != nil {
				return fmt.Errorf("failed to load bookmarks: %w", err)
			}

			filter := library.Filter{CategoryID: category}
			if len(args) == 1 {
				filter.Query = args[0]
			}

			var categories []models.Category
			if category != "" {
				run, err := store.LatestAnalysis(cmd.Context(), a.library())
				if storage.IsNotFound(err) {
					return errors.New("no analysis yet; run analyze first")
				}
				if err != nil {
					return fmt.Errorf("failed to load analysis: %w", err)
				}
				categories = run.Result.Categories
			}

			matched := library.Apply(bookmarks, filter, categories)
			if len(matched) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bookmarks found.")
				return nil
			}
			return report.WriteBookmarks(cmd.OutOrStdout(), matched)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only bookmarks in this category id")
	return cmd
}

func newAuthorsCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "authors",
		Short: "List the most bookmarked authors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.storage()
			if err != nil {
				return err
			}
			bookmarks, err := store.GetBookmarks(cmd.Context(), a.library())
			if err != nil {
				return fmt.Errorf("failed to load bookmarks: %w", err)
			}
			if len(bookmarks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bookmarks found.")
				return nil
			}
			return report.WriteAuthors(cmd.OutOrStdout(), library.TopAuthors(bookmarks, limit))
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of authors to show")
	return cmd
}

func newClearCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the library's bookmarks and analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.storage()
			if err != nil {
				return err
			}
			if err := store.ClearLibrary(cmd.Context(), a.library()); err != nil {
				return fmt.Errorf("failed to clear library: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared library %q.\n", a.library())
			return nil
		},
	}
}
