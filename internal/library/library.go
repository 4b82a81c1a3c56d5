// Package library holds queries over an imported bookmark list.
package library

import (
	"slices"
	"strings"

	"github.com/xaenox/bookmark-lens/internal/models"
)

// Filter narrows a bookmark list. Zero values match everything.
type Filter struct {
	Query      string
	CategoryID string
}

// Apply keeps bookmarks matching both the query and the category, in order.
// The query is a case-insensitive substring of the text, author name or
// handle. A category id not present in categories does not filter.
func Apply(bookmarks []models.Bookmark, f Filter, categories []models.Category) []models.Bookmark {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	var members map[string]struct{}
	if f.CategoryID != "" {
		if c, ok := CategoryByID(categories, f.CategoryID); ok {
			members = make(map[string]struct{}, len(c.PostIDs))
			for _, id := range c.PostIDs {
				members[id] = struct{}{}
			}
		}
	}

	out := make([]models.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if query != "" && !matches(b.Post, query) {
			continue
		}
		if members != nil {
			if _, ok := members[b.Post.ID]; !ok {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

func matches(p models.Post, query string) bool {
	return strings.Contains(strings.ToLower(p.Text), query) ||
		strings.Contains(strings.ToLower(p.Author.Name), query) ||
		strings.Contains(strings.ToLower(p.Author.ScreenName), query)
}

type AuthorCount struct {
	ScreenName string `json:"screen_name" yaml:"screen_name"`
	Name       string `json:"name" yaml:"name"`
	Count      int    `json:"count" yaml:"count"`
}

// TopAuthors ranks handles by bookmark count, ties in first-seen order.
// The display name is the first one seen for the handle.
func TopAuthors(bookmarks []models.Bookmark, n int) []AuthorCount {
	index := make(map[string]int)
	var authors []AuthorCount
	for _, b := range bookmarks {
		handle := b.Post.Author.ScreenName
		i, ok := index[handle]
		if !ok {
			i = len(authors)
			index[handle] = i
			authors = append(authors, AuthorCount{ScreenName: handle, Name: b.Post.Author.Name})
		}
		authors[i].Count++
	}

	slices.SortStableFunc(authors, func(a, b AuthorCount) int {
		return b.Count - a.Count
	})
	if n >= 0 && len(authors) > n {
		authors = authors[:n]
	}
	return authors
}

// CategoryByID returns the category with id, if present
func CategoryByID(categories []models.Category, id string) (models.Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}
