package library

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xaenox/bookmark-lens/internal/models"
)

func bm(id, handle, name, text string) models.Bookmark {
	return models.Bookmark{Post: models.Post{
		ID:     id,
		Text:   text,
		Author: models.User{ScreenName: handle, Name: name},
	}}
}

var sample = []models.Bookmark{
	bm("1", "gopher", "The Gopher", "Generics in Golang"),
	bm("2", "crab", "Ferris", "Ownership rules"),
	bm("3", "gopher", "The Gopher", "Channels and select"),
	bm("4", "pythonista", "Guido Fan", "Typing golang-style"),
}

var categories = []models.Category{
	{ID: "category-1", Name: "Golang", PostIDs: []string{"1", "4"}},
	{ID: "category-2", Name: "Rust", PostIDs: []string{"2"}},
}

func ids(bookmarks []models.Bookmark) []string {
	out := make([]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, b.Post.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"1", "2", "3", "4"}},
		{"text match ignores case", Filter{Query: "GOLANG"}, []string{"1", "4"}},
		{"handle match", Filter{Query: "crab"}, []string{"2"}},
		{"display name match", Filter{Query: "guido"}, []string{"4"}},
		{"whitespace query", Filter{Query: "   "}, []string{"1", "2", "3", "4"}},
		{"category", Filter{CategoryID: "category-1"}, []string{"1", "4"}},
		{"unknown category is ignored", Filter{CategoryID: "category-9"}, []string{"1", "2", "3", "4"}},
		{"query and category", Filter{Query: "typing", CategoryID: "category-1"}, []string{"4"}},
		{"no match", Filter{Query: "haskell"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(sample, tt.filter, categories)))
		})
	}
}

func TestTopAuthors(t *testing.T) {
	input := append([]models.Bookmark{bm("0", "crab", "Ferris", "")}, sample...)

	assert.Equal(t, []AuthorCount{
		{ScreenName: "crab", Name: "Ferris", Count: 2},
		{ScreenName: "gopher", Name: "The Gopher", Count: 2},
		{ScreenName: "pythonista", Name: "Guido Fan", Count: 1},
	}, TopAuthors(input, 5))

	assert.Len(t, TopAuthors(input, 1), 1)
	assert.Empty(t, TopAuthors(nil, 5))
}

func TestCategoryByID(t *testing.T) {
	c, ok := CategoryByID(categories, "category-2")
	assert.True(t, ok)
	assert.Equal(t, "Rust", c.Name)

	_, ok = CategoryByID(categories, "nope")
	assert.False(t, ok)
}
