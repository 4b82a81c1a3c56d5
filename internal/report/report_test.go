package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xaenox/bookmark-lens/internal/library"
	"github.com/xaenox/bookmark-lens/internal/models"
)

var result = &models.AnalysisResult{
	Categories: []models.Category{
		{ID: "category-1", Name: "Golang", Description: `Tweets mentioning "golang"`, Color: "#1DA1F2", PostIDs: []string{"1", "2"}},
	},
	Themes:    []string{"golang", "rust"},
	Summary:   "You have 2 bookmarks from 1 different authors.",
	Insights:  []string{"You have bookmarks from 1 unique accounts"},
	TopTopics: []models.TopicCount{{Topic: "golang", Count: 2}},
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, " yaml ": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, `"xml"`)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, result))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, result.Summary, decoded["summary"])
	assert.Contains(t, decoded, "top_topics")
	assert.Contains(t, buf.String(), `"post_ids": [`)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, result))

	var decoded models.AnalysisResult
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *result, decoded)
	assert.Contains(t, buf.String(), "top_topics:")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, result))

	out := buf.String()
	for _, want := range []string{
		"Summary",
		result.Summary,
		"golang, rust",
		"You have bookmarks from 1 unique accounts",
		"Categories",
		"category-1",
		"Golang",
		`Tweets mentioning "golang"`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, &models.AnalysisResult{Summary: "You have 0 bookmarks from 0 different authors."}))

	out := buf.String()
	assert.Contains(t, out, "0 bookmarks")
	assert.NotContains(t, out, "Categories")
	assert.NotContains(t, out, "Themes")
}

func TestWriteBookmarks(t *testing.T) {
	var buf bytes.Buffer
	err := WriteBookmarks(&buf, []models.Bookmark{{Post: models.Post{
		ID:        "42",
		Text:      "line one\nline two " + strings.Repeat("x", 100),
		CreatedAt: "2024-01-01T00:00:00Z",
		Author:    models.User{ScreenName: "gopher"},
	}}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "@gopher")
	assert.Contains(t, out, "line one line two")
	assert.NotContains(t, out, strings.Repeat("x", 100))
}

func TestWriteAuthors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAuthors(&buf, []library.AuthorCount{{ScreenName: "gopher", Name: "The Gopher", Count: 3}}))
	assert.Contains(t, buf.String(), "@gopher")
	assert.Contains(t, buf.String(), "The Gopher")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "a b", preview("a\n\tb", 10))
	assert.Equal(t, "abcd…", preview("abcdefgh", 5))
	assert.Equal(t, "ééé…", preview("éééééé", 4))
}
