package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xaenox/bookmark-lens/internal/models"
	"github.com/xaenox/bookmark-lens/pkg/config"
)

const (
	goExport = `window.YTD.bookmark.part0 = [
  {"tweet": {"id_str": "1", "full_text": "Golang generics deep dive", "created_at": "2024-01-01T00:00:00Z", "user": {"screen_name": "gopher", "name": "Gopher"}}},
  {"tweet": {"id_str": "3", "full_text": "More golang tips", "created_at": "2024-03-01T00:00:00Z", "user": {"screen_name": "gopher", "name": "Gopher"}}}
];`
	rustExport = `[
  {"id_str": "2", "full_text": "Rust borrow checker explained", "created_at": "2024-02-01T00:00:00Z", "user": {"screen_name": "crab", "name": "Ferris"}},
  {"full_text": "no id"}
]`
)

type cli struct {
	dir    string
	config string
}

func newCLI(t *testing.T, driver string) *cli {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "TELEGRAM_TOKEN", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "ANALYSIS_PROVIDER", "STORAGE_DRIVER"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	cfg := "log:\n  level: error\nstorage:\n  driver: " + driver + "\n  sqlite:\n    path: " + filepath.Join(dir, "bookmarks.db") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return &cli{dir: dir, config: path}
}

func (c *cli) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(c.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), append([]string{"--config", c.config}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestImportSearchAnalyzeClear(t *testing.T) {
	c := newCLI(t, config.DriverSQLite)
	goFile := c.write(t, "bookmarks.js", goExport)
	rustFile := c.write(t, "rust.json", rustExport)

	out, err := c.run(t, "import", goFile, rustFile)
	require.NoError(t, err)
	assert.Contains(t, out, goFile+": 2 bookmarks from bookmarks.js")
	assert.Contains(t, out, rustFile+": 1 bookmarks from rust.json (1 skipped)")
	assert.Contains(t, out, `Stored 3 bookmarks in library "default".`)

	out, err = c.run(t, "search", "golang")
	require.NoError(t, err)
	assert.Contains(t, out, "@gopher")
	assert.NotContains(t, out, "@crab")

	out, err = c.run(t, "authors")
	require.NoError(t, err)
	assert.Contains(t, out, "@gopher")
	assert.Contains(t, out, "@crab")

	out, err = c.run(t, "analyze", "--format", "json")
	require.NoError(t, err)
	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotEmpty(t, result.Categories)
	assert.Equal(t, "Golang", result.Categories[0].Name)
	assert.Equal(t, []string{"3", "1"}, result.Categories[0].PostIDs)

	out, err = c.run(t, "search", "--category", result.Categories[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "@gopher")
	assert.NotContains(t, out, "@crab")

	out, err = c.run(t, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, `Cleared library "default".`)

	out, err = c.run(t, "search", "golang")
	require.NoError(t, err)
	assert.Equal(t, "No bookmarks found.\n", out)
}

func TestImportAppend(t *testing.T) {
	c := newCLI(t, config.DriverSQLite)
	goFile := c.write(t, "bookmarks.js", goExport)
	rustFile := c.write(t, "rust.json", rustExport)

	_, err := c.run(t, "import", goFile)
	require.NoError(t, err)
	_, err = c.run(t, "--library", "default", "import", "--append", rustFile)
	require.NoError(t, err)

	out, err := c.run(t, "authors", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "@gopher")
	assert.NotContains(t, out, "@crab")

	out, err = c.run(t, "search", "borrow")
	require.NoError(t, err)
	assert.Contains(t, out, "@crab")
}

func TestLibrariesAreSeparate(t *testing.T) {
	c := newCLI(t, config.DriverSQLite)
	goFile := c.write(t, "bookmarks.js", goExport)

	_, err := c.run(t, "--library", "work", "import", goFile)
	require.NoError(t, err)

	out, err := c.run(t, "search", "golang")
	require.NoError(t, err)
	assert.Equal(t, "No bookmarks found.\n", out)

	out, err = c.run(t, "--library", "work", "search", "golang")
	require.NoError(t, err)
	assert.Contains(t, out, "@gopher")
}

func TestImportErrors(t *testing.T) {
	c := newCLI(t, config.DriverMemory)

	_, err := c.run(t, "import", filepath.Join(c.dir, "missing.zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")

	bad := c.write(t, "bad.json", "{not json")
	_, err = c.run(t, "import", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")

	empty := c.write(t, "empty.json", "[]")
	_, err = c.run(t, "import", empty)
	assert.ErrorIs(t, err, errNoBookmarks)

	_, err = c.run(t, "import")
	assert.Error(t, err)
}

func TestAnalyzeFile(t *testing.T) {
	c := newCLI(t, config.DriverMemory)
	goFile := c.write(t, "bookmarks.js", goExport)
	output := filepath.Join(c.dir, "analysis.yaml")

	out, err := c.run(t, "analyze", "--file", goFile, "--format", "yaml", "--output", output)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var result models.AnalysisResult
	require.NoError(t, yaml.Unmarshal(data, &result))
	assert.Equal(t, "You have 2 bookmarks from 1 different authors. Your most bookmarked topics include golang, tips, generics.", result.Summary)
}

func TestAnalyzeErrors(t *testing.T) {
	c := newCLI(t, config.DriverMemory)
	goFile := c.write(t, "bookmarks.js", goExport)

	_, err := c.run(t, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no bookmarks to analyze")

	_, err = c.run(t, "analyze", "--file", goFile, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown output format "xml"`)

	_, err = c.run(t, "analyze", "--file", goFile, "--provider", "gemini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown analysis provider")
}

func TestSearchCategoryWithoutAnalysis(t *testing.T) {
	c := newCLI(t, config.DriverMemory)

	_, err := c.run(t, "search", "--category", "category-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run analyze first")
}

func TestBotRequiresToken(t *testing.T) {
	c := newCLI(t, config.DriverMemory)

	_, err := c.run(t, "bot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram.token is required")
}

func TestInvalidConfig(t *testing.T) {
	c := newCLI(t, "mongodb")

	_, err := c.run(t, "authors")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown storage driver "mongodb"`)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = newLogger(config.LogConfig{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	_, err = newLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
