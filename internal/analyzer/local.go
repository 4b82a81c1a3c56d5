package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/xaenox/bookmark-lens/internal/models"
)

const (
	maxTopics     = 10
	maxThemes     = 5
	maxCategories = 6
	maxAuthors    = 5
	summaryTopics = 3
	minTokenLen   = 4

	emptySummary = "You have 0 bookmarks from 0 different authors."
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+`)
	nonWordPattern = regexp.MustCompile(`[^\w\s]`)
)

// Local is the keyword-frequency analyzer. It does no I/O.
type Local struct{}

func (Local) Analyze(ctx context.Context, bookmarks []models.Bookmark) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := AnalyzeLocally(bookmarks)
	return &result, nil
}

// counter tallies keys and remembers the order they were first seen in
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) len() int { return len(c.order) }

// top returns up to n keys by count, ties broken by first appearance
func (c *counter) top(n int) []models.TopicCount {
	ranked := make([]models.TopicCount, len(c.order))
	for i, key := range c.order {
		ranked[i] = models.TopicCount{Topic: key, Count: c.counts[key]}
	}
	slices.SortStableFunc(ranked, func(a, b models.TopicCount) int {
		return b.Count - a.Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Tokenize lowercases text, drops links and punctuation, and keeps words
// longer than three characters that are not stop words.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = nonWordPattern.ReplaceAllString(text, " ")

	var tokens []string
	for _, w := range strings.Fields(text) {
		if len(w) < minTokenLen {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// AnalyzeLocally ranks keywords and authors across bookmarks and derives
// categories from the top keywords. Equal inputs give equal outputs.
func AnalyzeLocally(bookmarks []models.Bookmark) models.AnalysisResult {
	words := newCounter()
	authors := newCounter()
	lowered := make([]string, len(bookmarks))
	totalRunes := 0

	for i, b := range bookmarks {
		for _, token := range Tokenize(b.Post.Text) {
			words.add(token)
		}
		authors.add(b.Post.Author.ScreenName)
		lowered[i] = strings.ToLower(b.Post.Text)
		totalRunes += utf8.RuneCountInString(b.Post.Text)
	}

	topTopics := words.top(maxTopics)
	topAuthors := authors.top(maxAuthors)

	categories := make([]models.Category, 0, maxCategories)
	for i, t := range topTopics[:min(maxCategories, len(topTopics))] {
		ids := make([]string, 0)
		for j, text := range lowered {
			// substring, not token, membership: "art" also matches "start"
			if strings.Contains(text, t.Topic) {
				ids = append(ids, bookmarks[j].Post.ID)
			}
		}
		categories = append(categories, models.Category{
			ID:          fmt.Sprintf("category-%d", i+1),
			Name:        capitalize(t.Topic),
			Description: fmt.Sprintf("Tweets mentioning %q", t.Topic),
			Color:       colorAt(i),
			PostIDs:     ids,
		})
	}

	themes := make([]string, 0, maxThemes)
	for _, t := range topTopics[:min(maxThemes, len(topTopics))] {
		themes = append(themes, t.Topic)
	}

	return models.AnalysisResult{
		Categories: categories,
		Themes:     themes,
		Summary:    summarize(len(bookmarks), authors.len(), topTopics),
		Insights:   insights(len(bookmarks), authors.len(), totalRunes, topTopics, topAuthors),
		TopTopics:  topTopics,
	}
}

func summarize(total, distinctAuthors int, topics []models.TopicCount) string {
	if total == 0 {
		return emptySummary
	}
	s := fmt.Sprintf("You have %d bookmarks from %d different authors.", total, distinctAuthors)
	if len(topics) == 0 {
		return s
	}
	names := make([]string, 0, summaryTopics)
	for _, t := range topics[:min(summaryTopics, len(topics))] {
		names = append(names, t.Topic)
	}
	return s + " Your most bookmarked topics include " + strings.Join(names, ", ") + "."
}

func insights(total, distinctAuthors, totalRunes int, topics, authors []models.TopicCount) []string {
	out := make([]string, 0, 4)
	if total == 0 {
		return out
	}

	out = append(out, fmt.Sprintf("Your most bookmarked author is @%s with %d bookmarks", authors[0].Topic, authors[0].Count))
	if len(topics) > 0 {
		out = append(out, fmt.Sprintf("Top topic %q appears in %d bookmarks", topics[0].Topic, topics[0].Count))
	}
	out = append(out, fmt.Sprintf("You have bookmarks from %d unique accounts", distinctAuthors))
	out = append(out, fmt.Sprintf("Average bookmark length: %d characters", roundedMean(totalRunes, total)))
	return out
}

// roundedMean rounds half up; n must be positive
func roundedMean(sum, n int) int {
	return (2*sum + n) / (2 * n)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return strings.ToUpper(string(r)) + s[size:]
}
