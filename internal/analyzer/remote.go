package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xaenox/bookmark-lens/internal/models"
)

const (
	maxRemoteBookmarks = 100
	maxRemoteTextRunes = 500
)

// RemoteError is a failed or unusable response from a hosted model.
// The upstream message is kept verbatim.
type RemoteError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// RequestItem is the per-bookmark shape sent to a hosted model
type RequestItem struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Author string `json:"author"`
}

// BuildRequest keeps the first 100 bookmarks with text cut to 500 characters
func BuildRequest(bookmarks []models.Bookmark) []RequestItem {
	bookmarks = bookmarks[:min(maxRemoteBookmarks, len(bookmarks))]
	items := make([]RequestItem, len(bookmarks))
	for i, b := range bookmarks {
		items[i] = RequestItem{
			ID:     b.Post.ID,
			Text:   truncateRunes(b.Post.Text, maxRemoteTextRunes),
			Author: b.Post.Author.ScreenName,
		}
	}
	return items
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

const promptTemplate = `You are analyzing a user's Twitter bookmarks to help them understand and organize their saved content.

Here are the bookmarks (up to 100):

%s

Please analyze these bookmarks and provide:

1. **Categories**: Create 4-7 meaningful categories that group these bookmarks by topic/theme. For each category, list the bookmark IDs that belong to it.

2. **Themes**: Identify 3-5 overarching themes or interests represented in the bookmarks.

3. **Summary**: Write a 2-3 sentence summary of what this person tends to bookmark.

4. **Insights**: Provide 3-4 interesting insights about the user's bookmarking habits or interests.

5. **Top Topics**: List the top 5 specific topics with approximate counts.

Respond in this exact JSON format:
{
  "categories": [
    {
      "id": "category-1",
      "name": "Category Name",
      "description": "Brief description",
      "bookmarkIds": ["id1", "id2"]
    }
  ],
  "themes": ["theme1", "theme2"],
  "summary": "Summary text here",
  "insights": ["insight1", "insight2"],
  "topTopics": [
    {"topic": "Topic Name", "count": 10}
  ]
}

Only respond with valid JSON, no other text.`

// BuildPrompt renders the instruction text shared by every hosted model
func BuildPrompt(bookmarks []models.Bookmark) (string, error) {
	payload, err := json.MarshalIndent(BuildRequest(bookmarks), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode bookmarks: %w", err)
	}
	return fmt.Sprintf(promptTemplate, payload), nil
}

type remoteCategory struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BookmarkIDs []string `json:"bookmarkIds"`
}

// remoteResponse uses pointers so a missing field can be told from an empty one
type remoteResponse struct {
	Categories *[]remoteCategory    `json:"categories"`
	Themes     *[]string            `json:"themes"`
	Summary    *string              `json:"summary"`
	Insights   *[]string            `json:"insights"`
	TopTopics  *[]models.TopicCount `json:"topTopics"`
}

// ParseResponse decodes a model's reply into a result with palette colors.
// Code fences and prose around the JSON object are tolerated; a missing
// field is not.
func ParseResponse(provider, content string) (*models.AnalysisResult, error) {
	body := jsonObject(content)
	if body == "" {
		return nil, &RemoteError{Provider: provider, Err: fmt.Errorf("no JSON object in response: %.200s", content)}
	}

	var resp remoteResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, &RemoteError{Provider: provider, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	var missing []string
	if resp.Categories == nil {
		missing = append(missing, "categories")
	}
	if resp.Themes == nil {
		missing = append(missing, "themes")
	}
	if resp.Summary == nil {
		missing = append(missing, "summary")
	}
	if resp.Insights == nil {
		missing = append(missing, "insights")
	}
	if resp.TopTopics == nil {
		missing = append(missing, "topTopics")
	}
	if len(missing) > 0 {
		return nil, &RemoteError{Provider: provider, Err: errors.New("response missing " + strings.Join(missing, ", "))}
	}

	categories := make([]models.Category, len(*resp.Categories))
	for i, c := range *resp.Categories {
		ids := c.BookmarkIDs
		if ids == nil {
			ids = []string{}
		}
		categories[i] = models.Category{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			PostIDs:     ids,
		}
	}
	paint(categories)

	return &models.AnalysisResult{
		Categories: categories,
		Themes:     *resp.Themes,
		Summary:    *resp.Summary,
		Insights:   *resp.Insights,
		TopTopics:  *resp.TopTopics,
	}, nil
}

// jsonObject returns the outermost {...} span of s, or "" if there is none
func jsonObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
