// Package report renders analysis results and bookmark listings for people
// (styled text and tables) and for programs (JSON and YAML).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"

	"github.com/xaenox/bookmark-lens/internal/library"
	"github.com/xaenox/bookmark-lens/internal/models"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Write renders result in format f
func Write(w io.Writer, f Format, result *models.AnalysisResult) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, result)
	case FormatYAML:
		return WriteYAML(w, result)
	default:
		return WriteText(w, result)
	}
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

const previewRunes = 60

// WriteText prints a styled summary followed by a category table
func WriteText(w io.Writer, result *models.AnalysisResult) error {
	r := lipgloss.NewRenderer(w)
	heading := r.NewStyle().Bold(true)
	muted := r.NewStyle().Faint(true)

	var b strings.Builder
	b.WriteString(heading.Render("Summary") + "\n")
	b.WriteString(result.Summary + "\n\n")

	if len(result.Themes) > 0 {
		b.WriteString(heading.Render("Themes") + "\n")
		b.WriteString(strings.Join(result.Themes, ", ") + "\n\n")
	}

	if len(result.Insights) > 0 {
		b.WriteString(heading.Render("Insights") + "\n")
		for _, insight := range result.Insights {
			b.WriteString("  • " + insight + "\n")
		}
		b.WriteString("\n")
	}

	if len(result.TopTopics) > 0 {
		b.WriteString(heading.Render("Top topics") + "\n")
		for _, t := range result.TopTopics {
			b.WriteString(fmt.Sprintf("  %-20s %s\n", t.Topic, muted.Render(strconv.Itoa(t.Count))))
		}
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if len(result.Categories) == 0 {
		return nil
	}

	if _, err := io.WriteString(w, heading.Render("Categories")+"\n"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(result.Categories))
	for _, c := range result.Categories {
		swatch := r.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("■")
		rows = append(rows, []string{c.ID, swatch + " " + c.Name, strconv.Itoa(len(c.PostIDs)), c.Description})
	}
	return renderTable(w, []string{"ID", "Name", "Posts", "Description"}, rows)
}

// WriteBookmarks lists bookmarks one per row with a shortened text preview
func WriteBookmarks(w io.Writer, bookmarks []models.Bookmark) error {
	rows := make([][]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		rows = append(rows, []string{
			b.Post.ID,
			"@" + b.Post.Author.ScreenName,
			b.Post.CreatedAt,
			preview(b.Post.Text, previewRunes),
		})
	}
	return renderTable(w, []string{"ID", "Author", "Created", "Text"}, rows)
}

func WriteAuthors(w io.Writer, authors []library.AuthorCount) error {
	rows := make([][]string, 0, len(authors))
	for i, a := range authors {
		rows = append(rows, []string{strconv.Itoa(i + 1), "@" + a.ScreenName, a.Name, strconv.Itoa(a.Count)})
	}
	return renderTable(w, []string{"#", "Handle", "Name", "Bookmarks"}, rows)
}

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// preview flattens whitespace and cuts s to n runes
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
