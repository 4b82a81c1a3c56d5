package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/bookmark-lens/internal/analyzer"
	"github.com/xaenox/bookmark-lens/internal/library"
	"github.com/xaenox/bookmark-lens/internal/models"
	"github.com/xaenox/bookmark-lens/internal/storage"
)

const (
	maxSearchResults = 10
	maxAuthors       = 5
	maxHistory       = 5
	searchPreview    = 120

	// raw caps before escaping, which can double the length
	maxSummaryRunes = 1500
	maxThemesRunes  = 500
	maxInsightRunes = 300
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "analyze":
		b.handleAnalyze(ctx, message)
	case "categories":
		b.handleCategories(ctx, message)
	case "search":
		b.handleSearch(ctx, message)
	case "authors":
		b.handleAuthors(ctx, message)
	case "history":
		b.handleHistory(ctx, message)
	case "clear":
		b.handleClear(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to Bookmark Lens! 🔖
I turn your bookmark export into categories, themes and insights.

Send me your archive (.zip) or the bookmarks .js/.json file from it to get started.
Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/analyze [local|openai|anthropic] - Analyze your bookmarks
/categories - Show categories from the latest analysis
/search <text> - Find bookmarks by text or author
/authors - Show your most bookmarked authors
/history - Show recent analyses
/clear - Delete your bookmarks and analyses

Sending a new export replaces the current bookmarks.`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleAnalyze(ctx context.Context, message *tgbotapi.Message) {
	provider := strings.ToLower(strings.TrimSpace(message.CommandArguments()))
	if provider == "" {
		provider = b.defaultProvider
	}

	a, err := b.analyzers(provider)
	if err != nil {
		b.sendErrorMessage(message.Chat.ID, err.Error())
		return
	}

	bookmarks, ok := b.loadBookmarks(ctx, message.Chat.ID)
	if !ok {
		return
	}
	if len(bookmarks) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any bookmarks yet. Send me your export first.")
		return
	}

	result, err := a.Analyze(ctx, bookmarks)
	if err != nil {
		var remoteErr *analyzer.RemoteError
		if errors.As(err, &remoteErr) {
			b.sendErrorMessage(message.Chat.ID, "Analysis failed: "+remoteErr.Error())
			return
		}
		b.sendErrorMessage(message.Chat.ID, "Sorry, the analysis failed.")
		return
	}

	run := &models.AnalysisRun{Library: b.library, Provider: provider, Result: *result}
	if err := b.storage.SaveAnalysis(ctx, run); err != nil {
		b.logger.Error("Failed to save analysis",
			zap.Error(err),
			zap.String("library", b.library))
	}

	b.sendMarkdown(message.Chat.ID, formatResult(result))
}

func formatResult(result *models.AnalysisResult) string {
	var sb strings.Builder
	sb.WriteString("*Summary*\n")
	sb.WriteString(escapeMarkdown(oneLine(result.Summary, maxSummaryRunes)) + "\n")

	if len(result.Themes) > 0 {
		sb.WriteString("\n*Themes:* " + escapeMarkdown(oneLine(strings.Join(result.Themes, ", "), maxThemesRunes)) + "\n")
	}

	if len(result.Insights) > 0 {
		sb.WriteString("\n*Insights*\n")
		for _, insight := range result.Insights {
			sb.WriteString(escapeMarkdown("• "+oneLine(insight, maxInsightRunes)) + "\n")
		}
	}

	if len(result.Categories) > 0 {
		sb.WriteString("\n*Categories*\n")
		sb.WriteString(formatCategories(result.Categories))
	}
	return sb.String()
}

// oneLine flattens text from a hosted model so every entry stays on one line
func oneLine(text string, n int) string {
	return truncate(strings.Join(strings.Fields(text), " "), n)
}

func formatCategories(categories []models.Category) string {
	var sb strings.Builder
	for _, c := range categories {
		tag := "#" + strings.ReplaceAll(oneLine(c.Name, maxInsightRunes), " ", "_")
		sb.WriteString(fmt.Sprintf("%s %s\n", escapeMarkdown(tag), escapeMarkdown(fmt.Sprintf("(%d)", len(c.PostIDs)))))
	}
	return sb.String()
}

func (b *Bot) handleCategories(ctx context.Context, message *tgbotapi.Message) {
	run, err := b.storage.LatestAnalysis(ctx, b.library)
	if storage.IsNotFound(err) {
		b.sendMessage(message.Chat.ID, "No analysis yet. Run /analyze first.")
		return
	}
	if err != nil {
		b.logger.Error("Failed to get latest analysis",
			zap.Error(err),
			zap.String("library", b.library))
		b.sendErrorMessage(message.Chat.ID, "Sorry, failed to retrieve your categories. Please try again later.")
		return
	}

	if len(run.Result.Categories) == 0 {
		b.sendMessage(message.Chat.ID, "The latest analysis found no categories.")
		return
	}

	b.sendMarkdown(message.Chat.ID, "*Your categories:*\n"+formatCategories(run.Result.Categories))
}

func (b *Bot) handleSearch(ctx context.Context, message *tgbotapi.Message) {
	query := strings.TrimSpace(message.CommandArguments())
	if query == "" {
		b.sendMessage(message.Chat.ID, "Usage: /search <text>")
		return
	}

	bookmarks, ok := b.loadBookmarks(ctx, message.Chat.ID)
	if !ok {
		return
	}

	matched := library.Apply(bookmarks, library.Filter{Query: query}, nil)
	if len(matched) == 0 {
		b.sendMessage(message.Chat.ID, fmt.Sprintf("No bookmarks match %q.", query))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d bookmarks match %q", len(matched), query))
	if len(matched) > maxSearchResults {
		sb.WriteString(fmt.Sprintf(", showing the first %d", maxSearchResults))
	}
	sb.WriteString(":\n\n")
	for _, bm := range matched[:min(maxSearchResults, len(matched))] {
		sb.WriteString(fmt.Sprintf("@%s: %s\n\n", bm.Post.Author.ScreenName, truncate(bm.Post.Text, searchPreview)))
	}
	b.sendMessage(message.Chat.ID, strings.TrimRight(sb.String(), "\n"))
}

func (b *Bot) handleAuthors(ctx context.Context, message *tgbotapi.Message) {
	bookmarks, ok := b.loadBookmarks(ctx, message.Chat.ID)
	if !ok {
		return
	}
	if len(bookmarks) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any bookmarks yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your most bookmarked authors:\n")
	for i, a := range library.TopAuthors(bookmarks, maxAuthors) {
		sb.WriteString(fmt.Sprintf("%d. @%s (%s) - %d\n", i+1, a.ScreenName, a.Name, a.Count))
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	runs, err := b.storage.ListAnalyses(ctx, b.library, maxHistory, 0)
	if err != nil {
		b.logger.Error("Failed to list analyses",
			zap.Error(err),
			zap.String("library", b.library))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve your analysis history.")
		return
	}

	if len(runs) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any analyses yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Recent analyses:\n")
	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%s  %s  %d categories\n",
			run.CreatedAt.Format("2006-01-02 15:04"), run.Provider, len(run.Result.Categories)))
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) handleClear(ctx context.Context, message *tgbotapi.Message) {
	if err := b.storage.ClearLibrary(ctx, b.library); err != nil {
		b.logger.Error("Failed to clear library",
			zap.Error(err),
			zap.String("library", b.library))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't clear your bookmarks.")
		return
	}
	b.sendMessage(message.Chat.ID, "All bookmarks and analyses were deleted.")
}

func (b *Bot) loadBookmarks(ctx context.Context, chatID int64) ([]models.Bookmark, bool) {
	bookmarks, err := b.storage.GetBookmarks(ctx, b.library)
	if err != nil {
		b.logger.Error("Failed to get bookmarks",
			zap.Error(err),
			zap.String("library", b.library))
		b.sendErrorMessage(chatID, "Sorry, I couldn't load your bookmarks.")
		return nil, false
	}
	return bookmarks, true
}
