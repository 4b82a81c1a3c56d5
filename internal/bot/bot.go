// Package bot is the Telegram front end. It answers only its owner: a sent
// export replaces the library and commands analyze and query it.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/bookmark-lens/internal/analyzer"
	"github.com/xaenox/bookmark-lens/internal/archive"
	"github.com/xaenox/bookmark-lens/internal/storage"
)

const maxMessageRunes = 4000

// telegramAPI is the part of *tgbotapi.BotAPI the bot uses
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Options struct {
	OwnerID         int64
	Library         string
	DefaultProvider string
	MaxFileBytes    int64
	Storage         storage.Storage
	Importer        *archive.Importer
	Analyzers       analyzer.Factory
	HTTPClient      *http.Client
	Logger          *zap.Logger
}

type Bot struct {
	api             telegramAPI
	ownerID         int64
	library         string
	defaultProvider string
	maxFileBytes    int64
	storage         storage.Storage
	importer        *archive.Importer
	analyzers       analyzer.Factory
	httpClient      *http.Client
	logger          *zap.Logger
}

func New(token string, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return newBot(api, opts), nil
}

func newBot(api telegramAPI, opts Options) *Bot {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	importer := opts.Importer
	if importer == nil {
		importer = archive.NewImporter(logger)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}

	return &Bot{
		api:             api,
		ownerID:         opts.OwnerID,
		library:         opts.Library,
		defaultProvider: opts.DefaultProvider,
		maxFileBytes:    opts.MaxFileBytes,
		storage:         opts.Storage,
		importer:        importer,
		analyzers:       opts.Analyzers,
		httpClient:      client,
		logger:          logger,
	}
}

// Start polls for updates until ctx is cancelled. Messages are handled one at
// a time so imports and analyses of the single library never interleave.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Bot started", zap.Int64("owner_id", b.ownerID), zap.String("library", b.library))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.From.ID != b.ownerID {
		var from int64
		if message.From != nil {
			from = message.From.ID
		}
		b.logger.Warn("Ignoring message from stranger",
			zap.Int64("user_id", from),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendMessage(message.Chat.ID, "Sorry, this bot is private.")
		return
	}

	switch {
	case message.IsCommand():
		b.handleCommand(ctx, message)
	case message.Document != nil:
		b.handleDocument(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Send me your bookmark export (.zip, .js or .json) or use /help.")
	}
}

func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) {
	doc := message.Document
	if b.maxFileBytes > 0 && int64(doc.FileSize) > b.maxFileBytes {
		b.sendErrorMessage(message.Chat.ID, fmt.Sprintf("That file is too large (limit %d MiB).", b.maxFileBytes>>20))
		return
	}

	data, err := b.download(ctx, doc.FileID)
	if err != nil {
		b.logger.Error("Failed to download document",
			zap.Error(err),
			zap.String("file_name", doc.FileName))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't download that file.")
		return
	}

	result, err := b.importer.Import(doc.FileName, data)
	if err != nil {
		var formatErr *archive.FormatError
		if errors.As(err, &formatErr) {
			b.sendErrorMessage(message.Chat.ID, "I couldn't read bookmarks from that file: "+formatErr.Reason+".")
			return
		}
		b.logger.Error("Failed to import document", zap.Error(err), zap.String("file_name", doc.FileName))
		b.sendErrorMessage(message.Chat.ID, "Sorry, the import failed.")
		return
	}
	if len(result.Bookmarks) == 0 {
		b.sendMessage(message.Chat.ID, "No bookmarks found in that file.")
		return
	}

	if err := b.storage.ReplaceBookmarks(ctx, b.library, result.Bookmarks); err != nil {
		b.logger.Error("Failed to save bookmarks",
			zap.Error(err),
			zap.String("library", b.library))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't save your bookmarks. Please try again.")
		return
	}

	text := fmt.Sprintf("Imported %d bookmarks from %s.", len(result.Bookmarks), result.Source)
	if result.Skipped > 0 {
		text += fmt.Sprintf(" %d entries without an id were skipped.", result.Skipped)
	}
	b.sendMessage(message.Chat.ID, text+"\nUse /analyze to group them into categories.")
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if b.maxFileBytes > 0 {
		body = io.LimitReader(resp.Body, b.maxFileBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if b.maxFileBytes > 0 && int64(len(data)) > b.maxFileBytes {
		return nil, errors.New("file exceeds size limit")
	}
	return data, nil
}

// escapeMarkdown escapes special characters for MarkdownV2
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-1]) + "…"
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, truncate(text, maxMessageRunes))
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

// fitLines keeps whole lines of text while it fits in n runes, marking the
// cut with an ellipsis. Cutting between lines never splits an escape
// sequence or an entity of escaped MarkdownV2.
func fitLines(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	const more = "\n…"
	budget := n - utf8.RuneCountInString(more)

	var kept []string
	used := 0
	for _, line := range strings.Split(text, "\n") {
		size := utf8.RuneCountInString(line) + 1
		if used+size > budget {
			break
		}
		kept = append(kept, line)
		used += size
	}
	return strings.Join(kept, "\n") + more
}

// sendMarkdown sends text that is already MarkdownV2-escaped
func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, fitLines(text, maxMessageRunes))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
