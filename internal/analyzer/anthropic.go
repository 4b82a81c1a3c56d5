package analyzer

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/xaenox/bookmark-lens/internal/models"
	"github.com/xaenox/bookmark-lens/pkg/config"
)

const providerAnthropic = "Claude"

type AnthropicAnalyzer struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

func NewAnthropic(cfg config.AnthropicConfig, logger *zap.Logger) *AnthropicAnalyzer {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicAnalyzer{
		client:    &client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

// Analyze sends one Messages API request. Failures are not retried.
func (a *AnthropicAnalyzer) Analyze(ctx context.Context, bookmarks []models.Bookmark) (*models.AnalysisResult, error) {
	prompt, err := BuildPrompt(bookmarks)
	if err != nil {
		return nil, err
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return nil, &RemoteError{Provider: providerAnthropic, StatusCode: status, Err: err}
	}

	var content string
	for _, block := range message.Content {
		if block.Type == "text" {
			content = strings.TrimSpace(block.Text)
			break
		}
	}
	if content == "" {
		return nil, &RemoteError{Provider: providerAnthropic, Err: errors.New("no response from Claude")}
	}

	result, err := ParseResponse(providerAnthropic, content)
	if err != nil {
		a.logger.Error("Failed to parse Claude response",
			zap.Error(err),
			zap.String("response", content))
		return nil, err
	}
	return result, nil
}
