package analyzer

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xaenox/bookmark-lens/internal/models"
	"github.com/xaenox/bookmark-lens/pkg/config"
)

const providerOpenAI = "OpenAI"

type OpenAIAnalyzer struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewOpenAI(cfg config.OpenAIConfig, logger *zap.Logger) *OpenAIAnalyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIAnalyzer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Analyze sends one chat completion request. Failures are not retried.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, bookmarks []models.Bookmark) (*models.AnalysisResult, error) {
	prompt, err := BuildPrompt(bookmarks)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   a.maxTokens,
			Temperature: float32(a.temperature),
		},
	)
	if err != nil {
		return nil, &RemoteError{Provider: providerOpenAI, StatusCode: openAIStatus(err), Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &RemoteError{Provider: providerOpenAI, Err: errors.New("no response from OpenAI")}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, &RemoteError{Provider: providerOpenAI, Err: errors.New("no response from OpenAI")}
	}

	result, err := ParseResponse(providerOpenAI, content)
	if err != nil {
		a.logger.Error("Failed to parse OpenAI response",
			zap.Error(err),
			zap.String("response", content))
		return nil, err
	}
	return result, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
