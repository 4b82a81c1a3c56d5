// Package analyzer turns a bookmark list into an AnalysisResult, either with
// the local keyword heuristic or by asking a hosted language model.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/bookmark-lens/internal/metrics"
	"github.com/xaenox/bookmark-lens/internal/models"
	"github.com/xaenox/bookmark-lens/pkg/config"
)

type Analyzer interface {
	Analyze(ctx context.Context, bookmarks []models.Bookmark) (*models.AnalysisResult, error)
}

var ErrUnknownProvider = errors.New("unknown analysis provider")

// Palette colors categories by index, cycling past its end
var Palette = []string{
	"#1DA1F2",
	"#17BF63",
	"#FFAD1F",
	"#F45D22",
	"#E0245E",
	"#794BC4",
}

func colorAt(i int) string {
	return Palette[i%len(Palette)]
}

func paint(categories []models.Category) {
	for i := range categories {
		categories[i].Color = colorAt(i)
	}
}

// Factory returns the analyzer for a provider name
type Factory func(provider string) (Analyzer, error)

func NewFactory(cfg *config.Config, logger *zap.Logger, m *metrics.Recorder) Factory {
	return func(provider string) (Analyzer, error) {
		return New(provider, cfg, logger, m)
	}
}

// New builds the analyzer for provider, wrapped with logging and metrics
func New(provider string, cfg *config.Config, logger *zap.Logger, m *metrics.Recorder) (Analyzer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var a Analyzer
	switch provider {
	case config.ProviderLocal:
		a = Local{}
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, errors.New("openai api key is not configured")
		}
		a = NewOpenAI(cfg.OpenAI, logger)
	case config.ProviderAnthropic:
		if cfg.Anthropic.APIKey == "" {
			return nil, errors.New("anthropic api key is not configured")
		}
		a = NewAnthropic(cfg.Anthropic, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	return &instrumented{
		provider: provider,
		next:     a,
		logger:   logger,
		metrics:  m,
	}, nil
}

type instrumented struct {
	provider string
	next     Analyzer
	logger   *zap.Logger
	metrics  *metrics.Recorder
}

func (a *instrumented) Analyze(ctx context.Context, bookmarks []models.Bookmark) (*models.AnalysisResult, error) {
	start := time.Now()
	result, err := a.next.Analyze(ctx, bookmarks)
	elapsed := time.Since(start)
	a.metrics.ObserveAnalysis(a.provider, elapsed, err)

	if err != nil {
		a.logger.Error("Failed to analyze bookmarks",
			zap.String("provider", a.provider),
			zap.Int("bookmarks", len(bookmarks)),
			zap.Error(err))
		return nil, err
	}

	a.logger.Info("Analyzed bookmarks",
		zap.String("provider", a.provider),
		zap.Int("bookmarks", len(bookmarks)),
		zap.Int("categories", len(result.Categories)),
		zap.Duration("elapsed", elapsed))
	return result, nil
}
