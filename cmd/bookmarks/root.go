package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xaenox/bookmark-lens/internal/analyzer"
	"github.com/xaenox/bookmark-lens/internal/archive"
	"github.com/xaenox/bookmark-lens/internal/metrics"
	"github.com/xaenox/bookmark-lens/internal/storage"
	"github.com/xaenox/bookmark-lens/pkg/config"
)

// app carries what every subcommand needs once flags and config are resolved
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Recorder
	store   storage.Storage
}

// execute runs the command line in args and releases storage afterwards,
// whether or not the command succeeded.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{v: config.New()}
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "bookmarks",
		Short: "Import and analyze bookmark exports",
		Long: `bookmarks reads the bookmark file out of a social media data export and
groups the saved posts into categories, themes and insights.

Example usage:
  bookmarks import twitter-archive.zip     # Replace the library with an export
  bookmarks analyze                        # Analyze with the configured provider
  bookmarks analyze --provider openai -f json
  bookmarks search golang                  # Find bookmarks by text or author
  bookmarks serve                          # Start the HTTP API
  bookmarks bot                            # Start the Telegram bot`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("library", "", "library name (default \"default\")")

	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("analysis.library", flags.Lookup("library"))

	root.AddCommand(
		newImportCommand(a),
		newAnalyzeCommand(a),
		newSearchCommand(a),
		newAuthorsCommand(a),
		newClearCommand(a),
		newServeCommand(a),
		newBotCommand(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	a.logger, err = newLogger(cfg.Log)
	if err != nil {
		return err
	}
	a.logger.Debug("Configuration loaded",
		zap.String("config", a.cfgFile),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("provider", cfg.Analysis.Provider),
		zap.String("library", cfg.Analysis.Library))
	return nil
}

// storage opens the configured backend on first use
func (a *app) storage() (storage.Storage, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := storage.Open(a.cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Opened storage", zap.String("driver", a.cfg.Storage.Driver))
	a.store = store
	return store, nil
}

func (a *app) importer() *archive.Importer {
	return archive.NewImporter(a.logger, archive.WithMetrics(a.metrics))
}

func (a *app) analyzers() analyzer.Factory {
	return analyzer.NewFactory(a.cfg, a.logger, a.metrics)
}

func (a *app) library() string {
	return a.cfg.Analysis.Library
}

func (a *app) close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		zcfg.Level = level
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
