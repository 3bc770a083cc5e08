// Package cmd provides the CLI commands for newsdex.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/newsdex/newsdex/internal/config"
	nderrors "github.com/newsdex/newsdex/internal/errors"
	"github.com/newsdex/newsdex/internal/hn"
	"github.com/newsdex/newsdex/internal/logging"
	"github.com/newsdex/newsdex/internal/search"
	"github.com/newsdex/newsdex/internal/store"
	"github.com/newsdex/newsdex/pkg/version"
)

// Persistent flags shared by every command.
var (
	configPath     string
	indexDir       string
	categoryFlag   string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the newsdex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsdex",
		Short: "Local full-text index over Hacker News",
		Long: `Newsdex maintains a local full-text search index over Hacker News
stories and comments.

Rebuild a category index with 'newsdex rebuild', then browse and search
it offline with 'newsdex top', 'newsdex story', 'newsdex comments' and
'newsdex search'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("newsdex version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")
	cmd.PersistentFlags().StringVar(&indexDir, "index-dir", "", "Index directory (overrides config)")
	cmd.PersistentFlags().StringVarP(&categoryFlag, "category", "c", "top", "Story category: top, best, new, show, ask, job")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
	}

	cmd.AddCommand(newRebuildCmd())
	cmd.AddCommand(newTopCmd())
	cmd.AddCommand(newStoryCmd())
	cmd.AddCommand(newCommentsCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupLogging installs the default slog logger per config and flags.
func setupLogging(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.FilePath = cfg.Logging.FilePath
	if debugMode {
		logCfg.Level = "debug"
	}

	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	loggingCleanup = cleanup
	return nil
}

// Execute runs the root command, printing structured errors with their
// code and a hint when one applies.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, nderrors.FormatForCLI(err))
	}
	return err
}

// loadConfig loads configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if indexDir != "" {
		cfg.Index.Dir = indexDir
	}
	return cfg, nil
}

// parseCategory resolves the --category flag.
func parseCategory() (hn.Category, error) {
	return hn.ParseCategory(categoryFlag)
}

// openEngine opens the index store read path and scopes an engine to the
// flagged category. The open is read-only and takes no directory lock,
// so queries work while a rebuild runs in another process. The caller
// must call the returned cleanup.
func openEngine() (*search.Engine, func(), error) {
	cat, err := parseCategory()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.OpenReadOnly(cfg.Index.Dir)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := st.Close(); err != nil {
			slog.Warn("index_close_failed", slog.String("error", err.Error()))
		}
	}
	return search.New(st, cat), cleanup, nil
}
