package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/newsdex/newsdex/internal/hn"
	"github.com/newsdex/newsdex/internal/ingest"
	"github.com/newsdex/newsdex/internal/store"
	"github.com/newsdex/newsdex/internal/telemetry"
	"github.com/newsdex/newsdex/internal/ui"
)

func newRebuildCmd() *cobra.Command {
	var storyLimit int

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the index for a category",
		Long: `Fetch the current top items for a category from the Hacker News API
and rebuild that category's index from scratch.

The previous index stays fully searchable until the rebuild commits, at
which point readers switch over atomically.

Examples:
  newsdex rebuild
  newsdex rebuild --category ask
  newsdex rebuild --limit 30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRebuild(cmd, storyLimit)
		},
	}

	cmd.Flags().IntVarP(&storyLimit, "limit", "n", 0, "Top-level items to fetch (default from config)")

	return cmd
}

func runRebuild(cmd *cobra.Command, storyLimit int) error {
	ctx := cmd.Context()

	cat, err := parseCategory()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if storyLimit <= 0 {
		storyLimit = cfg.Rebuild.StoryLimit
	}

	client, err := hn.NewClient(
		hn.WithBaseURL(cfg.API.BaseURL),
		hn.WithRateLimit(cfg.API.RequestsPerSecond),
	)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Index.Dir)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	opts := []ingest.Option{ingest.WithStoryLimit(storyLimit)}

	stats, err := telemetry.OpenStatsStore(cfg.Index.StatsPath)
	if err != nil {
		// Stats are informational only; the rebuild proceeds without them.
		slog.Warn("stats_store_unavailable", slog.String("error", err.Error()))
	} else {
		defer func() { _ = stats.Close() }()
		opts = append(opts, ingest.WithStatsRecorder(stats))
	}

	orch := ingest.NewOrchestrator(st, client, opts...)

	events, err := orch.Rebuild(ctx, cat)
	if err != nil {
		return err
	}

	printer := ui.NewProgressPrinter(cmd.OutOrStdout())
	final, err := printer.Run(events)
	if err != nil {
		return fmt.Errorf("rebuild %s: %w", cat, err)
	}

	slog.Info("rebuild_complete",
		slog.String("category", string(final.Category)),
		slog.Uint64("documents", final.TotalDocuments),
		slog.Duration("build_time", final.BuildTime))
	return nil
}
