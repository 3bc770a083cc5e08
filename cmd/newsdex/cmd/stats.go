package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newsdex/newsdex/internal/telemetry"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the latest rebuild statistics per category",
		Long:  `Display the most recent rebuild statistics recorded for each category.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func runStats(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stats, err := telemetry.OpenStatsStore(cfg.Index.StatsPath)
	if err != nil {
		return err
	}
	defer func() { _ = stats.Close() }()

	latest, err := stats.Latest(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd, latest)
	}

	out := cmd.OutOrStdout()
	if len(latest) == 0 {
		fmt.Fprintln(out, "no rebuilds recorded yet")
		return nil
	}

	for _, s := range latest {
		fmt.Fprintf(out, "%-6s  %6d docs (%d stories, %d comments, %d jobs, %d polls)  built %s in %s\n",
			s.Category, s.TotalDocuments, s.TotalStories, s.TotalComments,
			s.TotalJobs, s.TotalPolls,
			s.BuiltOn.Local().Format(time.RFC3339),
			s.BuildTime.Round(time.Millisecond))
	}
	return nil
}
