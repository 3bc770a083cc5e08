package cmd

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newsdex/newsdex/internal/search"
	"github.com/newsdex/newsdex/internal/ui"
)

// listPage is the JSON output format for paginated story listings.
type listPage struct {
	Total   uint64         `json:"total"`
	Offset  int            `json:"offset"`
	Stories []search.Story `json:"stories"`
}

// commentPage is the JSON output format for paginated comment listings.
type commentPage struct {
	Total    uint64           `json:"total"`
	Offset   int              `json:"offset"`
	Comments []search.Comment `json:"comments"`
}

// pageOptions holds the shared pagination flags.
type pageOptions struct {
	limit      int
	offset     int
	jsonOutput bool
}

func (o *pageOptions) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&o.limit, "limit", "n", 30, "Maximum number of results")
	cmd.Flags().IntVar(&o.offset, "offset", 0, "Number of results to skip")
	cmd.Flags().BoolVar(&o.jsonOutput, "json", false, "Output as JSON")
}

func newTopCmd() *cobra.Command {
	var opts pageOptions

	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the indexed front page for a category",
		Long: `List the category's stories, jobs and polls in their original
listing order.

Examples:
  newsdex top
  newsdex top --category show --limit 10
  newsdex top --offset 30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTop(cmd, opts)
		},
	}

	opts.register(cmd)
	return cmd
}

func runTop(cmd *cobra.Command, opts pageOptions) error {
	engine, cleanup, err := openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	stories, total, err := engine.TopStories(cmd.Context(), opts.limit, opts.offset)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeJSON(cmd, listPage{Total: total, Offset: opts.offset, Stories: stories})
	}

	ui.NewRenderer(cmd.OutOrStdout()).StoryList(stories, total, opts.offset)
	return nil
}

func newStoryCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "story <id>",
		Short: "Show a single story by item id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			return runStory(cmd, id, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func runStory(cmd *cobra.Command, id uint64, jsonOutput bool) error {
	engine, cleanup, err := openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	story, err := engine.Story(cmd.Context(), id)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd, story)
	}

	ui.NewRenderer(cmd.OutOrStdout()).StoryDetail(story)
	return nil
}

// writeJSON encodes v to the command's stdout with indentation.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
