package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/newsdex/newsdex/internal/ui"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	pageOptions
	storyID     uint64
	allComments bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed stories and comments",
		Long: `Search the index.

By default the query runs against story titles in the active category,
tolerating a one-character typo. A numeric query is treated as an exact
item id lookup.

With --story the query runs against the comment bodies of that story's
whole tree. With --all-comments it runs against every comment in every
category using the full query syntax (quoted phrases, field:term,
+must -must-not).

Examples:
  newsdex search "distributed systems"
  newsdex search 8863
  newsdex search --story 8863 "garage"
  newsdex search --all-comments 'body:"unit test"'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().Uint64Var(&opts.storyID, "story", 0, "Search comment bodies within one story's tree")
	cmd.Flags().BoolVar(&opts.allComments, "all-comments", false, "Search every comment across all categories")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	engine, cleanup, err := openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	renderer := ui.NewRenderer(cmd.OutOrStdout())

	switch {
	case opts.storyID != 0:
		comments, total, err := engine.SearchComments(ctx, query, opts.storyID, opts.limit, opts.offset)
		if err != nil {
			return err
		}
		if opts.jsonOutput {
			return writeJSON(cmd, commentPage{Total: total, Offset: opts.offset, Comments: comments})
		}
		renderer.CommentList(comments, total)

	case opts.allComments:
		comments, total, err := engine.SearchAllComments(ctx, query, opts.limit, opts.offset)
		if err != nil {
			return err
		}
		if opts.jsonOutput {
			return writeJSON(cmd, commentPage{Total: total, Offset: opts.offset, Comments: comments})
		}
		renderer.CommentList(comments, total)

	default:
		stories, total, err := engine.SearchStories(ctx, query, opts.limit, opts.offset)
		if err != nil {
			return err
		}
		if opts.jsonOutput {
			return writeJSON(cmd, listPage{Total: total, Offset: opts.offset, Stories: stories})
		}
		renderer.StoryList(stories, total, opts.offset)
	}

	return nil
}
