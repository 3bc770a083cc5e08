package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newsdex/newsdex/internal/ui"
)

func newCommentsCmd() *cobra.Command {
	var opts pageOptions

	cmd := &cobra.Command{
		Use:   "comments <parent-id>",
		Short: "List the direct children of a story or comment",
		Long: `List the direct child comments of a story or of another comment,
in their original sibling order.

Examples:
  newsdex comments 8863
  newsdex comments 8863 --limit 10 --offset 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			return runComments(cmd, parentID, opts)
		},
	}

	opts.register(cmd)
	return cmd
}

func runComments(cmd *cobra.Command, parentID uint64, opts pageOptions) error {
	engine, cleanup, err := openEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	comments, total, err := engine.Comments(cmd.Context(), parentID, opts.limit, opts.offset)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeJSON(cmd, commentPage{Total: total, Offset: opts.offset, Comments: comments})
	}

	ui.NewRenderer(cmd.OutOrStdout()).CommentList(comments, total)
	return nil
}
