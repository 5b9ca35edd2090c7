package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCommentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <initiative> <text...>",
		Short: "Comment on an initiative; @email mentions notify users",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(ctx)
			if err != nil {
				return err
			}
			id, err := resolveInitiativeID(ctx, app, args[0])
			if err != nil {
				return err
			}
			c, err := app.Mutations.AddComment(ctx, actor, id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("initiative not found: %q", args[0])
			}
			if ok, err := app.printJSON(cmd.OutOrStdout(), c); ok {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment %s added (%d mention(s))\n", c.ID, len(c.MentionedUserIDs))
			return nil
		},
	}
}
