package cli

import (
	"fmt"

	"github.com/alexanderramin/portfolio/internal/audit"
	"github.com/alexanderramin/portfolio/internal/cli/formatter"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/spf13/cobra"
)

func newAuditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the change log",
	}
	cmd.AddCommand(newAuditListCmd(app))
	return cmd
}

func newAuditListCmd(app *App) *cobra.Command {
	var initiative, task, field string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List change records, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.viewer(ctx, domain.PermTabAllTasks); err != nil {
				return err
			}
			f := audit.Filter{TaskID: task, Field: domain.Field(field), Limit: limit}
			if initiative != "" {
				id, err := resolveInitiativeID(ctx, app, initiative)
				if err != nil {
					return err
				}
				f.InitiativeID = id
			}

			recs := app.Log.Query(f)
			if ok, err := app.printJSON(cmd.OutOrStdout(), recs); ok {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes recorded.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatChanges(recs))
			return nil
		},
	}

	cmd.Flags().StringVar(&initiative, "initiative", "", "Only this initiative")
	cmd.Flags().StringVar(&task, "task", "", "Only this task id")
	cmd.Flags().StringVar(&field, "field", "", "Only this field")
	cmd.Flags().IntVar(&limit, "limit", 0, "Keep only the most recent n records")

	return cmd
}
