package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/service"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"t"},
		Short:   "Manage tasks within an initiative",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskSetCmd(app),
		newTaskDeleteCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var req service.AddTaskRequest
	var unit unitFlag
	var tags []string

	cmd := &cobra.Command{
		Use:   "add <initiative>",
		Short: "Add a task to an initiative",
		Args:  cobra.ExactArgs(1),
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
			if req.EstimatedEffort, err = toWeeks(app.Converter, req.EstimatedEffort, unit); err != nil {
				return err
			}
			if req.ActualEffort, err = toWeeks(app.Converter, req.ActualEffort, unit); err != nil {
				return err
			}
			for _, t := range tags {
				req.Tags = append(req.Tags, domain.TaskTag(t))
			}

			i, err := app.Mutations.AddTask(ctx, actor, id, req)
			if err != nil {
				return err
			}
			if i == nil {
				return fmt.Errorf("initiative not found: %q", args[0])
			}
			if ok, err := app.printJSON(cmd.OutOrStdout(), i); ok {
				return err
			}
			added := i.Tasks[len(i.Tasks)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %s to %s (actual %sw)\n", added.ID, i.Title, domain.FormatEffort(i.ActualEffort))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Title, "title", "", "Task title")
	f.StringVar(&req.Owner, "owner-name", "", "Owner display name")
	f.StringVar(&req.OwnerID, "owner", "", "Owner user id (defaults to the initiative owner)")
	f.Float64Var(&req.EstimatedEffort, "estimate", 0, "Estimated effort")
	f.Float64Var(&req.ActualEffort, "actual", 0, "Actual effort")
	addUnitFlag(f, &unit, "Unit of --estimate and --actual: weeks, days or hours")
	f.StringVar(&req.ETA, "eta", "", "ETA (YYYY-MM-DD)")
	f.StringVar(&req.Status, "status", "", "Initial status")
	f.StringVar(&req.Priority, "priority", "", "P0, P1 or P2")
	f.StringSliceVar(&tags, "tag", nil, "Unplanned, PMItem or RiskItem (repeatable)")

	return cmd
}

func newTaskSetCmd(app *App) *cobra.Command {
	var unit unitFlag

	cmd := &cobra.Command{
		Use:   "set <initiative> <task> <field> <value>",
		Short: "Edit one field of a task",
		Args:  cobra.ExactArgs(4),
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
			parent, err := app.Mutations.Get(ctx, id)
			if err != nil {
				return err
			}
			taskID, err := resolveTaskID(parent, args[1])
			if err != nil {
				return err
			}
			field := domain.Field(strings.ToLower(args[2]))
			value, err := effortArg(app, field, args[3], unit)
			if err != nil {
				return err
			}

			i, err := app.Mutations.UpdateTask(ctx, actor, service.UpdateTaskRequest{
				InitiativeID: id,
				TaskID:       taskID,
				Field:        field,
				Value:        value,
			})
			if err != nil {
				return err
			}
			if i == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No change.")
				return nil
			}
			if ok, err := app.printJSON(cmd.OutOrStdout(), i); ok {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: task %s updated (initiative actual %sw, status %s)\n",
				i.Title, taskID, domain.FormatEffort(i.ActualEffort), i.Status)
			return nil
		},
	}

	addUnitFlag(cmd.Flags(), &unit, "Unit for effort values: weeks, days or hours")

	return cmd
}

func newTaskDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <initiative> <task>",
		Short: "Soft-delete a task",
		Args:  cobra.ExactArgs(2),
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
			parent, err := app.Mutations.Get(ctx, id)
			if err != nil {
				return err
			}
			taskID, err := resolveTaskID(parent, args[1])
			if err != nil {
				return err
			}
			i, err := app.Mutations.DeleteTask(ctx, actor, id, taskID)
			if err != nil {
				return err
			}
			if i == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Task already deleted.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s from %s\n", taskID, i.Title)
			return nil
		},
	}
}
