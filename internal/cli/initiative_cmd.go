package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/portfolio/internal/cli/formatter"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/effort"
	"github.com/alexanderramin/portfolio/internal/importer"
	"github.com/alexanderramin/portfolio/internal/service"
	"github.com/spf13/cobra"
)

func newInitiativeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "initiative",
		Aliases: []string{"init", "i"},
		Short:   "Manage initiatives",
	}

	cmd.AddCommand(
		newInitiativeAddCmd(app),
		newInitiativeListCmd(app),
		newInitiativeShowCmd(app),
		newInitiativeSetCmd(app),
		newInitiativeDeleteCmd(app),
		newInitiativeRestoreCmd(app),
		newInitiativePurgeCmd(app),
		newInitiativeImportCmd(app),
	)

	return cmd
}

// toWeeks converts an effort figure typed in unit into weeks.
func toWeeks(conv effort.Converter, v float64, unit unitFlag) (float64, error) {
	if unit.unit == "" || unit.unit == effort.Weeks {
		return v, nil
	}
	return conv.Convert(v, unit.unit, effort.Weeks)
}

func newInitiativeAddCmd(app *App) *cobra.Command {
	var req service.CreateInitiativeRequest
	var unit unitFlag

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new initiative",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(ctx)
			if err != nil {
				return err
			}
			if req.EstimatedEffort, err = toWeeks(app.Converter, req.EstimatedEffort, unit); err != nil {
				return err
			}

			i, err := app.Mutations.CreateInitiative(ctx, actor, req)
			if err != nil {
				return err
			}
			if ok, err := app.printJSON(cmd.OutOrStdout(), i); ok {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created initiative %s [%s]\n", i.Title, i.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Title, "title", "", "Initiative title")
	f.StringVar(&req.OwnerID, "owner", "", "Owner user id (defaults to you)")
	f.StringVar(&req.SecondaryOwner, "secondary-owner", "", "Secondary owner")
	f.StringVar(&req.AssetClass, "asset-class", "", "Asset class")
	f.StringVar(&req.Pillar, "pillar", "", "Pillar")
	f.StringVar(&req.Responsibility, "responsibility", "", "Responsibility")
	f.StringVar(&req.Target, "target", "", "Target")
	f.StringVar(&req.Quarter, "quarter", "", "Quarter, e.g. \"Q3 2025\"")
	f.StringVar(&req.Priority, "priority", "", "P0, P1 or P2")
	f.StringVar(&req.WorkType, "work-type", "", "Planned or Unplanned")
	f.StringSliceVar(&req.UnplannedTags, "unplanned-tag", nil, "Unplanned tag (repeatable)")
	f.Float64Var(&req.EstimatedEffort, "estimate", 0, "Estimated effort")
	addUnitFlag(f, &unit, "Unit of --estimate: weeks, days or hours (default weeks)")
	f.StringVar(&req.ETA, "eta", "", "ETA (YYYY-MM-DD)")
	f.IntVar(&req.CompletionRate, "completion", 0, "Completion rate 0-100")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newInitiativeListCmd(app *App) *cobra.Command {
	var all bool
	var owner, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List initiatives",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.viewer(cmd.Context(), domain.PermTabAllTasks); err != nil {
				return err
			}
			items := app.Mutations.List(cmd.Context(), all)

			var wantStatus domain.Status
			if status != "" {
				s, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				wantStatus = s
			}
			filtered := items[:0:0]
			for _, i := range items {
				if owner != "" && i.OwnerID != owner {
					continue
				}
				if wantStatus != "" && i.Status != wantStatus {
					continue
				}
				filtered = append(filtered, i)
			}

			if ok, err := app.printJSON(cmd.OutOrStdout(), filtered); ok {
				return err
			}
			if len(filtered) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No initiatives found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatInitiativeList(filtered, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include deleted initiatives")
	cmd.Flags().StringVar(&owner, "owner", "", "Only this owner")
	cmd.Flags().StringVar(&status, "status", "", "Only this status")

	return cmd
}

func newInitiativeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <initiative>",
		Short: "Show one initiative with its tasks and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.viewer(ctx, domain.PermTabAllTasks); err != nil {
				return err
			}
			id, err := resolveInitiativeID(ctx, app, args[0])
			if err != nil {
				return err
			}
			i, err := app.Mutations.Get(ctx, id)
			if err != nil {
				return err
			}
			if ok, err := app.printJSON(cmd.OutOrStdout(), i); ok {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Header(i.Title))
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatInitiative(i, app.Converter, app.now()))
			return nil
		},
	}
}

func newInitiativeSetCmd(app *App) *cobra.Command {
	var unit unitFlag
	var tradeTarget, tradeField, tradeValue string
	var forceAudit bool

	cmd := &cobra.Command{
		Use:   "set <initiative> <field> <value>",
		Short: "Edit one field of an initiative",
		Long: `Edit one field of an initiative.

With --trade-off-target, a compensating change is applied to a second
initiative and recorded against the first.`,
		Args: cobra.ExactArgs(3),
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

			field := domain.Field(strings.ToLower(args[1]))
			value, err := effortArg(app, field, args[2], unit)
			if err != nil {
				return err
			}
			req := service.InlineUpdateRequest{InitiativeID: id, Field: field, Value: value, Audit: forceAudit}

			if tradeTarget != "" {
				targetID, err := resolveInitiativeID(ctx, app, tradeTarget)
				if err != nil {
					return err
				}
				tf := domain.Field(strings.ToLower(domain.CoalesceStr(tradeField, string(field))))
				tv, err := effortArg(app, tf, tradeValue, unit)
				if err != nil {
					return err
				}
				req.TradeOff = &service.TradeOffAction{TargetID: targetID, Field: tf, Value: tv}
			}

			i, err := app.Mutations.InlineUpdateInitiative(ctx, actor, req)
			if err != nil {
				return err
			}
			if i == nil {
				return fmt.Errorf("initiative not found: %q", args[0])
			}
			if ok, err := app.printJSON(cmd.OutOrStdout(), i); ok {
				return err
			}
			v, _ := i.FieldValue(field)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s = %s (status %s)\n", i.Title, field, v, i.Status)
			return nil
		},
	}

	addUnitFlag(cmd.Flags(), &unit, "Unit for effort values: weeks, days or hours")
	cmd.Flags().BoolVar(&forceAudit, "audit", false, "Record a change even for unaudited fields")
	cmd.Flags().StringVar(&tradeTarget, "trade-off-target", "", "Initiative receiving the compensating change")
	cmd.Flags().StringVar(&tradeField, "trade-off-field", "", "Field changed on the target (defaults to <field>)")
	cmd.Flags().StringVar(&tradeValue, "trade-off-value", "", "New value on the target")

	return cmd
}

// effortArg converts effort values typed with --unit into weeks and passes
// every other value through untouched.
func effortArg(app *App, field domain.Field, raw string, unit unitFlag) (string, error) {
	if unit.unit == "" || !field.IsEffort() {
		return raw, nil
	}
	var v float64
	if _, err := fmt.Sscanf(raw, "%g", &v); err != nil {
		return "", fmt.Errorf("%s: %q is not a number", field, raw)
	}
	weeks, err := toWeeks(app.Converter, v, unit)
	if err != nil {
		return "", err
	}
	return domain.FormatEffort(weeks), nil
}

func newInitiativeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <initiative>",
		Short: "Soft-delete an initiative",
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
			i, err := app.Mutations.DeleteInitiative(ctx, actor, id)
			if err != nil {
				return err
			}
			if i == nil {
				return fmt.Errorf("initiative not found: %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", i.Title)
			return nil
		},
	}
}

func newInitiativeRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <initiative>",
		Short: "Restore a soft-deleted initiative",
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
			i, err := app.Mutations.RestoreInitiative(ctx, actor, id)
			if err != nil {
				return err
			}
			if i == nil {
				return fmt.Errorf("initiative not found: %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s as %s\n", i.Title, i.Status)
			return nil
		},
	}
}

func newInitiativePurgeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "purge [initiative...]",
		Short: "Permanently remove soft-deleted initiatives (all when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(ctx)
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(args))
			for _, a := range args {
				id, err := resolveInitiativeID(ctx, app, a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			n, err := app.Mutations.PurgeInitiatives(ctx, actor, ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d initiative(s)\n", n)
			return nil
		},
	}
}

func newInitiativeImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Create initiatives from a JSON import file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(ctx)
			if err != nil {
				return err
			}
			file, err := importer.LoadImportFile(args[0])
			if err != nil {
				return err
			}
			res, err := app.Mutations.Import(ctx, actor, importer.Convert(file, app.Converter))
			if err != nil {
				return err
			}
			if ok, err := app.printJSON(cmd.OutOrStdout(), res); ok {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d initiative(s), skipped %d\n", len(res.Created), res.Skipped)
			for _, e := range res.Errors {
				fmt.Fprintf(out, "  %s\n", formatter.StyleYellow.Render(e))
			}
			return nil
		},
	}
}

func newSweepCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Flag overdue initiatives as at risk and notify their owners",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.Mutations.SweepOverdue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d initiative(s) became at risk\n", n)
			return nil
		},
	}
}
