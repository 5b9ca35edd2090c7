package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/alexanderramin/portfolio/internal/capacity"
	"github.com/alexanderramin/portfolio/internal/cli/formatter"
	"github.com/alexanderramin/portfolio/internal/config"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/spf13/cobra"
)

func parseRoleArg(s string) (domain.Role, error) {
	role, ok := domain.ParseRole(s)
	if !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

func newPermissionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "permission",
		Aliases: []string{"perm"},
		Short:   "View and edit the role permission matrix",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved permission matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			rp := app.Config.Current().RolePermissions
			if ok, err := app.printJSON(cmd.OutOrStdout(), rp); ok {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPermissionMatrix(rp))
			return nil
		},
	}

	cycle := &cobra.Command{
		Use:   "cycle <role> <key>",
		Short: "Advance one cell to its next value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(ctx)
			if err != nil {
				return err
			}
			role, err := parseRoleArg(args[0])
			if err != nil {
				return err
			}
			v, err := app.Config.CyclePermission(ctx, actor, role, domain.PermissionKey(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s.%s = %s\n", role, args[1], v)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <role> <key> <value>",
		Short: "Set one cell of the matrix",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(ctx)
			if err != nil {
				return err
			}
			role, err := parseRoleArg(args[0])
			if err != nil {
				return err
			}
			key, v := domain.PermissionKey(args[1]), domain.PermissionValue(args[2])
			if err := app.Config.SetPermission(ctx, actor, role, key, v); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s.%s = %s\n", role, key, v)
			return nil
		},
	}

	cmd.AddCommand(show, cycle, set)
	return cmd
}

func newCapacityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "capacity",
		Aliases: []string{"cap"},
		Short:   "Team capacity and utilization",
	}
	cmd.AddCommand(newCapacityReportCmd(app), newCapacitySetCmd(app), newCapacityBAUCmd(app))
	return cmd
}

// knownOwners is every owner with configured capacity or a live initiative.
func knownOwners(cfg domain.AppConfig, items []*domain.Initiative) []string {
	seen := map[string]bool{}
	for id := range cfg.TeamCapacities {
		seen[id] = true
	}
	for _, i := range items {
		if i.OwnerID != "" {
			seen[i.OwnerID] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func newCapacityReportCmd(app *App) *cobra.Command {
	var owners []string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Utilization, efficiency and buffer health per owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.viewer(cmd.Context(), domain.PermTabWorkplanHealth); err != nil {
				return err
			}
			cfg := app.Config.Current()
			items := app.Mutations.List(cmd.Context(), false)
			if len(owners) == 0 {
				owners = knownOwners(cfg, items)
			}
			rep := capacity.TeamReport(owners, items, cfg)
			if ok, err := app.printJSON(cmd.OutOrStdout(), rep); ok {
				return err
			}
			if len(rep.Rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No owners to report on.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCapacityReport(rep))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&owners, "owner", nil, "Owner ids to include (default: all known)")
	return cmd
}

func newCapacitySetCmd(app *App) *cobra.Command {
	var weekly, adjust, buffer float64
	var unit unitFlag

	cmd := &cobra.Command{
		Use:   "set <owner>",
		Short: "Set capacity, adjustment or buffer for an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(ctx)
			if err != nil {
				return err
			}
			owner := args[0]
			flags := cmd.Flags()
			if !flags.Changed("capacity") && !flags.Changed("adjust") && !flags.Changed("buffer") {
				return fmt.Errorf("nothing to set: pass --capacity, --adjust or --buffer")
			}

			if flags.Changed("capacity") {
				v, err := toWeeks(app.Converter, weekly, unit)
				if err != nil {
					return err
				}
				if err := app.Config.SetCapacity(ctx, actor, owner, v); err != nil {
					return err
				}
			}
			if flags.Changed("adjust") {
				v, err := toWeeks(app.Converter, adjust, unit)
				if err != nil {
					return err
				}
				if err := app.Config.SetAdjustment(ctx, actor, owner, v); err != nil {
					return err
				}
			}
			if flags.Changed("buffer") {
				v, err := toWeeks(app.Converter, buffer, unit)
				if err != nil {
					return err
				}
				if err := app.Config.SetBuffer(ctx, actor, owner, v); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s effective capacity: %sw\n", owner,
				domain.FormatEffort(capacity.EffectiveCapacity(owner, app.Config.Current())))
			return nil
		},
	}

	cmd.Flags().Float64Var(&weekly, "capacity", 0, "Base capacity")
	cmd.Flags().Float64Var(&adjust, "adjust", 0, "Signed adjustment; positive deducts")
	cmd.Flags().Float64Var(&buffer, "buffer", 0, "Reserved buffer")
	addUnitFlag(cmd.Flags(), &unit, "Unit of the values: weeks, days or hours")
	return cmd
}

func newCapacityBAUCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bau <percent>",
		Short: "Set the suggested BAU buffer percentage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(ctx)
			if err != nil {
				return err
			}
			pct, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid percentage %q: %w", args[0], err)
			}
			if err := app.Config.SetBAUBuffer(ctx, actor, pct); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "BAU buffer suggestion: %g%%\n", pct)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Export or replace the admin configuration",
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Print the configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.MarshalAppConfig(app.Config.Current())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	imp := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Replace the configuration from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(ctx)
			if err != nil {
				return err
			}
			cfg, warnings, err := config.LoadAppConfig(args[0])
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleYellow.Render("warning: "+w))
			}
			if err := app.Config.Replace(ctx, actor, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration replaced from %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(export, imp)
	return cmd
}

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd(app), newUserListCmd(app), newUserUpdateCmd(app), newUserDeleteCmd(app))
	return cmd
}

func newUserAddCmd(app *App) *cobra.Command {
	var u domain.User
	var role string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(ctx)
			if err != nil {
				return err
			}
			u.Role = domain.Role(role)
			created, err := app.Users.Create(ctx, actor, &u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s <%s> [%s] %s\n", created.Name, created.Email, created.ID, created.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&u.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&u.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&role, "role", "", "Role (default team_lead)")
	cmd.Flags().StringVar(&u.Team, "team", "", "Team")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUserListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Users.List(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := app.printJSON(cmd.OutOrStdout(), users); ok {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUsers(users))
			return nil
		},
	}
}

func newUserUpdateCmd(app *App) *cobra.Command {
	var name, role, team string

	cmd := &cobra.Command{
		Use:   "update <user>",
		Short: "Change a user's name, role or team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(ctx)
			if err != nil {
				return err
			}
			u, err := app.Users.Resolve(ctx, args[0])
			if err != nil {
				return fmt.Errorf("user %q: %w", args[0], err)
			}
			if cmd.Flags().Changed("name") {
				u.Name = name
			}
			if cmd.Flags().Changed("team") {
				u.Team = team
			}
			if cmd.Flags().Changed("role") {
				r, err := parseRoleArg(role)
				if err != nil {
					return err
				}
				u.Role = r
			}
			if err := app.Users.Update(ctx, actor, u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", "", "Role")
	cmd.Flags().StringVar(&team, "team", "", "Team")
	return cmd
}

func newUserDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.actor(ctx)
			if err != nil {
				return err
			}
			id := args[0]
			if u, err := app.Users.Resolve(ctx, args[0]); err == nil {
				id = u.ID
			}
			if err := app.Users.Delete(ctx, actor, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
			return nil
		},
	}
}
