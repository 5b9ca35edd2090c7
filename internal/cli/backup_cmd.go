package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/portfolio/internal/backup"
	"github.com/alexanderramin/portfolio/internal/cli/formatter"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/spf13/cobra"
)

func newBackupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Daily snapshots to object storage",
	}
	cmd.AddCommand(newBackupRunCmd(app), newBackupShowCmd(app), newBackupScheduleCmd(app))
	return cmd
}

func requireBackup(app *App) error {
	if app.Backup == nil {
		return fmt.Errorf("backups are not configured (set backup.endpoint and backup.bucket)")
	}
	return nil
}

func printManifest(cmd *cobra.Command, app *App, m *backup.Manifest) error {
	if ok, err := app.printJSON(cmd.OutOrStdout(), m); ok {
		return err
	}
	t := formatter.Table{Headers: []string{"FILE", "SIZE", "MD5"}, Right: []int{1}}
	for _, f := range m.Files {
		t.Rows = append(t.Rows, []string{f.Path, fmt.Sprint(f.Size), formatter.Dim(f.MD5Hash)})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backup %s (%s) %s, %d bytes in %dms\n", m.Date, m.ID, m.Status, m.TotalSize, m.Duration)
	fmt.Fprint(out, t.Render())
	for _, e := range m.Errors {
		fmt.Fprintln(out, formatter.StyleRed.Render(e))
	}
	return nil
}

func newBackupRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Write today's backup unless it already exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBackup(app); err != nil {
				return err
			}
			m, created, err := app.Backup.Run(cmd.Context())
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Today's backup already exists."))
			}
			return printManifest(cmd, app, m)
		},
	}
}

func newBackupShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [date]",
		Short: "Show the manifest for a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBackup(app); err != nil {
				return err
			}
			date := app.now().UTC().Format(domain.DateLayout)
			if len(args) == 1 {
				date = args[0]
			}
			m, err := app.Backup.Manifest(cmd.Context(), date)
			if err != nil {
				return fmt.Errorf("backup %s: %w", date, err)
			}
			return printManifest(cmd, app, m)
		},
	}
}

func newBackupScheduleCmd(app *App) *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run backups on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBackup(app); err != nil {
				return err
			}
			sched, err := backup.NewScheduler(app.Backup, domain.CoalesceStr(spec, app.BackupSchedule), nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched.Start()
			fmt.Fprintf(cmd.OutOrStdout(), "Backups scheduled; next run %s\n", sched.Next().Format(time.RFC3339))
			<-ctx.Done()

			shutdown, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			sched.Stop(shutdown)
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "Cron expression (default "+backup.DefaultSchedule+")")
	return cmd
}
