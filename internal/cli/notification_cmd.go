package cli

import (
	"fmt"

	"github.com/alexanderramin/portfolio/internal/cli/formatter"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/spf13/cobra"
)

func newNotificationCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notify", "n"},
		Short:   "Read notifications",
	}
	cmd.AddCommand(newNotificationListCmd(app), newNotificationReadCmd(app), newNotificationPendingCmd(app))
	return cmd
}

func newNotificationListCmd(app *App) *cobra.Command {
	var user string
	var unread, fromOutbox bool
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications for a user (default: you)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID := user
			if userID == "" {
				actor, err := app.actor(ctx)
				if err != nil {
					return err
				}
				userID = actor.UserID
			}
			if userID == "" {
				return fmt.Errorf("--user is required when acting as root")
			}

			var notes []domain.Notification
			var err error
			if fromOutbox {
				if app.Outbox == nil {
					return fmt.Errorf("notification outbox is not configured")
				}
				notes, err = app.Outbox.Recent(ctx, userID, limit)
			} else {
				notes, err = app.Notifications.ListForUser(ctx, userID, unread)
			}
			if err != nil {
				return err
			}

			if ok, err := app.printJSON(cmd.OutOrStdout(), notes); ok {
				return err
			}
			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notifications.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNotifications(notes))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User id")
	cmd.Flags().BoolVar(&unread, "unread", false, "Only unread notifications")
	cmd.Flags().BoolVar(&fromOutbox, "outbox", false, "Read the recent list from the delivery outbox")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries read from the outbox")
	return cmd
}

func newNotificationReadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Notifications.MarkRead(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("notification %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as read\n", args[0])
			return nil
		},
	}
}

func newNotificationPendingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Count notifications waiting in the delivery outbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Outbox == nil {
				return fmt.Errorf("notification outbox is not configured")
			}
			n, err := app.Outbox.Pending(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d pending\n", n)
			return nil
		},
	}
}
