package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/placement/internal/notification"
)

func newNotificationsCmd() *cobra.Command {
	notificationsCmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif", "n"},
		Short:   "Read and manage in-app notifications",
	}
	notificationsCmd.AddCommand(
		newNotificationsListCmd(),
		newNotificationsUnreadCmd(),
		newNotificationsReadCmd(),
		newNotificationsReadAllCmd(),
	)
	return notificationsCmd
}

func newNotificationsListCmd() *cobra.Command {
	var page, limit int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Long: `List notifications, newest first.

Pages after the first are appended to the earlier pages, so --page 3 shows
the first three pages together.

Examples:
  placement notifications list
  placement notifications list --page 2 --limit 50 -o json`,
		RunE: run(func(c *CommandContext, _ []string) error {
			if _, err := c.RequireSession(); err != nil {
				return err
			}
			if page < 1 {
				page = 1
			}
			for p := 1; p <= page; p++ {
				if err := c.App.Notifications.FetchNotifications(c.Ctx, p, limit); err != nil {
					return err
				}
			}

			st := c.App.Notifications.State()
			return c.Print(notificationTable{
				Notifications: st.Notifications,
				UnreadCount:   st.UnreadCount,
				Page:          page,
				now:           time.Now(),
			})
		}),
	}

	listCmd.Flags().IntVar(&page, "page", 1, "last page to load")
	listCmd.Flags().IntVar(&limit, "limit", notification.DefaultPageSize, "notifications per page")
	return listCmd
}

func newNotificationsUnreadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unread",
		Short: "Print the unread notification count",
		RunE: run(func(c *CommandContext, _ []string) error {
			if _, err := c.RequireSession(); err != nil {
				return err
			}
			count, err := c.App.Notifications.FetchUnreadCount(c.Ctx)
			if err != nil {
				return err
			}
			return c.Print(unreadResult{UnreadCount: count})
		}),
	}
}

func newNotificationsReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark one notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(c *CommandContext, args []string) error {
			if _, err := c.RequireSession(); err != nil {
				return err
			}
			if err := c.App.Notifications.MarkAsRead(c.Ctx, args[0]); err != nil {
				return err
			}
			count, err := c.App.Notifications.FetchUnreadCount(c.Ctx)
			if err != nil {
				return err
			}
			return c.Print(unreadResult{UnreadCount: count})
		}),
	}
}

func newNotificationsReadAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		RunE: run(func(c *CommandContext, _ []string) error {
			if _, err := c.RequireSession(); err != nil {
				return err
			}
			return c.App.Notifications.MarkAllAsRead(c.Ctx)
		}),
	}
}
