package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/placement/internal/metrics"
	"github.com/felixgeelhaar/placement/internal/tui"
	"github.com/felixgeelhaar/placement/internal/ux"
)

func newWatchCmd() *cobra.Command {
	var metricsAddr string

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the live dashboard",
		Long: `Open a full-screen dashboard with the notification list and unread badge.

The unread count is refreshed every poll interval while the session lasts.
Signing out from the dashboard (L) ends it.

Examples:
  placement watch
  placement watch --poll-interval 10s
  placement watch --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adapter := tui.NewAdapter()
			c, err := NewCommandContext(cmd, ux.NewRecorder(adapter.Toast))
			if err != nil {
				return err
			}
			return c.Finish(watch(c, adapter, metricsAddr))
		},
	}

	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while watching")
	watchCmd.Flags().Int("page-size", 0, "notifications per page (default 20)")
	watchCmd.Flags().Duration("poll-interval", 0, "unread count refresh interval (default 30s)")
	return watchCmd
}

func watch(c *CommandContext, adapter *tui.Adapter, metricsAddr string) error {
	if _, err := c.RequireSession(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Ctx)
	defer cancel()

	if metricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, metricsAddr, c.App.Registry); err != nil {
				c.App.Logger.WithError(err).Warn("metrics server stopped", "addr", metricsAddr)
			}
		}()
	}

	// The poller loads the first page once per session.
	c.App.StartPolling(ctx)

	model := tui.NewModel(ctx, c.App.Session, c.App.Notifications, c.Config.PageSize)
	return adapter.Run(ctx, c.App.Session, c.App.Notifications, model, tea.WithAltScreen())
}
