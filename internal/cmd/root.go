package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/placement/internal/config"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "placement",
		Short: "Campus placement portal client",
		Long: `placement is a terminal client for the campus placement portal.

Students browse and apply to jobs, recruiters post jobs and review applicants,
training & placement officers approve accounts and run drives, and admins
oversee everything. The session is kept in ~/.placement/session.json and
restored on every command.

Configuration is read from ~/.placement/config.yaml, PLACEMENT_* environment
variables and the flags below, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.placement/config.yaml)")
	flags.String("api-url", config.DefaultAPIURL, "portal API base URL")
	flags.String("token-file", "", "where the session tokens are kept (default $HOME/.placement/session.json)")
	flags.Duration("timeout", config.DefaultRequestTimeout, "per-request timeout")
	flags.StringP("output", "o", "text", "output format: text, json or yaml")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("ephemeral", false, "keep the session in memory only")

	root.AddCommand(
		newAuthCmd(),
		newNotificationsCmd(),
		newOrgsCmd(),
		newJobsCmd(),
		newApprovalsCmd(),
		newRouteCmd(),
		newWatchCmd(),
		newDoctorCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
