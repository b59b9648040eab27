package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/placement/internal/ux"
	"github.com/felixgeelhaar/placement/internal/version"
)

func newVersionCmd() *cobra.Command {
	var short bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo()
			if short {
				cmd.Println(info.Short())
				return nil
			}

			output, _ := cmd.Flags().GetString("output")
			formatter, err := ux.NewFormatter(output, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
			if err != nil {
				return err
			}
			return formatter.Format(info)
		},
	}
	versionCmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return versionCmd
}
