package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/errors"
)

func newOrgsCmd() *cobra.Command {
	orgsCmd := &cobra.Command{
		Use:     "orgs",
		Aliases: []string{"organizations"},
		Short:   "Browse registered universities and companies",
	}

	var orgType string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		Long: `List the organizations accounts can register under. No sign-in is needed.

Examples:
  placement orgs list
  placement orgs list --type company`,
		RunE: run(func(c *CommandContext, _ []string) error {
			var want domain.OrganizationType
			if orgType != "" {
				want = domain.OrganizationType(orgType)
				if err := want.Validate(); err != nil {
					return errors.NewValidationError(err.Error())
				}
			}

			orgs, err := c.App.Client.ListOrganizations(c.Ctx)
			if err != nil {
				return err
			}

			out := make(organizationTable, 0, len(orgs))
			for _, org := range orgs {
				if want == "" || org.Type == want {
					out = append(out, org)
				}
			}
			return c.Print(out)
		}),
	}
	listCmd.Flags().StringVar(&orgType, "type", "", "only university or company")

	orgsCmd.AddCommand(listCmd)
	return orgsCmd
}
