package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/tui"
)

const approvalsPath = "/approvals"

func newApprovalsCmd() *cobra.Command {
	approvalsCmd := &cobra.Command{
		Use:   "approvals",
		Short: "Review accounts awaiting approval (TPOs and admins)",
	}
	approvalsCmd.AddCommand(newApprovalsListCmd(), newApproveCmd())
	return approvalsCmd
}

func newApprovalsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending accounts",
		RunE: run(func(c *CommandContext, _ []string) error {
			if _, err := c.RequirePage(approvalsPath); err != nil {
				return err
			}
			users, err := c.App.Client.ListPendingUsers(c.Ctx)
			if err != nil {
				return err
			}
			return c.Print(pendingTable(users))
		}),
	}
}

func newApproveCmd() *cobra.Command {
	var yes bool

	approveCmd := &cobra.Command{
		Use:   "approve <user-id>",
		Short: "Approve a pending account",
		Long: `Approve a pending recruiter or TPO account so its owner can sign in.

Examples:
  placement approvals approve u-42
  placement approvals approve u-42 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(c *CommandContext, args []string) error {
			if _, err := c.RequirePage(approvalsPath); err != nil {
				return err
			}

			id := args[0]
			if !yes && tui.ShouldPrompt() {
				ok, err := tui.PromptForConfirmation(fmt.Sprintf("Approve account %s?", id), true)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New(errors.ErrCodeValidation, "approval cancelled")
				}
			}

			if err := c.App.Client.ApproveUser(c.Ctx, id); err != nil {
				return err
			}
			if c.Text() {
				fmt.Fprintf(c.Out, "Approved %s\n", id)
				return nil
			}
			return c.Print(map[string]string{"approved": id})
		}),
	}
	approveCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return approveCmd
}
