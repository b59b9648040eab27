package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/errors"
)

func newJobsCmd() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Browse and apply to job postings",
	}
	jobsCmd.AddCommand(newJobsListCmd(), newJobsApplyCmd())
	return jobsCmd
}

func newJobsListCmd() *cobra.Command {
	var q domain.JobQuery
	var jobType string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List job postings",
		Long: `List job postings visible to the signed-in user.

Examples:
  placement jobs list
  placement jobs list --search backend --type internship
  placement jobs list --page 2 --limit 10 -o yaml`,
		RunE: run(func(c *CommandContext, _ []string) error {
			if _, err := c.RequirePage("/jobs"); err != nil {
				return err
			}
			if jobType != "" {
				switch t := domain.JobType(jobType); t {
				case domain.JobFullTime, domain.JobInternship, domain.JobPartTime:
					q.Type = t
				default:
					return errors.NewValidationError(fmt.Sprintf("type must be one of: %s, %s, %s",
						domain.JobFullTime, domain.JobInternship, domain.JobPartTime))
				}
			}

			resp, err := c.App.Client.ListJobs(c.Ctx, q)
			if err != nil {
				return err
			}
			return c.Print(jobTable{Jobs: resp.Jobs, Total: resp.Total, Page: resp.Page})
		}),
	}

	flags := listCmd.Flags()
	flags.StringVar(&q.Search, "search", "", "match title or company")
	flags.StringVar(&jobType, "type", "", "full-time, internship or part-time")
	flags.IntVar(&q.Page, "page", 1, "page number")
	flags.IntVar(&q.Limit, "limit", 20, "postings per page")
	return listCmd
}

// applyResult is printed after a successful application.
type applyResult struct {
	Application domain.Application `json:"application" yaml:"application"`
}

func (r applyResult) String() string {
	return fmt.Sprintf("Applied to job %s (application %s, status %s)",
		r.Application.JobID, r.Application.ID, r.Application.Status)
}

func newJobsApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Apply to a job (students only)",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(c *CommandContext, args []string) error {
			if _, err := c.RequirePage("/applications"); err != nil {
				return err
			}
			app, err := c.App.Client.ApplyToJob(c.Ctx, args[0])
			if err != nil {
				return err
			}
			if app.JobID == "" {
				app.JobID = args[0]
			}
			return c.Print(applyResult{Application: *app})
		}),
	}
}
