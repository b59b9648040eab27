package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/guard"
)

const guestRole = "guest"

func newRouteCmd() *cobra.Command {
	routeCmd := &cobra.Command{
		Use:   "route",
		Short: "Inspect the portal's route guard",
	}
	routeCmd.AddCommand(newRouteCheckCmd(), newRouteListCmd())
	return routeCmd
}

// routeDecision is the guard's answer for one path.
type routeDecision struct {
	Path    string `json:"path" yaml:"path"`
	As      string `json:"as" yaml:"as"`
	Page    string `json:"page" yaml:"page"`
	Outcome string `json:"outcome" yaml:"outcome"`
	Target  string `json:"target,omitempty" yaml:"target,omitempty"`
}

func (d routeDecision) String() string {
	if d.Target == "" {
		return fmt.Sprintf("%s (%s): %s renders %s", d.Path, d.As, d.Outcome, d.Page)
	}
	return fmt.Sprintf("%s (%s): %s -> %s", d.Path, d.As, d.Outcome, d.Target)
}

func newRouteCheckCmd() *cobra.Command {
	var as string

	checkCmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Show what the guard does with a path",
		Long: `Show whether a path renders or redirects.

By default the stored session is used. --as evaluates the path for a role
instead; use --as guest for a signed-out visitor.

Examples:
  placement route check /dashboard
  placement route check /approvals --as recruiter
  placement route check /jobs/42 --as guest`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(c *CommandContext, args []string) error {
			view, label, err := routeView(c, as)
			if err != nil {
				return err
			}

			path := args[0]
			res, ok := guard.Resolve(path, view)
			if !ok {
				return errors.New(errors.ErrCodeValidation, "no route matches "+path).
					WithSuggestion("Run 'placement route list' to see every route")
			}
			return c.Print(routeDecision{
				Path:    path,
				As:      label,
				Page:    res.Route.Page,
				Outcome: res.Outcome.String(),
				Target:  res.Target,
			})
		}),
	}
	checkCmd.Flags().StringVar(&as, "as", "", "evaluate as this role (student, recruiter, tpo, admin or guest)")
	return checkCmd
}

func routeView(c *CommandContext, as string) (guard.View, string, error) {
	switch as {
	case "":
		if err := c.Restore(); err != nil {
			c.App.Logger.WithError(err).Debug("evaluating route as guest")
		}
		st := c.App.Session.State()
		view := guard.ViewOf(st.IsAuthenticated, st.User)
		if !view.IsAuthenticated {
			return view, guestRole, nil
		}
		return view, string(view.Role), nil
	case guestRole:
		return guard.View{}, guestRole, nil
	default:
		role, err := domain.ParseRole(as)
		if err != nil {
			return guard.View{}, "", errors.NewValidationError(err.Error())
		}
		return guard.View{IsAuthenticated: true, Role: role}, string(role), nil
	}
}

func newRouteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every route and who may open it",
		RunE: run(func(c *CommandContext, _ []string) error {
			return c.Print(newRouteTable(guard.Routes))
		}),
	}
}
