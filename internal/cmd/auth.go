package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/forms"
	"github.com/felixgeelhaar/placement/internal/guard"
	"github.com/felixgeelhaar/placement/internal/tokenstore"
	"github.com/felixgeelhaar/placement/internal/tui"
)

func newAuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, register and manage the session",
		Long: `Manage the portal session.

The session tokens are stored in the token file after a successful login or
registration and restored by every other command.`,
	}
	authCmd.AddCommand(newLoginCmd(), newRegisterCmd(), newLogoutCmd(), newStatusCmd())
	return authCmd
}

// statusResult describes the signed-in session.
type statusResult struct {
	SignedIn  bool         `json:"signedIn" yaml:"signed_in"`
	User      *domain.User `json:"user,omitempty" yaml:"user,omitempty"`
	Home      string       `json:"home,omitempty" yaml:"home,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty" yaml:"expires_at,omitempty"`
	Pending   string       `json:"pending,omitempty" yaml:"pending,omitempty"`
}

func (r statusResult) String() string {
	if !r.SignedIn {
		if r.Pending != "" {
			return r.Pending
		}
		return "Not signed in."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Signed in as %s <%s>\n", r.User.FullName(), r.User.Email)
	fmt.Fprintf(&b, "Role:  %s\n", r.User.Role.Label())
	if r.Home != "" {
		fmt.Fprintf(&b, "Home:  %s\n", r.Home)
	}
	if r.ExpiresAt != nil {
		fmt.Fprintf(&b, "Token: expires %s\n", r.ExpiresAt.Local().Format(time.RFC1123))
	}
	return strings.TrimRight(b.String(), "\n")
}

func newStatus(user *domain.User, tokens *domain.Tokens) statusResult {
	if user == nil {
		return statusResult{}
	}
	res := statusResult{SignedIn: true, User: user}
	if home, ok := guard.HomeFor(user.Role); ok {
		res.Home = home
	}
	if tokens != nil {
		if claims, ok := tokenstore.Inspect(tokens.AccessToken); ok && claims.HasExpiry() {
			exp := claims.ExpiresAt
			res.ExpiresAt = &exp
		}
	}
	return res
}

func newLoginCmd() *cobra.Command {
	var form forms.LoginForm

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the portal",
		Long: `Sign in with email and password.

Missing values are prompted for when running in a terminal.

Examples:
  placement auth login
  placement auth login --email asha@university.edu
  PLACEMENT_PASSWORD=secret placement auth login --email asha@university.edu`,
		RunE: run(func(c *CommandContext, _ []string) error {
			if form.Password == "" {
				form.Password = lookupPassword()
			}
			if (form.Email == "" || form.Password == "") && tui.ShouldPrompt() {
				var err error
				if form, err = tui.PromptLogin(form); err != nil {
					return err
				}
			}
			if err := form.Validate(); err != nil {
				return asValidation(err)
			}

			sess, err := c.App.Session.Login(c.Ctx, strings.TrimSpace(form.Email), form.Password)
			if err != nil {
				return err
			}
			if c.Text() {
				return nil
			}
			return c.Print(newStatus(&sess.User, &sess.Tokens))
		}),
	}

	loginCmd.Flags().StringVar(&form.Email, "email", "", "account email")
	loginCmd.Flags().StringVar(&form.Password, "password", "", "account password (prefer PLACEMENT_PASSWORD or the prompt)")
	return loginCmd
}

func newRegisterCmd() *cobra.Command {
	var form forms.RegisterForm

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create a portal account",
		Long: `Create a student, recruiter, TPO or admin account.

Students and TPOs join a university, recruiters join a company. Recruiter and
TPO accounts wait for approval before they can sign in; students are signed in
straight away.

Examples:
  placement auth register
  placement auth register --role student --first-name Asha --last-name Rao \
    --email asha@university.edu --organization org-1`,
		RunE: run(func(c *CommandContext, _ []string) error {
			orgs, err := c.App.Client.ListOrganizations(c.Ctx)
			if err != nil {
				return err
			}

			if form.Password == "" {
				form.Password = lookupPassword()
			}
			if form.ConfirmPassword == "" {
				form.ConfirmPassword = form.Password
			}
			if tui.ShouldPrompt() && registerIncomplete(form) {
				if form, err = tui.PromptRegister(form, orgs); err != nil {
					return err
				}
			}

			if err := form.Validate(); err != nil {
				return asValidation(err)
			}
			if err := form.ValidateOrganization(orgs); err != nil {
				return asValidation(err)
			}

			res, err := c.App.Session.Register(c.Ctx, form.Request())
			if err != nil {
				return err
			}
			if res.Pending {
				return c.Print(statusResult{Pending: res.Message})
			}
			if c.Text() {
				return nil
			}
			return c.Print(newStatus(&res.Session.User, &res.Session.Tokens))
		}),
	}

	flags := registerCmd.Flags()
	flags.StringVar(&form.Role, "role", "", "student, recruiter, tpo or admin")
	flags.StringVar(&form.FirstName, "first-name", "", "first name")
	flags.StringVar(&form.LastName, "last-name", "", "last name")
	flags.StringVar(&form.Email, "email", "", "account email")
	flags.StringVar(&form.Password, "password", "", "account password (prefer PLACEMENT_PASSWORD or the prompt)")
	flags.StringVar(&form.OrganizationID, "organization", "", "organization ID (see 'placement orgs list')")
	flags.StringVar(&form.Phone, "phone", "", "phone number")
	flags.StringVar(&form.Department, "department", "", "department (students)")
	flags.IntVar(&form.GraduationYear, "graduation-year", 0, "graduation year (students)")
	flags.StringVar(&form.Designation, "designation", "", "designation (recruiters and TPOs)")
	return registerCmd
}

func registerIncomplete(f forms.RegisterForm) bool {
	if f.Role == "" || f.FirstName == "" || f.LastName == "" || f.Email == "" || f.Password == "" {
		return true
	}
	return f.OrganizationID == "" && domain.Role(f.Role) != domain.RoleAdmin
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Long: `Sign out of the portal.

The server is told about the logout when possible, but the local session is
removed either way.`,
		RunE: run(func(c *CommandContext, _ []string) error {
			if err := c.Restore(); err != nil {
				c.App.Logger.WithError(err).Debug("no session to restore before logout")
			}
			return c.App.Session.Logout(c.Ctx)
		}),
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in",
		RunE: run(func(c *CommandContext, _ []string) error {
			if err := c.Restore(); err != nil {
				return err
			}
			st := c.App.Session.State()
			if !st.IsAuthenticated {
				return c.Print(statusResult{})
			}
			return c.Print(newStatus(st.User, st.Tokens))
		}),
	}
}

func asValidation(err error) error {
	var fe forms.FieldErrors
	if stderrors.As(err, &fe) {
		return fe.AsPortalError()
	}
	return err
}

// lookupPassword reads PLACEMENT_PASSWORD so scripts need not pass secrets as flags.
func lookupPassword() string {
	return os.Getenv("PLACEMENT_PASSWORD")
}
