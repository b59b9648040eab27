package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/forms"
)

// PromptLogin asks for whatever the form is missing.
func PromptLogin(f forms.LoginForm) (forms.LoginForm, error) {
	var fields []huh.Field
	if f.Email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("you@university.edu").
			Validate(required("email")).
			Value(&f.Email))
	}
	if f.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Validate(required("password")).
			Value(&f.Password))
	}
	if len(fields) == 0 {
		return f, nil
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return f, fmt.Errorf("prompt failed: %w", err)
	}
	return f, nil
}

// PromptRegister walks through registration. The organization choice is
// limited to the organizations the selected role may join.
func PromptRegister(f forms.RegisterForm, orgs []domain.Organization) (forms.RegisterForm, error) {
	if f.Role == "" {
		f.Role = string(domain.RoleStudent)
	}

	account := huh.NewGroup(
		huh.NewSelect[string]().
			Title("I am a").
			Options(roleOptions()...).
			Value(&f.Role),
		huh.NewInput().Title("First name").Validate(required("first name")).Value(&f.FirstName),
		huh.NewInput().Title("Last name").Validate(required("last name")).Value(&f.LastName),
		huh.NewInput().Title("Email").Validate(required("email")).Value(&f.Email),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Validate(minLength(6)).Value(&f.Password),
		huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&f.ConfirmPassword),
	)

	org := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Organization").
			OptionsFunc(func() []huh.Option[string] {
				return organizationOptions(domain.Role(f.Role), orgs)
			}, &f.Role).
			Value(&f.OrganizationID),
	).WithHideFunc(func() bool { return domain.Role(f.Role) == domain.RoleAdmin })

	profile := huh.NewGroup(
		huh.NewInput().Title("Phone (optional)").Value(&f.Phone),
		huh.NewInput().Title("Department (optional)").Value(&f.Department),
	).WithHideFunc(func() bool { return domain.Role(f.Role) != domain.RoleStudent })

	if err := huh.NewForm(account, org, profile).Run(); err != nil {
		return f, fmt.Errorf("prompt failed: %w", err)
	}
	return f, nil
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Value(&confirmed)

	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

func roleOptions() []huh.Option[string] {
	roles := domain.AllRoles()
	opts := make([]huh.Option[string], len(roles))
	for i, r := range roles {
		opts[i] = huh.NewOption(r.Label(), string(r))
	}
	return opts
}

func organizationOptions(role domain.Role, orgs []domain.Organization) []huh.Option[string] {
	allowed := forms.OrganizationsFor(role, orgs)
	opts := make([]huh.Option[string], len(allowed))
	for i, o := range allowed {
		opts[i] = huh.NewOption(o.Name, o.ID)
	}
	return opts
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func minLength(n int) func(string) error {
	return func(s string) error {
		if len(s) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return IsInteractive()
}
