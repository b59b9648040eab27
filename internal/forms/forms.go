// Package forms validates login and registration input before it reaches the API.
package forms

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/platform"
)

// FieldErrors maps a field name to its first failing rule.
type FieldErrors map[string]string

// Error joins the field errors in field order.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + " " + fe[f]
	}
	return strings.Join(parts, "; ")
}

// AsPortalError converts fe into a coded validation error.
func (fe FieldErrors) AsPortalError() *errors.PortalError {
	return errors.NewValidationError(fe.Error())
}

// Validator wraps go-playground/validator with messages for form fields.
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates a Validator that reports fields by their json name.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{validator: v}
}

var std = NewValidator()

// Validate checks s against its validate tags. It returns FieldErrors or nil.
func (v *Validator) Validate(s any) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(errors.ErrCodeValidation, "validation failed", err)
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_unless":
		return "is required for this role"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "eqfield":
		return "does not match"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "numeric":
		return "must contain digits only"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate returns FieldErrors or nil.
func (f LoginForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return std.Validate(f)
}

// RegisterForm is the sign-up form. Profile fields are optional and depend on role.
type RegisterForm struct {
	FirstName       string `json:"firstName" validate:"required,max=50"`
	LastName        string `json:"lastName" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=student recruiter tpo admin"`
	OrganizationID  string `json:"organizationId" validate:"required_unless=Role admin"`

	Phone          string `json:"phone" validate:"omitempty,numeric,min=7,max=15"`
	Department     string `json:"department" validate:"omitempty,max=100"`
	GraduationYear int    `json:"graduationYear" validate:"omitempty,min=1950,max=2100"`
	Designation    string `json:"designation" validate:"omitempty,max=100"`
}

// Validate returns FieldErrors or nil.
func (f RegisterForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return std.Validate(f)
}

// ValidateOrganization checks that the chosen organization exists and suits the role.
func (f RegisterForm) ValidateOrganization(orgs []domain.Organization) error {
	role := domain.Role(f.Role)
	if role == domain.RoleAdmin {
		return nil
	}
	for _, org := range OrganizationsFor(role, orgs) {
		if org.ID == f.OrganizationID {
			return nil
		}
	}
	return FieldErrors{"organizationId": "is not a valid choice for this role"}
}

// Request builds the API request. Call Validate first.
func (f RegisterForm) Request() platform.RegisterRequest {
	req := platform.RegisterRequest{
		FirstName:      strings.TrimSpace(f.FirstName),
		LastName:       strings.TrimSpace(f.LastName),
		Email:          strings.TrimSpace(f.Email),
		Password:       f.Password,
		Role:           domain.Role(f.Role),
		OrganizationID: f.OrganizationID,
	}
	if req.Role == domain.RoleAdmin {
		req.OrganizationID = ""
	}

	if f.Phone != "" || f.Department != "" || f.GraduationYear != 0 || f.Designation != "" {
		req.Profile = &domain.Profile{
			Phone:          f.Phone,
			Department:     f.Department,
			GraduationYear: f.GraduationYear,
			Designation:    f.Designation,
		}
	}
	return req
}

// OrganizationsFor returns the organizations a role may register under:
// universities for students and TPOs, companies for recruiters, none for admins.
func OrganizationsFor(role domain.Role, orgs []domain.Organization) []domain.Organization {
	var want domain.OrganizationType
	switch role {
	case domain.RoleStudent, domain.RoleTPO:
		want = domain.OrganizationUniversity
	case domain.RoleRecruiter:
		want = domain.OrganizationCompany
	case domain.RoleAdmin:
		return nil
	default:
		return nil
	}

	out := make([]domain.Organization, 0, len(orgs))
	for _, org := range orgs {
		if org.Type == want {
			out = append(out, org)
		}
	}
	return out
}
