package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/forms"
)

func TestShouldPrompt_DisabledInCI(t *testing.T) {
	for _, env := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, "true")
			assert.False(t, ShouldPrompt())
		})
	}
}

func TestPromptLogin_CompleteFormSkipsPrompt(t *testing.T) {
	in := forms.LoginForm{Email: "asha@uni.edu", Password: "secret123"}
	out, err := PromptLogin(in)
	assert.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestOrganizationOptions_FollowRole(t *testing.T) {
	orgs := []domain.Organization{
		{ID: "u1", Name: "State University", Type: domain.OrganizationUniversity},
		{ID: "c1", Name: "Acme", Type: domain.OrganizationCompany},
	}

	student := organizationOptions(domain.RoleStudent, orgs)
	if assert.Len(t, student, 1) {
		assert.Equal(t, "u1", student[0].Value)
		assert.Equal(t, "State University", student[0].Key)
	}

	recruiter := organizationOptions(domain.RoleRecruiter, orgs)
	if assert.Len(t, recruiter, 1) {
		assert.Equal(t, "c1", recruiter[0].Value)
	}

	assert.Empty(t, organizationOptions(domain.RoleAdmin, orgs))
}

func TestRoleOptions_CoverEveryRole(t *testing.T) {
	opts := roleOptions()
	assert.Len(t, opts, len(domain.AllRoles()))
	assert.Equal(t, "Training & Placement Officer", opts[2].Key)
}

func TestFieldValidators(t *testing.T) {
	assert.Error(t, required("email")("  "))
	assert.NoError(t, required("email")("a@b.c"))
	assert.Error(t, minLength(6)("abc"))
	assert.NoError(t, minLength(6)("abcdef"))
}
