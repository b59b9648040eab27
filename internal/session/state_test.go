package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/placement/internal/domain"
)

func TestReduce_Transitions(t *testing.T) {
	user := domain.User{ID: "u-1", FirstName: "Asha", Role: domain.RoleStudent}
	tokens := domain.Tokens{AccessToken: "a", RefreshToken: "r"}
	signedInState := Reduce(Initial(), LoginSucceeded{User: user, Tokens: tokens})

	tests := []struct {
		name      string
		from      State
		action    Action
		wantAuth  bool
		wantLoad  bool
		wantPhase Phase
	}{
		{"startup started", Initial(), StartupStarted{}, false, true, PhaseInitializing},
		{"startup failed", Initial(), StartupFailed{}, false, false, PhaseUnauthenticated},
		{"startup succeeded", Initial(), StartupSucceeded{User: user, Tokens: tokens}, true, false, PhaseAuthenticated},
		{"login started", Initial(), LoginStarted{}, false, true, PhaseAuthenticating},
		{"login failed from signed out", Reduce(Initial(), LoginStarted{}), LoginFailed{}, false, false, PhaseUnauthenticated},
		{"login failed keeps existing session", Reduce(signedInState, LoginStarted{}), LoginFailed{}, true, false, PhaseAuthenticated},
		{"login succeeded with half token pair", Initial(), LoginSucceeded{User: user, Tokens: domain.Tokens{AccessToken: "a"}}, false, false, PhaseUnauthenticated},
		{"login succeeded without user id", Initial(), LoginSucceeded{Tokens: tokens}, false, false, PhaseUnauthenticated},
		{"register started", Initial(), RegisterStarted{}, false, true, PhaseRegistering},
		{"register pending", Reduce(Initial(), RegisterStarted{}), RegisterPending{Message: "pending"}, false, false, PhaseUnauthenticated},
		{"register failed", Reduce(Initial(), RegisterStarted{}), RegisterFailed{}, false, false, PhaseUnauthenticated},
		{"logout started", signedInState, LogoutStarted{}, true, true, PhaseAuthenticated},
		{"logged out", signedInState, LoggedOut{}, false, false, PhaseUnauthenticated},
		{"nil action is a no-op", signedInState, nil, true, false, PhaseAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(tt.from, tt.action)
			assert.Equal(t, tt.wantAuth, got.IsAuthenticated)
			assert.Equal(t, tt.wantLoad, got.IsLoading)
			assert.Equal(t, tt.wantPhase, got.Phase)
		})
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	user := domain.User{ID: "u-1", FirstName: "Asha"}
	tokens := domain.Tokens{AccessToken: "a", RefreshToken: "r"}
	before := Reduce(Initial(), LoginSucceeded{User: user, Tokens: tokens})

	name := "Meera"
	after := Reduce(before, UserUpdated{Patch: domain.UserPatch{FirstName: &name}})

	assert.Equal(t, "Asha", before.User.FirstName)
	assert.Equal(t, "Meera", after.User.FirstName)
}

func TestReduce_PendingMessage(t *testing.T) {
	got := Reduce(Initial(), RegisterPending{})
	assert.Equal(t, DefaultPendingMessage, got.Pending)

	got = Reduce(got, LoginStarted{})
	assert.Empty(t, got.Pending)
}

func TestReduce_UserUpdatedIgnoredWhenSignedOut(t *testing.T) {
	name := "X"
	got := Reduce(Reduce(Initial(), StartupFailed{}), UserUpdated{Patch: domain.UserPatch{FirstName: &name}})
	assert.Nil(t, got.User)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "authenticated", PhaseAuthenticated.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
