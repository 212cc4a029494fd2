package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name     string
		role     Role
		required []Role
		allowed  bool
	}{
		{name: "no requirement", role: RoleEmployee, allowed: true},
		{name: "listed role", role: RoleManager, required: []Role{RoleAdmin, RoleManager}, allowed: true},
		{name: "unlisted role", role: RoleEmployee, required: []Role{RoleAdmin, RoleManager}},
		{name: "admin only", role: RoleManager, required: []Role{RoleAdmin}},
		{name: "empty role", required: []Role{RoleAdmin}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(Claims{UserID: "u1", Role: tc.role}, tc.required...)
			if tc.allowed {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrForbidden)
		})
	}
}

func TestAuthorizeOwner(t *testing.T) {
	privileged := []Role{RoleAdmin, RoleManager}

	require.NoError(t, AuthorizeOwner(Claims{UserID: "u1", Role: RoleEmployee}, "u1", privileged...))
	require.NoError(t, AuthorizeOwner(Claims{UserID: "u2", Role: RoleManager}, "u1", privileged...))
	require.ErrorIs(t, AuthorizeOwner(Claims{UserID: "u2", Role: RoleEmployee}, "u1", privileged...), ErrForbidden)
	require.ErrorIs(t, AuthorizeOwner(Claims{Role: RoleEmployee}, "", privileged...), ErrForbidden)
}

func TestRoleValid(t *testing.T) {
	require.True(t, RoleEmployee.Valid())
	require.False(t, Role("Intern").Valid())
}
