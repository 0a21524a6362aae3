package routes

import (
	"testing"

	"linkup/portal/internal/auth"
)

func TestAuthorize(t *testing.T) {
	subsets := [][]auth.Role{
		nil,
		{auth.RoleStudent},
		{auth.RoleCompany, auth.RoleTutor},
		auth.Roles,
	}

	for _, allowed := range subsets {
		if got := Authorize(nil, allowed); got != RedirectToLogin {
			t.Fatalf("anonymous with %v: expected redirect, got %s", allowed, got)
		}
		for _, role := range auth.Roles {
			user := &auth.UserSummary{ID: 1, Email: "a@b.com", Role: role}
			want := RedirectToLogin
			for _, r := range allowed {
				if r == role {
					want = Render
				}
			}
			if got := Authorize(user, allowed); got != want {
				t.Fatalf("role %s with %v: expected %s, got %s", role, allowed, want, got)
			}
		}
	}
}

func TestDecisionString(t *testing.T) {
	if Render.String() != "render" || RedirectToLogin.String() != "redirect_to_login" {
		t.Fatalf("unexpected decision names")
	}
	if Decision(42).String() != "unknown" {
		t.Fatalf("expected unknown for out of range decision")
	}
}
