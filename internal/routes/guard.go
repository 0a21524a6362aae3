// Package routes holds the route-to-roles table and the guard that decides
// whether a view may render for the current session.
package routes

import "linkup/portal/internal/auth"

type Decision int

const (
	Render Decision = iota
	RedirectToLogin
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case RedirectToLogin:
		return "redirect_to_login"
	default:
		return "unknown"
	}
}

// Authorize renders only for a present user whose role is allowed. A user
// with the wrong role is sent to the login view like an anonymous one;
// there is no separate forbidden outcome.
func Authorize(user *auth.UserSummary, allowed []auth.Role) Decision {
	if user == nil {
		return RedirectToLogin
	}
	for _, r := range allowed {
		if user.Role == r {
			return Render
		}
	}
	return RedirectToLogin
}
