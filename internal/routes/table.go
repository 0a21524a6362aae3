package routes

import (
	"strings"

	"linkup/portal/internal/auth"
)

const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	ProfilePath  = "/profile"
)

// Route is one entry of the table. A segment starting with ':' matches any
// single non-empty path segment.
type Route struct {
	Pattern string
	Roles   []auth.Role
	Public  bool
	Title   string
}

type Table struct {
	routes []Route
}

func NewTable(routes ...Route) *Table {
	return &Table{routes: append([]Route(nil), routes...)}
}

func DefaultTable() *Table {
	student := []auth.Role{auth.RoleStudent}
	company := []auth.Role{auth.RoleCompany}
	admin := []auth.Role{auth.RoleAdministration}
	tutor := []auth.Role{auth.RoleTutor}

	return NewTable(
		Route{Pattern: LoginPath, Public: true, Title: "Connexion"},
		Route{Pattern: RegisterPath, Public: true, Title: "Inscription"},

		Route{Pattern: "/etudiant/dashboard", Roles: student, Title: "Accueil"},
		Route{Pattern: "/etudiant/offres", Roles: student, Title: "Offres"},
		Route{Pattern: "/etudiant/offres/:id", Roles: student, Title: "Détail de l'offre"},
		Route{Pattern: "/etudiant/candidatures", Roles: student, Title: "Mes candidatures"},
		Route{Pattern: "/etudiant/conventions", Roles: student, Title: "Mes conventions"},
		Route{Pattern: "/etudiant/stage", Roles: student, Title: "Mon stage"},

		Route{Pattern: "/entreprise/dashboard", Roles: company, Title: "Accueil"},
		Route{Pattern: "/entreprise/offres", Roles: company, Title: "Mes offres"},
		Route{Pattern: "/entreprise/offres/new", Roles: company, Title: "Nouvelle offre"},
		Route{Pattern: "/entreprise/offres/:id/edit", Roles: company, Title: "Modifier l'offre"},
		Route{Pattern: "/entreprise/candidatures", Roles: company, Title: "Candidatures"},
		Route{Pattern: "/entreprise/conventions", Roles: company, Title: "Conventions"},

		Route{Pattern: "/admin/dashboard", Roles: admin, Title: "Tableau de bord"},
		Route{Pattern: "/admin/offres", Roles: admin, Title: "Validation des offres"},
		Route{Pattern: "/admin/conventions", Roles: admin, Title: "Conventions"},
		Route{Pattern: "/admin/suivis", Roles: admin, Title: "Suivis"},

		Route{Pattern: "/tuteur/dashboard", Roles: tutor, Title: "Accueil"},
		Route{Pattern: "/tuteur/etudiants", Roles: tutor, Title: "Mes étudiants"},
		Route{Pattern: "/tuteur/suivis/:id", Roles: tutor, Title: "Mise à jour du suivi"},

		Route{Pattern: ProfilePath, Roles: auth.Roles, Title: "Profil"},
	)
}

func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Match finds the route serving path. Literal patterns win over patterns
// with parameters, so /entreprise/offres/new is never read as an id.
func (t *Table) Match(path string) (Route, bool) {
	segs := splitPath(path)
	var best Route
	bestParams := -1
	for _, r := range t.routes {
		params, ok := matchSegments(splitPath(r.Pattern), segs)
		if !ok {
			continue
		}
		if bestParams == -1 || params < bestParams {
			best, bestParams = r, params
		}
	}
	return best, bestParams != -1
}

// Decide applies the guard to a navigation target. Public routes always
// render; unknown paths go to the login view.
func (t *Table) Decide(user *auth.UserSummary, path string) (Decision, Route) {
	r, ok := t.Match(path)
	if !ok {
		return RedirectToLogin, Route{}
	}
	if r.Public {
		return Render, r
	}
	return Authorize(user, r.Roles), r
}

// HomePath is the dashboard a role lands on after login.
func HomePath(role auth.Role) string {
	switch role {
	case auth.RoleStudent:
		return "/etudiant/dashboard"
	case auth.RoleCompany:
		return "/entreprise/dashboard"
	case auth.RoleAdministration:
		return "/admin/dashboard"
	case auth.RoleTutor:
		return "/tuteur/dashboard"
	default:
		return LoginPath
	}
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, path []string) (int, bool) {
	if len(pattern) != len(path) {
		return 0, false
	}
	params := 0
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			if path[i] == "" {
				return 0, false
			}
			params++
			continue
		}
		if seg != path[i] {
			return 0, false
		}
	}
	return params, true
}
