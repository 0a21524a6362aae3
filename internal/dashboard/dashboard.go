// Package dashboard gathers the data shown on each role's home view.
package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"linkup/portal/internal/api"
	"linkup/portal/internal/auth"
)

// Source is the subset of the API client the dashboards read from.
type Source interface {
	PublicOffres(ctx context.Context, f api.OffreFilter) (api.Page[api.Offre], error)
	MyCandidatures(ctx context.Context) ([]api.Candidature, error)
	MyInternship(ctx context.Context) (api.Suivi, error)
	MyOffres(ctx context.Context) ([]api.Offre, error)
	CompanyConventions(ctx context.Context) ([]api.Convention, error)
	Stats(ctx context.Context) (api.Stats, error)
	MyStudents(ctx context.Context) ([]api.Suivi, error)
	UnreadCount(ctx context.Context) (int64, error)
}

type Student struct {
	LatestOffres []api.Offre       `json:"latestOffres"`
	TotalOffres  int64             `json:"totalOffres"`
	Candidatures []api.Candidature `json:"candidatures"`
	Internship   *api.Suivi        `json:"internship,omitempty"`
	Unread       int64             `json:"unread"`
}

type Company struct {
	Offres      []api.Offre      `json:"offres"`
	Conventions []api.Convention `json:"conventions"`
	Unread      int64            `json:"unread"`
}

type Admin struct {
	Stats  api.Stats `json:"stats"`
	Unread int64     `json:"unread"`
}

type Tutor struct {
	Students []api.Suivi `json:"students"`
	Unread   int64       `json:"unread"`
}

// Load fetches the dashboard of role. All requests run together and the
// first failure fails the whole dashboard.
func Load(ctx context.Context, src Source, role auth.Role) (any, error) {
	switch role {
	case auth.RoleStudent:
		return LoadStudent(ctx, src)
	case auth.RoleCompany:
		return LoadCompany(ctx, src)
	case auth.RoleAdministration:
		return LoadAdmin(ctx, src)
	case auth.RoleTutor:
		return LoadTutor(ctx, src)
	}
	return nil, fmt.Errorf("no dashboard for role %q", role)
}

func LoadStudent(ctx context.Context, src Source) (Student, error) {
	var out Student
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := src.PublicOffres(gctx, api.OffreFilter{Size: 5, SortBy: "datePublication", SortDirection: "DESC"})
		if err != nil {
			return fmt.Errorf("load offres: %w", err)
		}
		out.LatestOffres, out.TotalOffres = page.Content, page.TotalElements
		return nil
	})
	g.Go(func() error {
		c, err := src.MyCandidatures(gctx)
		if err != nil {
			return fmt.Errorf("load candidatures: %w", err)
		}
		out.Candidatures = c
		return nil
	})
	g.Go(func() error {
		s, err := src.MyInternship(gctx)
		if err != nil {
			// No tutor assigned yet.
			if api.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("load internship: %w", err)
		}
		out.Internship = &s
		return nil
	})
	g.Go(unread(gctx, src, &out.Unread))
	if err := g.Wait(); err != nil {
		return Student{}, err
	}
	return out, nil
}

func LoadCompany(ctx context.Context, src Source) (Company, error) {
	var out Company
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o, err := src.MyOffres(gctx)
		if err != nil {
			return fmt.Errorf("load offres: %w", err)
		}
		out.Offres = o
		return nil
	})
	g.Go(func() error {
		c, err := src.CompanyConventions(gctx)
		if err != nil {
			return fmt.Errorf("load conventions: %w", err)
		}
		out.Conventions = c
		return nil
	})
	g.Go(unread(gctx, src, &out.Unread))
	if err := g.Wait(); err != nil {
		return Company{}, err
	}
	return out, nil
}

func LoadAdmin(ctx context.Context, src Source) (Admin, error) {
	var out Admin
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := src.Stats(gctx)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		out.Stats = s
		return nil
	})
	g.Go(unread(gctx, src, &out.Unread))
	if err := g.Wait(); err != nil {
		return Admin{}, err
	}
	return out, nil
}

func LoadTutor(ctx context.Context, src Source) (Tutor, error) {
	var out Tutor
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := src.MyStudents(gctx)
		if err != nil {
			return fmt.Errorf("load students: %w", err)
		}
		out.Students = s
		return nil
	})
	g.Go(unread(gctx, src, &out.Unread))
	if err := g.Wait(); err != nil {
		return Tutor{}, err
	}
	return out, nil
}

// unread never fails the dashboard: the badge stays at zero like the
// navbar does when the count request fails.
func unread(ctx context.Context, src Source, dst *int64) func() error {
	return func() error {
		n, err := src.UnreadCount(ctx)
		if err == nil {
			*dst = n
		}
		return nil
	}
}
