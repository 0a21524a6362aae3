package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const defaultPageSize = 10

func (f OffreFilter) query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Type != "" {
		q.Set("typeOffre", f.Type)
	}
	if f.StartAfter != "" {
		q.Set("dateDebutMin", f.StartAfter)
	}
	if f.StartBefore != "" {
		q.Set("dateDebutMax", f.StartBefore)
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.SortDirection != "" {
		q.Set("sortDirection", f.SortDirection)
	}
	page := f.Page
	if page < 0 {
		page = 0
	}
	size := f.Size
	if size <= 0 {
		size = defaultPageSize
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}

// PublicOffres lists validated offers, paginated and filtered.
func (c *Client) PublicOffres(ctx context.Context, f OffreFilter) (Page[Offre], error) {
	var out Page[Offre]
	err := c.doJSON(ctx, http.MethodGet, "/api/offres/publiques", f.query(), nil, &out)
	return out, err
}

func (c *Client) AllOffres(ctx context.Context) ([]Offre, error) {
	var out []Offre
	err := c.doJSON(ctx, http.MethodGet, "/api/offres/all", nil, nil, &out)
	return out, err
}

func (c *Client) MyOffres(ctx context.Context) ([]Offre, error) {
	var out []Offre
	err := c.doJSON(ctx, http.MethodGet, "/api/offres/mes-offres", nil, nil, &out)
	return out, err
}

func (c *Client) Offre(ctx context.Context, id int64) (Offre, error) {
	var out Offre
	err := c.doJSON(ctx, http.MethodGet, idPath("/api/offres/%d", id), nil, nil, &out)
	return out, err
}

func (c *Client) SearchOffres(ctx context.Context, title string) ([]Offre, error) {
	var out []Offre
	err := c.doJSON(ctx, http.MethodGet, "/api/offres/search", url.Values{"titre": {title}}, nil, &out)
	return out, err
}

func (c *Client) CreateOffre(ctx context.Context, o Offre) (Offre, error) {
	if err := o.Validate(); err != nil {
		return Offre{}, err
	}
	var out Offre
	err := c.doJSON(ctx, http.MethodPost, "/api/offres", nil, o, &out)
	return out, err
}

func (c *Client) UpdateOffre(ctx context.Context, id int64, o Offre) (Offre, error) {
	if err := o.Validate(); err != nil {
		return Offre{}, err
	}
	var out Offre
	err := c.doJSON(ctx, http.MethodPut, idPath("/api/offres/%d", id), nil, o, &out)
	return out, err
}

func (c *Client) DeleteOffre(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, idPath("/api/offres/%d", id), nil, nil, nil)
}

func (c *Client) ValidateOffre(ctx context.Context, id int64) (Offre, error) {
	var out Offre
	err := c.doJSON(ctx, http.MethodPut, idPath("/api/offres/%d/valider", id), nil, nil, &out)
	return out, err
}
